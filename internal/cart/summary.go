package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EmptySummary is rendered for a cart with no lines.
const EmptySummary = "Kosong (belum ada item)"

// Rupiah formats an amount as whole rupiah with Indonesian digit grouping,
// e.g. "Rp 30.000". Fractions are truncated.
func Rupiah(amount decimal.Decimal) string {
	p := message.NewPrinter(language.Indonesian)
	return "Rp " + p.Sprintf("%d", amount.IntPart())
}

// Summary renders lines for inclusion in model prompts: one bullet per line,
// priced lines suffixed with their subtotal, then a total line when at least
// one line has a price.
func Summary(lines []Line) string {
	if len(lines) == 0 {
		return EmptySummary
	}
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "• %dx %s", l.Qty(), productLabel(l.ProductName))
		if sub, ok := l.Subtotal(); ok {
			b.WriteString(" - ")
			b.WriteString(Rupiah(sub))
		}
	}
	if total, ok := Total(lines); ok {
		b.WriteString("\nTotal: ")
		b.WriteString(Rupiah(total))
	}
	return b.String()
}

func productLabel(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Unknown"
	}
	return name
}
