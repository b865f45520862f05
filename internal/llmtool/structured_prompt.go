package llmtool

import (
	"bytes"
	"fmt"
	"strings"
)

// ToolGuide documents one callable action for the model in prose, next to the
// machine-readable schema the provider receives.
type ToolGuide struct {
	Signature string // e.g. add_to_cart(product_name, quantity=1)
	Usage     string
}

// PromptExample captures an optional exchange the reply should imitate.
type PromptExample struct {
	User  string
	Reply string
}

// StructuredPromptSpec defines the sections of a system instruction.
type StructuredPromptSpec struct {
	Purpose     string
	Background  string
	Tools       []ToolGuide
	Cart        string
	Rules       []string
	Constraints []string
	Language    string
	Examples    []PromptExample
}

// Render produces the instruction as [SECTION] blocks. Empty sections are
// omitted.
func (spec StructuredPromptSpec) Render() (string, error) {
	if strings.TrimSpace(spec.Purpose) == "" {
		return "", fmt.Errorf("llmtool: purpose is empty")
	}
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", spec.Purpose)
	writeSection(&buf, "BACKGROUND", spec.Background)
	writeSection(&buf, "TOOLS", formatGuides(spec.Tools))
	writeSection(&buf, "CART", spec.Cart)
	writeSection(&buf, "RULES", formatList(spec.Rules))
	writeSection(&buf, "CONSTRAINTS", formatList(spec.Constraints))
	writeSection(&buf, "LANGUAGE", spec.Language)
	if len(spec.Examples) > 0 {
		writeSection(&buf, "EXAMPLES", formatExamples(spec.Examples))
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// MustRender is Render for specs built from constants.
func (spec StructuredPromptSpec) MustRender() string {
	out, err := spec.Render()
	if err != nil {
		panic(err)
	}
	return out
}

func formatGuides(guides []ToolGuide) string {
	var buf strings.Builder
	for i, g := range guides {
		sig := strings.TrimSpace(g.Signature)
		if sig == "" {
			continue
		}
		fmt.Fprintf(&buf, "%d. %s", i+1, sig)
		if u := strings.TrimSpace(g.Usage); u != "" {
			buf.WriteString(" - ")
			buf.WriteString(u)
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatExamples(examples []PromptExample) string {
	var buf strings.Builder
	for i, ex := range examples {
		fmt.Fprintf(&buf, "Example %d:\n", i+1)
		if u := strings.TrimSpace(ex.User); u != "" {
			buf.WriteString("Customer: ")
			buf.WriteString(u)
			buf.WriteString("\n")
		}
		if r := strings.TrimSpace(ex.Reply); r != "" {
			buf.WriteString("Reply:\n")
			buf.WriteString(r)
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
