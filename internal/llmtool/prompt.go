package llmtool

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FormatJSON renders v compactly with non-ASCII text and <, >, & left as is,
// which keeps product names readable for the model.
func FormatJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// ToolResultsMessage renders results for the dialog model.
func ToolResultsMessage(results any) (string, error) {
	body, err := FormatJSON(results)
	if err != nil {
		return "", err
	}
	return "Tool results: " + body, nil
}
