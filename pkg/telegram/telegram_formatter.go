package telegram

import (
	"fmt"
	"html"
	"strings"
)

// Field is one line of a summary message.
type Field struct {
	Name  string
	Value interface{}
}

// FormatSummary renders a bold title followed by one "name: value" line per field.
func FormatSummary(title string, fields ...Field) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(title)))
	for _, f := range fields {
		value := fmt.Sprintf("%v", f.Value)
		if v, ok := f.Value.(float64); ok {
			value = fmt.Sprintf("%.4f", v)
		}
		builder.WriteString(fmt.Sprintf("• %s: %s\n", html.EscapeString(f.Name), html.EscapeString(value)))
	}
	return strings.TrimRight(builder.String(), "\n")
}
