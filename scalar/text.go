package scalar

import "strings"

// TrimQuotes strips leading double quotes and returns the text up to the next quote.
func TrimQuotes(text string) string {
	text = strings.TrimLeft(text, `"`)
	if index := strings.IndexByte(text, '"'); index != -1 {
		return text[:index]
	}
	return text
}
