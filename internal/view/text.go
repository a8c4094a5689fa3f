package view

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// DescriptionText converts a book description, which the backend serves as
// HTML, into plain markdown suitable for a terminal. Conversion failures
// fall back to the raw input.
func DescriptionText(html string) string {
	if html == "" {
		return ""
	}
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(markdown)
}
