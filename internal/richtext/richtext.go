// Package richtext turns editor HTML into plain text for feeds and notifications.
package richtext

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ExcerptLength is the feed preview length in runes.
const ExcerptLength = 200

// PlainText returns the visible text of an HTML fragment with whitespace collapsed.
// Input that fails to parse is returned with whitespace collapsed.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("script, style").Remove()

	// Block elements would otherwise glue adjacent words together.
	doc.Find("p, br, li, h1, h2, h3, h4, h5, h6, blockquote, pre, div").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Excerpt returns at most n runes of the plain text of html, followed by "..."
// when the text was cut.
func Excerpt(html string, n int) string {
	text := PlainText(html)
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "..."
}
