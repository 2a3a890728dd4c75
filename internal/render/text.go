package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExcerptLength is the number of characters kept from a post's text
// before the ellipsis.
const ExcerptLength = 85

// Ellipsis marks truncated text.
const Ellipsis = "..."

// PlainText extracts the text content of an HTML fragment. Entities are
// decoded, block and line breaks become spaces, and runs of whitespace
// are collapsed. Input that fails to parse is returned trimmed as-is.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var b strings.Builder
	for _, n := range nodes {
		writeText(&b, n)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "br":
			b.WriteByte(' ')
			return
		case "script", "style":
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}

	if n.Type == html.ElementNode && isBlock(n.Data) {
		b.WriteByte(' ')
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "blockquote", "pre", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// Truncate keeps at most the first n characters of s and appends
// Ellipsis. The ellipsis is added even when nothing was cut, so every
// excerpt reads as a preview. Characters are runes, so multi-byte text is
// never split mid-character.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + Ellipsis
}

// Excerpt is PlainText followed by Truncate at ExcerptLength.
func Excerpt(fragment string) string {
	return Truncate(PlainText(fragment), ExcerptLength)
}
