package content

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// PlainText returns the visible text of a fragment with whitespace collapsed.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	root, err := parseFragment(unwrapDoubleEncoded(fragment))
	if err != nil {
		return ""
	}
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if !rawText[n.Data] {
					b.WriteString(decodeFully(c.Data))
				}
			case html.ElementNode:
				block := isBlock(c.Data)
				if block {
					b.WriteByte(' ')
				}
				visit(c)
				if block {
					b.WriteByte(' ')
				}
			}
		}
	}
	visit(root)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Excerpt shortens PlainText output to at most limit runes on a word boundary.
func Excerpt(fragment string, limit int) string {
	text := PlainText(fragment)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "table", "tr", "td", "th", "figure", "figcaption", "section", "article":
		return true
	}
	return false
}
