package content

import (
	"html"
	"regexp"
)

// doubleEncoded matches an escaped ampersand that introduces another entity
// reference, as in "&amp;#8217;" or "&#38;hellip;".
var doubleEncoded = regexp.MustCompile(`&(?:amp|#0*38|#[xX]0*26);((?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]+|#[xX][0-9a-fA-F]+);)`)

// DecodeEntities decodes one level of HTML character references.
// DecodeEntities(html.EscapeString(s)) == s for every s.
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}

// decodeFully decodes character references until the text stops changing.
func decodeFully(s string) string {
	for i := 0; i < maxDecodePasses; i++ {
		next := html.UnescapeString(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

// unwrapDoubleEncoded collapses stacked ampersand escapes in front of entity
// references without touching escaped markup.
func unwrapDoubleEncoded(s string) string {
	for i := 0; i < maxDecodePasses; i++ {
		next := doubleEncoded.ReplaceAllString(s, "&$1")
		if next == s {
			return s
		}
		s = next
	}
	return s
}

const maxDecodePasses = 8
