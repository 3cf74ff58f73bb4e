package format

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleLimit is the number of characters a header title keeps before it is cut.
const TitleLimit = 60

// Initials returns the upper-cased first letter of every space-separated
// part of name. Example: Initials("marco barnig") => "MB"
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, " ") {
		r, size := utf8.DecodeRuneInString(part)
		if size == 0 || r == utf8.RuneError {
			continue
		}
		b.WriteRune(r)
	}
	return cases.Upper(language.Und).String(b.String())
}

// Truncate cuts s to limit characters and appends "...". Strings that fit are unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

// HeadWords keeps the first n space-separated words of s.
func HeadWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// Percent renders p as a whole-number percentage.
func Percent(p int) string {
	return strconv.Itoa(p) + "%"
}
