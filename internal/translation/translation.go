// Package translation decides how the reader moves between language versions of an article.
package translation

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cms"
)

// DefaultLang is used when a language code is missing or unparseable.
const DefaultLang = "en"

var errInvalidLanguageTag = errors.New("translation: invalid language tag")

// Kind classifies a language switch.
type Kind int

const (
	// AlreadyInLanguage means the requested language is the one on screen.
	AlreadyInLanguage Kind = iota
	// NavigateTo means the caller should load TargetID.
	NavigateTo
	// Unavailable means the article has no version in the requested language.
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case AlreadyInLanguage:
		return "already_in_language"
	case NavigateTo:
		return "navigate_to"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Outcome is the result of ResolveSwitch. TargetID is set only for NavigateTo.
type Outcome struct {
	Kind     Kind
	TargetID int
}

// ResolveSwitch decides what a request for requestedLang means for current,
// which is displayed in actualLang.
func ResolveSwitch(current cms.Article, actualLang, requestedLang string) Outcome {
	requested := strings.ToLower(strings.TrimSpace(requestedLang))
	if requested == strings.ToLower(strings.TrimSpace(actualLang)) {
		return Outcome{Kind: AlreadyInLanguage}
	}
	target, ok := current.Translations[requested]
	switch {
	case !ok || target <= 0:
		return Outcome{Kind: Unavailable}
	case target == current.ID:
		return Outcome{Kind: AlreadyInLanguage}
	default:
		return Outcome{Kind: NavigateTo, TargetID: target}
	}
}

// ActualLanguage returns the language of the record the backend served. When
// several translation entries point at the article the lowest code wins.
func ActualLanguage(article cms.Article, requested string) string {
	codes := sortedCodes(article.Translations)
	for _, code := range codes {
		if article.Translations[code] == article.ID {
			return code
		}
	}
	return strings.ToLower(strings.TrimSpace(requested))
}

// Language is one entry of the language switcher.
type Language struct {
	Code      string
	Name      string
	ArticleID int
}

// Available lists the languages an article can be read in, sorted by code.
// Without a translations map only the actual language is offered.
func Available(article cms.Article, actual string) []Language {
	if !article.HasTranslations() {
		return []Language{{Code: actual, Name: Name(actual), ArticleID: article.ID}}
	}
	codes := sortedCodes(article.Translations)
	out := make([]Language, 0, len(codes))
	for _, code := range codes {
		out = append(out, Language{Code: code, Name: Name(code), ArticleID: article.Translations[code]})
	}
	return out
}

var names = map[string]string{
	"en": "English",
	"fr": "Français",
	"de": "Deutsch",
	"lb": "Lëtzebuergesch",
	"pt": "Português",
}

// Name returns the endonym for code, or the upper-cased code when unknown.
func Name(code string) string {
	code = strings.TrimSpace(code)
	if n, ok := names[strings.ToLower(code)]; ok {
		return n
	}
	return strings.ToUpper(code)
}

// Normalize reduces a language tag to its lower-case base language.
// Empty or invalid tags yield DefaultLang.
func Normalize(code string) string {
	base, err := canonicalBase(code)
	if err != nil || base == "" {
		return DefaultLang
	}
	return base
}

func canonicalBase(tag string) (string, error) {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return "", nil
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", errors.Join(errInvalidLanguageTag, err)
	}
	base, _ := parsed.Base()
	s := strings.ToLower(base.String())
	if len(s) != 2 {
		return "", errInvalidLanguageTag
	}
	return s, nil
}

func sortedCodes(m map[string]int) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
