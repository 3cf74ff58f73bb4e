package seo

import (
	"net/url"
	"strings"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/translation"
)

type OpenGraph struct {
	Title       string
	Description string
	Type        string
	Locale      string
}

// Alternate is one hreflang link.
type Alternate struct {
	Lang string
	Href string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Lang        string
	NoIndex     bool
	OG          OpenGraph
	Alternates  []Alternate
}

// Page describes the article a reader page displays.
type Page struct {
	Title       string
	Description string
	URL         string
	Lang        string
	Languages   []translation.Language
	// LinkFor builds the URL of a translated article.
	LinkFor func(articleID int, lang string) string
	// Fallback marks substituted demo content, which is never indexed.
	Fallback bool
}

// ForArticle returns the metadata of an article page with one alternate
// per available translation.
func ForArticle(p Page) Meta {
	m := Meta{
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Canonical:   p.URL,
		Lang:        p.Lang,
		NoIndex:     p.Fallback,
		OG: OpenGraph{
			Title:       strings.TrimSpace(p.Title),
			Description: strings.TrimSpace(p.Description),
			Type:        "article",
			Locale:      p.Lang,
		},
	}
	if p.LinkFor == nil {
		return m
	}
	for _, l := range p.Languages {
		m.Alternates = append(m.Alternates, Alternate{Lang: l.Code, Href: p.LinkFor(l.ArticleID, l.Code)})
	}
	return m
}

// Absolute resolves ref against base. It returns ref unchanged when base is empty or invalid.
func Absolute(base, ref string) string {
	if base == "" {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
