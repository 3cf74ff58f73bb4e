package seo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/translation"
)

func TestForArticleAlternates(t *testing.T) {
	m := ForArticle(Page{
		Title:       " AI in schools ",
		Description: "Intro",
		URL:         "/?lang=en&p=12",
		Lang:        "en",
		Languages: []translation.Language{
			{Code: "en", Name: "English", ArticleID: 12},
			{Code: "fr", Name: "Français", ArticleID: 45},
		},
		LinkFor: func(id int, lang string) string { return fmt.Sprintf("/?lang=%s&p=%d", lang, id) },
	})
	require.Equal(t, "AI in schools", m.Title)
	require.Equal(t, "article", m.OG.Type)
	require.False(t, m.NoIndex)
	require.Equal(t, []Alternate{
		{Lang: "en", Href: "/?lang=en&p=12"},
		{Lang: "fr", Href: "/?lang=fr&p=45"},
	}, m.Alternates)
}

func TestForArticleFallbackIsNotIndexed(t *testing.T) {
	m := ForArticle(Page{Title: "Sample Article 12", Fallback: true})
	require.True(t, m.NoIndex)
	require.Empty(t, m.Alternates)
}

func TestAbsolute(t *testing.T) {
	require.Equal(t, "https://ki-leierbud.lu/?p=12", Absolute("https://ki-leierbud.lu/", "/?p=12"))
	require.Equal(t, "/?p=12", Absolute("", "/?p=12"))
}

func TestArticleJSONLD(t *testing.T) {
	got := JSON(Article("Title", "https://x/?p=1", "admin", "lb", "Basics"))
	require.JSONEq(t, `{"@context":"https://schema.org","@type":"Article","headline":"Title","url":"https://x/?p=1","author":{"@type":"Person","name":"admin"},"inLanguage":"lb","articleSection":"Basics"}`, got)
}

func TestBreadcrumbList(t *testing.T) {
	got := BreadcrumbList([]BreadcrumbItem{{Name: "Basics", Item: "https://x/?p=10"}, {Name: "Title", Item: "https://x/?p=12"}})
	items := got["itemListElement"].([]map[string]any)
	require.Len(t, items, 2)
	require.Equal(t, 2, items[1]["position"])
}
