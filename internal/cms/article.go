package cms

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	defaultCategoryName = "Unknown Category"
	defaultCategoryID   = 1
	defaultTag          = "article"
	defaultAuthor       = "admin"

	taxonomyCategory = "category"
	taxonomyTag      = "post_tag"
)

// Article is a post as rendered by the reader.
// Title is entity-encoded exactly as WordPress returns it.
type Article struct {
	ID           int
	Title        string
	Content      string
	Category     string
	CategoryID   int
	Tag          string
	Author       string
	Translations map[string]int
	// Fallback marks an article substituted for an unreachable backend.
	Fallback bool
}

// HasTranslations reports whether the backend supplied a translations map.
func (a Article) HasTranslations() bool {
	return len(a.Translations) > 0
}

// Clone returns a deep copy.
func (a Article) Clone() Article {
	cp := a
	if a.Translations != nil {
		cp.Translations = make(map[string]int, len(a.Translations))
		for k, v := range a.Translations {
			cp.Translations[k] = v
		}
	}
	return cp
}

type wpRendered struct {
	Rendered string `json:"rendered"`
}

type wpTerm struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Taxonomy string `json:"taxonomy"`
}

type wpPost struct {
	ID           int            `json:"id"`
	Title        wpRendered     `json:"title"`
	Content      wpRendered     `json:"content"`
	Categories   []int          `json:"categories"`
	Translations wpTranslations `json:"translations"`
	Embedded     struct {
		Author []struct {
			Name string `json:"name"`
		} `json:"author"`
		Terms [][]wpTerm `json:"wp:term"`
	} `json:"_embedded"`
}

// wpTranslations accepts the object form and ignores the empty array
// that PHP serializes for posts without translations.
type wpTranslations map[string]int

func (t *wpTranslations) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*t = nil
		return nil
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(wpTranslations, len(raw))
	for code, v := range raw {
		var id int
		if err := json.Unmarshal(v, &id); err != nil || id <= 0 {
			continue
		}
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		out[code] = id
	}
	if len(out) == 0 {
		*t = nil
		return nil
	}
	*t = out
	return nil
}

func (p wpPost) firstTerm(taxonomy string) (wpTerm, bool) {
	for _, group := range p.Embedded.Terms {
		for _, term := range group {
			if term.Taxonomy == taxonomy && strings.TrimSpace(term.Name) != "" {
				return term, true
			}
		}
	}
	return wpTerm{}, false
}

func (p wpPost) toArticle() Article {
	a := Article{
		ID:         p.ID,
		Title:      p.Title.Rendered,
		Content:    p.Content.Rendered,
		Category:   defaultCategoryName,
		CategoryID: defaultCategoryID,
		Tag:        defaultTag,
		Author:     defaultAuthor,
	}
	if term, ok := p.firstTerm(taxonomyCategory); ok {
		a.Category = term.Name
		if term.ID > 0 {
			a.CategoryID = term.ID
		}
	} else if len(p.Categories) > 0 && p.Categories[0] > 0 {
		a.CategoryID = p.Categories[0]
	}
	if term, ok := p.firstTerm(taxonomyTag); ok {
		a.Tag = term.Name
	}
	if len(p.Embedded.Author) > 0 && strings.TrimSpace(p.Embedded.Author[0].Name) != "" {
		a.Author = p.Embedded.Author[0].Name
	}
	if len(p.Translations) > 0 {
		a.Translations = map[string]int(p.Translations)
	}
	return a
}
