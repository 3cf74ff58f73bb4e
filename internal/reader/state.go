package reader

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/translation"
)

// ErrInvalidArticle reports a p parameter that is not a positive integer.
var ErrInvalidArticle = errors.New("reader: invalid article id")

const maxColorKeyLen = 64

// State is the URL-encoded application state.
type State struct {
	ArticleID int
	Lang      string
	Color     string
}

// Defaults fill parameters missing from the URL.
type Defaults struct {
	ArticleID int
	Lang      string
}

// ParseState reads p, lang and color. Only a malformed p is an error; the
// returned State still carries the other parameters.
func ParseState(q url.Values, d Defaults) (State, error) {
	s := State{ArticleID: d.ArticleID, Lang: d.Lang}
	if s.Lang == "" {
		s.Lang = translation.DefaultLang
	}
	if raw := strings.TrimSpace(q.Get("lang")); raw != "" {
		s.Lang = translation.Normalize(raw)
	}
	if color := strings.TrimSpace(q.Get("color")); len(color) <= maxColorKeyLen {
		s.Color = color
	}
	raw := strings.TrimSpace(q.Get("p"))
	if raw == "" {
		return s, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return s, ErrInvalidArticle
	}
	s.ArticleID = id
	return s, nil
}

// Key returns the session key for s.
func (s State) Key() Key {
	return Key{ArticleID: s.ArticleID, Lang: s.Lang}
}

// Query encodes s, omitting an empty colour.
func (s State) Query() url.Values {
	q := url.Values{}
	q.Set("p", strconv.Itoa(s.ArticleID))
	q.Set("lang", s.Lang)
	if s.Color != "" {
		q.Set("color", s.Color)
	}
	return q
}

// With returns s pointed at another article.
func (s State) With(articleID int) State {
	s.ArticleID = articleID
	return s
}

// WithLang returns s in another language.
func (s State) WithLang(lang string) State {
	s.Lang = lang
	return s
}

// URL returns the reader path for s.
func (s State) URL() string {
	return "/?" + s.Query().Encode()
}
