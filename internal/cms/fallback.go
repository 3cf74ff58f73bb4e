package cms

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

//go:embed fallback/*.md
var fallbackFS embed.FS

const (
	fallbackDefaultLang = "en"
	idPlaceholder       = "{id}"
)

type fallbackFrontMatter struct {
	Lang       string `yaml:"lang"`
	Title      string `yaml:"title"`
	Category   string `yaml:"category"`
	CategoryID int    `yaml:"category_id"`
	Tag        string `yaml:"tag"`
	Author     string `yaml:"author"`
}

type fallbackTemplate struct {
	front fallbackFrontMatter
	html  string
}

var (
	fallbackOnce      sync.Once
	fallbackTemplates map[string]fallbackTemplate
	fallbackErr       error
)

// FallbackArticle builds the placeholder shown while the backend is unreachable.
// Languages without a document use English.
func FallbackArticle(id int, lang string) Article {
	templates, _ := fallbackSet()
	tmpl, ok := templates[strings.ToLower(strings.TrimSpace(lang))]
	if !ok {
		tmpl, ok = templates[fallbackDefaultLang]
	}
	if !ok {
		tmpl = fallbackTemplate{
			front: fallbackFrontMatter{Title: "Sample Article {id}", Category: "Sample Category", CategoryID: 1, Tag: "sample", Author: "Sample Author"},
			html:  "<p>Sample article {id}.</p>",
		}
	}
	expand := func(s string) string {
		return strings.ReplaceAll(s, idPlaceholder, strconv.Itoa(id))
	}
	return Article{
		ID:         id,
		Title:      expand(tmpl.front.Title),
		Content:    expand(tmpl.html),
		Category:   tmpl.front.Category,
		CategoryID: tmpl.front.CategoryID,
		Tag:        tmpl.front.Tag,
		Author:     tmpl.front.Author,
		Fallback:   true,
	}
}

// FallbackLoadError reports a problem parsing the embedded fallback documents.
func FallbackLoadError() error {
	_, err := fallbackSet()
	return err
}

func fallbackSet() (map[string]fallbackTemplate, error) {
	fallbackOnce.Do(func() {
		fallbackTemplates, fallbackErr = loadFallbackTemplates(fallbackFS)
	})
	return fallbackTemplates, fallbackErr
}

func loadFallbackTemplates(fsys fs.FS) (map[string]fallbackTemplate, error) {
	files, err := fs.Glob(fsys, "fallback/*.md")
	if err != nil {
		return nil, err
	}
	md := goldmark.New()
	out := make(map[string]fallbackTemplate, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return out, fmt.Errorf("cms: read fallback %s: %w", file, err)
		}
		fm, body := splitFrontMatter(string(data))
		front := fallbackFrontMatter{}
		if strings.TrimSpace(fm) != "" {
			if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
				return out, fmt.Errorf("cms: parse front matter %s: %w", file, err)
			}
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(body), &buf); err != nil {
			return out, fmt.Errorf("cms: render fallback %s: %w", file, err)
		}
		lang := strings.ToLower(strings.TrimSpace(front.Lang))
		if lang == "" {
			lang = strings.TrimSuffix(path.Base(file), ".md")
		}
		out[lang] = fallbackTemplate{front: front, html: buf.String()}
	}
	return out, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 {
		return "", ""
	}
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}
