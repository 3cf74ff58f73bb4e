package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/format"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/i18n"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/observability"
)

const layoutTemplate = "layout.tmpl"

// renderer executes a page template inside the shared layout. In dev mode,
// templates are reparsed on each request.
type renderer struct {
	fsys  fs.FS
	dev   bool
	funcs template.FuncMap
	pages map[string]*template.Template
}

func newRenderer(fsys fs.FS, dev bool, bundle *i18n.Bundle) (*renderer, error) {
	rd := &renderer{
		fsys:  fsys,
		dev:   dev,
		pages: map[string]*template.Template{},
		funcs: template.FuncMap{
			"t":        bundle.T,
			"tf":       bundle.Tf,
			"initials": format.Initials,
			"truncate": format.Truncate,
			"percent":  format.Percent,
			"upper":    strings.ToUpper,
			"year":     func() int { return time.Now().Year() },
		},
	}
	if dev {
		return rd, nil
	}
	// Parse templates once in production
	names, err := fs.Glob(fsys, "*.tmpl")
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		page := strings.TrimSuffix(name, ".tmpl")
		t, err := rd.parse(page)
		if err != nil {
			return nil, err
		}
		rd.pages[page] = t
	}
	if len(rd.pages) == 0 {
		return nil, fmt.Errorf("no templates found")
	}
	return rd, nil
}

func (rd *renderer) parse(page string) (*template.Template, error) {
	t, err := template.New(layoutTemplate).Funcs(rd.funcs).ParseFS(rd.fsys, layoutTemplate, page+".tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", page, err)
	}
	return t, nil
}

func (rd *renderer) lookup(page string) (*template.Template, error) {
	if rd.dev {
		return rd.parse(page)
	}
	t, ok := rd.pages[page]
	if !ok {
		return nil, fmt.Errorf("template %s not found", page)
	}
	return t, nil
}

// Page renders the base layout with page's content block.
func (rd *renderer) Page(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	t, err := rd.lookup(page)
	if err != nil {
		observability.FromContext(r.Context()).Error("render: template unavailable", zap.String("page", page), zap.Error(err))
		http.Error(w, "template not initialized", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		observability.FromContext(r.Context()).Error("render: template exec failed", zap.String("page", page), zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
