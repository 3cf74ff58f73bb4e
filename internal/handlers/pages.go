package handlers

import (
	"html/template"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/middleware"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/seo"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/theme"
)

// Notice is a banner rendered above the page content.
type Notice struct {
	Level   string
	Message string
}

// PageData is a generic view model for pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       seo.Meta
	JSONLD    []template.JS
	Analytics Analytics
	Path      string
	Palette   theme.Palette
	Notices   []Notice
	TOCURL    string

	// Optional per-page view model payloads
	Reader  any
	Results any
	Error   any
}

// NewPageData returns page data with the default palette.
func NewPageData(title, lang, path string, analytics Analytics) PageData {
	return PageData{
		Title:     title,
		Lang:      lang,
		Path:      path,
		Analytics: analytics,
		Palette:   theme.Default.Palette(""),
	}
}

// AddNotice appends a banner.
func (p *PageData) AddNotice(level, message string) {
	if message == "" {
		return
	}
	p.Notices = append(p.Notices, Notice{Level: level, Message: message})
}

// AddFlash appends a consumed flash notice.
func (p *PageData) AddFlash(f middleware.Flash, ok bool) {
	if ok {
		p.AddNotice(f.Level, f.Message)
	}
}

// AddJSONLD embeds a structured data payload. Empty payloads are skipped.
func (p *PageData) AddJSONLD(payload string) {
	if payload != "" {
		p.JSONLD = append(p.JSONLD, template.JS(payload))
	}
}
