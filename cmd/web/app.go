package main

import (
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cms"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/config"
	handlersPkg "github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/handlers"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/i18n"
	mw "github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/middleware"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/nav"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/reader"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/status"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/theme"
)

const (
	themeCacheTTL = 5 * time.Minute
	assetMaxAge   = "public, max-age=604800, stale-while-revalidate=86400"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

//go:embed public
var embeddedPublic embed.FS

type app struct {
	cfg       config.Config
	logger    *zap.Logger
	cms       *cms.Client
	themes    *theme.Client
	nav       *nav.Resolver
	bundle    *i18n.Bundle
	flash     *mw.Flasher
	render    *renderer
	analytics handlersPkg.Analytics
	assets    fs.FS
	status    *status.Checker
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if a.cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(a.cfg.Server.RequestTimeout))
	}

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})

	r.Get("/status", a.StatusHandler)

	r.Handle("/assets/*", http.StripPrefix("/assets", mw.AssetsWithCache(a.assets, assetMaxAge)))

	r.Group(func(r chi.Router) {
		r.Use(mw.ClientHints(reader.AcceptCH))
		r.With(a.flash.Middleware).Get("/", a.ReaderHandler)
		r.Get("/language", a.LanguageHandler)
		r.Get("/swipe", a.SwipeHandler)
	})
	r.Post("/results", a.ResultsHandler)

	r.NotFound(a.NotFoundHandler)
	return r
}

// StatusHandler reports upstream reachability. The reader keeps serving
// sample content while degraded, so the response is always 200.
func (a *app) StatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(a.status.Summary(r.Context()))
}

func (a *app) defaults() reader.Defaults {
	return reader.Defaults{ArticleID: a.cfg.Reader.DefaultArticleID, Lang: a.cfg.Reader.DefaultLang}
}

// page starts a layout view model in lang.
func (a *app) page(r *http.Request, title, lang string) handlersPkg.PageData {
	vm := handlersPkg.NewPageData(title, lang, r.URL.Path, a.analytics)
	vm.TOCURL = a.cfg.Reader.TOCURL
	return vm
}

// templateSource reads templates from disk in dev mode so edits show up
// without a rebuild.
func templateSource(cfg config.ServerConfig) fs.FS {
	if cfg.Dev && cfg.TemplatesDir != "" {
		if info, err := os.Stat(cfg.TemplatesDir); err == nil && info.IsDir() {
			return os.DirFS(cfg.TemplatesDir)
		}
	}
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

func publicAssets() fs.FS {
	sub, err := fs.Sub(embeddedPublic, "public")
	if err != nil {
		panic(err)
	}
	return sub
}

// absoluteURL resolves path against the scheme and host the request arrived on.
func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}
