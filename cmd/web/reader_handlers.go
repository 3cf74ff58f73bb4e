package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/content"
	mw "github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/middleware"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/nav"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/observability"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/reader"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/seo"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/translation"
)

// ErrorView is the body of the error page.
type ErrorView struct {
	Title       string
	Body        string
	ActionHref  string
	ActionLabel string
}

// ReaderHandler renders the article page for the URL state.
func (a *app) ReaderHandler(w http.ResponseWriter, r *http.Request) {
	state, err := reader.ParseState(r.URL.Query(), a.defaults())
	if err != nil {
		a.invalidArticle(w, r, state)
		return
	}
	vp := reader.ViewportFrom(r)
	load := a.loadReader(r.Context(), state, vp)

	vm := a.page(r, a.bundle.T(state.Lang, "site.title"), state.Lang)
	vm.Palette = load.Palette
	vm.AddFlash(mw.FlashFromContext(r.Context()))

	if load.Snapshot.Phase != reader.Ready {
		observability.FromContext(r.Context()).Warn("reader: load failed",
			zap.Int("article_id", state.ArticleID),
			zap.String("lang", state.Lang),
			zap.Error(load.Snapshot.Err),
		)
		vm.Error = ErrorView{
			Title:       a.bundle.T(state.Lang, "error.failed.title"),
			Body:        a.bundle.T(state.Lang, "error.failed.body"),
			ActionHref:  state.URL(),
			ActionLabel: a.bundle.T(state.Lang, "error.reload"),
		}
		a.render.Page(w, r, http.StatusServiceUnavailable, "error", vm)
		return
	}

	view := buildReaderView(state, vp, load)
	vm.Title = view.HeaderTitle
	vm.Lang = view.ActualLang
	if view.Demo {
		vm.AddNotice(mw.FlashInfo, a.bundle.T(vm.Lang, "demo.banner"))
	}
	if load.ThemeErr != nil {
		vm.AddNotice(mw.FlashWarning, a.bundle.T(vm.Lang, "theme.invalid"))
	}

	article := load.Snapshot.Article
	canonical := absoluteURL(r, state.WithLang(view.ActualLang).URL())
	vm.SEO = seo.ForArticle(seo.Page{
		Title:       view.Primary.Title,
		Description: content.Excerpt(article.Content, excerptLimit),
		URL:         canonical,
		Lang:        view.ActualLang,
		Languages:   translation.Available(article, view.ActualLang),
		LinkFor: func(id int, lang string) string {
			return absoluteURL(r, reader.State{ArticleID: id, Lang: lang}.URL())
		},
		Fallback: article.Fallback,
	})
	vm.AddJSONLD(seo.JSON(seo.Article(view.Primary.Title, canonical, article.Author, view.ActualLang, view.Primary.Category)))
	if first := load.Navigation.CategoryFirst; first != nil {
		vm.AddJSONLD(seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
			{Name: view.Primary.Category, Item: absoluteURL(r, state.With(first.ID).URL())},
			{Name: view.Primary.Title, Item: canonical},
		})))
	}
	vm.Reader = view
	a.render.Page(w, r, http.StatusOK, "reader", vm)
}

func (a *app) invalidArticle(w http.ResponseWriter, r *http.Request, state reader.State) {
	vm := a.page(r, a.bundle.T(state.Lang, "site.title"), state.Lang)
	vm.SEO.NoIndex = true
	vm.Error = ErrorView{
		Title:       a.bundle.T(state.Lang, "error.failed.title"),
		Body:        a.bundle.T(state.Lang, "error.invalid_article"),
		ActionHref:  state.With(a.cfg.Reader.DefaultArticleID).URL(),
		ActionLabel: a.bundle.T(state.Lang, "error.reload"),
	}
	a.render.Page(w, r, http.StatusBadRequest, "error", vm)
}

// NotFoundHandler renders the error page for unknown routes.
func (a *app) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	lang := a.bundle.Resolve(r.Header.Get("Accept-Language"))
	vm := a.page(r, a.bundle.T(lang, "site.title"), lang)
	vm.SEO.NoIndex = true
	vm.Error = ErrorView{
		Title:       http.StatusText(http.StatusNotFound),
		ActionHref:  reader.State{ArticleID: a.cfg.Reader.DefaultArticleID, Lang: lang}.URL(),
		ActionLabel: a.bundle.T(lang, "nav.category"),
	}
	a.render.Page(w, r, http.StatusNotFound, "error", vm)
}

// LanguageHandler switches the article to the language in "to" and
// redirects to the translated article, or back with a notice.
func (a *app) LanguageHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state, err := reader.ParseState(q, a.defaults())
	if err != nil {
		http.Redirect(w, r, state.With(a.cfg.Reader.DefaultArticleID).URL(), http.StatusSeeOther)
		return
	}
	to := translation.Normalize(q.Get("to"))
	article := a.cms.ArticleOrFallback(r.Context(), state.ArticleID, state.Lang)
	actual := translation.ActualLanguage(article, state.Lang)
	outcome := translation.ResolveSwitch(article, actual, to)

	observability.FromContext(r.Context()).Debug("reader: language switch",
		zap.Int("article_id", article.ID),
		zap.String("from", actual),
		zap.String("to", to),
		zap.String("outcome", outcome.Kind.String()),
	)

	target := state
	switch outcome.Kind {
	case translation.NavigateTo:
		target = state.With(outcome.TargetID).WithLang(to)
		a.flash.Set(w, mw.Flash{Level: mw.FlashInfo, Message: a.bundle.Tf(to, "language.changed", translation.Name(to))})
	case translation.AlreadyInLanguage:
		a.flash.Set(w, mw.Flash{Level: mw.FlashInfo, Message: a.bundle.Tf(actual, "language.already", translation.Name(to))})
	default:
		a.flash.Set(w, mw.Flash{Level: mw.FlashWarning, Message: a.bundle.Tf(actual, "translation.unavailable", translation.Name(to))})
	}
	http.Redirect(w, r, target.URL(), http.StatusSeeOther)
}

var errNoSwipeTarget = errors.New("no swipe target")

// SwipeHandler classifies a drag and redirects to the sibling it selects.
// Ignored gestures answer 204 so the browser stays on the page.
func (a *app) SwipeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state, err := reader.ParseState(q, a.defaults())
	if err != nil {
		mw.WriteError(w, http.StatusBadRequest, a.bundle.T(state.Lang, "error.invalid_article"))
		return
	}
	gesture := reader.ParseSwipe(q)
	if gesture == reader.NoSwipe {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	id, err := a.swipeTarget(r, state, gesture, q.Get("pane") == "secondary")
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, state.With(id).URL(), http.StatusSeeOther)
}

func (a *app) swipeTarget(r *http.Request, state reader.State, gesture reader.Swipe, secondary bool) (int, error) {
	ctx := r.Context()
	article := a.cms.ArticleOrFallback(ctx, state.ArticleID, state.Lang)
	current := a.nav.Resolve(ctx, article.ID, article.CategoryID)
	if !secondary || current.Next == nil {
		return pickSwipeTarget(gesture, secondary, current, nav.Navigation{})
	}
	var afterNext nav.Navigation
	if gesture == reader.SwipeNext {
		next := a.cms.ArticleOrFallback(ctx, current.Next.ID, state.Lang)
		afterNext = a.nav.Resolve(ctx, next.ID, next.CategoryID)
	}
	return pickSwipeTarget(gesture, secondary, current, afterNext)
}

// pickSwipeTarget maps a gesture to an article id. On the primary pane a
// left drag goes to the next sibling and a right drag to the previous one.
// On the second pane, which shows the next sibling, a left drag goes to the
// sibling after it and a right drag opens the next sibling itself.
func pickSwipeTarget(gesture reader.Swipe, secondary bool, current, afterNext nav.Navigation) (int, error) {
	var target *nav.Sibling
	switch {
	case !secondary && gesture == reader.SwipeNext:
		target = current.Next
	case !secondary && gesture == reader.SwipePrevious:
		target = current.Previous
	case secondary && gesture == reader.SwipePrevious:
		target = current.Next
	case secondary && gesture == reader.SwipeNext:
		target = afterNext.Next
	}
	if target == nil {
		return 0, errNoSwipeTarget
	}
	return target.ID, nil
}
