package main

import (
	"context"
	"html/template"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cms"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/content"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/format"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/nav"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/reader"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/theme"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/translation"
)

const excerptLimit = 160

// ReaderView aggregates all data needed for the reader page.
type ReaderView struct {
	State       reader.State
	Viewport    reader.Viewport
	Layout      reader.Layout
	HeaderTitle string
	ActualLang  string
	Languages   []LanguageOption
	Primary     PaneView
	Secondary   *PaneView
	Links       nav.Links
	Demo        bool
}

// Dual reports whether two panes are shown.
func (v ReaderView) Dual() bool { return v.Layout == reader.Dual }

// HasNav reports whether any footer navigation control is shown.
func (v ReaderView) HasNav() bool {
	return v.Links.Previous != "" || v.Links.Next != "" || v.Links.Category != ""
}

// PaneView is one rendered article column.
type PaneView struct {
	ID        int
	Title     string
	Category  string
	Author    string
	Initials  string
	Body      template.HTML
	Secondary bool
	// SwipeURL is the swipe endpoint for this pane without dx and dy.
	SwipeURL string
}

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Code   string
	Name   string
	Href   string
	Active bool
}

// readerLoad is the outcome of fetching everything a reader page needs.
type readerLoad struct {
	Snapshot   reader.Snapshot
	Navigation nav.Navigation
	Palette    theme.Palette
	ThemeErr   error
}

// loadReader fetches the article and colour scheme concurrently, then the
// category siblings, then the next article when a second pane can be shown.
func (a *app) loadReader(ctx context.Context, state reader.State, vp reader.Viewport) readerLoad {
	sess := reader.NewSession()
	ticket := sess.Begin(state.Key())

	var (
		out     readerLoad
		article cms.Article
	)
	// Both fetches fold their failures into the results, so the group
	// only joins them.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		article = a.cms.ArticleOrFallback(gctx, state.ArticleID, state.Lang)
		return nil
	})
	g.Go(func() error {
		out.Palette, out.ThemeErr = a.themes.Resolve(gctx, state.Color)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		sess.Fail(ticket, err)
		out.Snapshot = sess.Snapshot()
		return out
	}
	sess.Resolve(ticket, article)

	out.Navigation = a.nav.Resolve(ctx, article.ID, article.CategoryID)
	if vp == reader.Wide && out.Navigation.Next != nil && sess.Current(ticket) {
		sess.ResolveNext(ticket, a.cms.ArticleOrFallback(ctx, out.Navigation.Next.ID, state.Lang))
	}
	out.Snapshot = sess.Snapshot()
	return out
}

// buildReaderView turns a ready load into the page view model.
func buildReaderView(state reader.State, vp reader.Viewport, load readerLoad) ReaderView {
	snap := load.Snapshot
	article := snap.Article
	actual := translation.ActualLanguage(article, state.Lang)
	query := state.Query()

	view := ReaderView{
		State:      state,
		Viewport:   vp,
		Layout:     reader.DecideLayout(vp, snap.Next != nil, snap.NextLoaded),
		ActualLang: actual,
		Links:      nav.BuildLinks(load.Navigation, query),
		Demo:       article.Fallback,
	}
	view.Primary = newPane(article, load.Palette.Text.Main, swipeURL(query, false))

	title := view.Primary.Title
	if view.Dual() {
		second := newPane(*snap.Next, load.Palette.Text.Main, swipeURL(query, true))
		second.Secondary = true
		view.Secondary = &second
		title = title + " | " + second.Title
	}
	view.HeaderTitle = format.Truncate(title, format.TitleLimit)

	for _, l := range translation.Available(article, actual) {
		q := url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		q.Set("to", l.Code)
		view.Languages = append(view.Languages, LanguageOption{
			Code:   l.Code,
			Name:   l.Name,
			Href:   "/language?" + q.Encode(),
			Active: l.Code == actual,
		})
	}
	return view
}

func newPane(article cms.Article, textColor, swipe string) PaneView {
	return PaneView{
		ID:       article.ID,
		Title:    content.DecodeEntities(article.Title),
		Category: content.DecodeEntities(article.Category),
		Author:   article.Author,
		Initials: format.Initials(article.Author),
		Body:     template.HTML(content.Render(article.Content, textColor)),
		SwipeURL: swipe,
	}
}

func swipeURL(query url.Values, secondary bool) string {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	if secondary {
		q.Set("pane", "secondary")
	}
	return "/swipe?" + q.Encode()
}
