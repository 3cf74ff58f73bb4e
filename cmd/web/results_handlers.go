package main

import (
	"errors"
	"mime"
	"net/http"

	"go.uber.org/zap"

	mw "github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/middleware"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/observability"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/quiz"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/translation"
)

const maxFormBytes = 1 << 20

// ResultsHandler scores a quiz submission and renders the results page.
// The body is JSON, or a form whose "payload" field holds the same JSON.
func (a *app) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeResults(w, r)
	lang := a.resultsLang(r, sub.Lang)
	if err != nil {
		observability.FromContext(r.Context()).Info("results: rejected submission", zap.Error(err))
		msg := a.bundle.T(lang, "results.invalid")
		if mw.WantsJSON(r) {
			mw.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		vm := a.page(r, a.bundle.T(lang, "results.title"), lang)
		vm.SEO.NoIndex = true
		vm.Error = ErrorView{
			Title:       a.bundle.T(lang, "results.title"),
			Body:        msg,
			ActionHref:  a.cfg.Reader.ResultsTOCURL,
			ActionLabel: a.bundle.T(lang, "results.toc"),
		}
		a.render.Page(w, r, http.StatusBadRequest, "error", vm)
		return
	}
	if sub.ArticleID <= 0 {
		sub.ArticleID = a.cfg.Reader.ResultsArticleID
	}

	score := quiz.Score(sub.Classifications)
	article := a.cms.ArticleOrFallback(r.Context(), quiz.ResultArticleID(score.Percentage), lang)
	view := buildResultsView(sub, lang, article, a.bundle.T(lang, quiz.MessageKey(score.Percentage)), a.cfg.Reader.ResultsTOCURL)

	vm := a.page(r, a.bundle.T(lang, "results.title"), lang)
	vm.SEO.NoIndex = true
	if view.Demo {
		vm.AddNotice(mw.FlashInfo, a.bundle.T(lang, "demo.banner"))
	}
	vm.Results = view
	a.render.Page(w, r, http.StatusOK, "results", vm)
}

func decodeResults(w http.ResponseWriter, r *http.Request) (quiz.Submission, error) {
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		return quiz.DecodeSubmission(r.Body)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return quiz.Submission{}, errors.Join(quiz.ErrInvalidPayload, err)
	}
	return quiz.DecodeSubmissionString(r.PostFormValue("payload"))
}

// resultsLang prefers the submitted language and falls back to Accept-Language.
func (a *app) resultsLang(r *http.Request, submitted string) string {
	if submitted != "" {
		return translation.Normalize(submitted)
	}
	return a.bundle.Resolve(r.Header.Get("Accept-Language"))
}
