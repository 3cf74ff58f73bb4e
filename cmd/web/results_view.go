package main

import (
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cms"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/content"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/format"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/quiz"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/reader"
)

// ResultsView aggregates all data needed for the quiz results page.
type ResultsView struct {
	HeaderTitle string
	Intro       string
	Score       quiz.Result
	Message     string
	Items       []ResultItem
	Initials    string
	ReturnHref  string
	TOCURL      string
	Demo        bool
}

// ResultItem is one row of the detailed results list.
type ResultItem struct {
	Label       string
	IsCorrect   bool
	SelectedTag string
	CorrectTag  string
}

// buildResultsView scores sub and pairs it with the feedback article for
// the score band. Return links point back at the quiz article.
func buildResultsView(sub quiz.Submission, lang string, article cms.Article, message, tocURL string) ResultsView {
	score := quiz.Score(sub.Classifications)
	title := content.DecodeEntities(article.Title)
	view := ResultsView{
		HeaderTitle: format.HeadWords(title, 2) + " · " + content.DecodeEntities(article.Category),
		Intro:       content.PlainText(article.Content),
		Score:       score,
		Message:     message,
		Initials:    format.Initials(article.Author),
		ReturnHref:  reader.State{ArticleID: sub.ArticleID, Lang: lang}.URL(),
		TOCURL:      tocURL,
		Demo:        article.Fallback,
	}
	for _, c := range sub.Classifications {
		view.Items = append(view.Items, ResultItem{
			Label:       c.Label(),
			IsCorrect:   c.IsCorrect,
			SelectedTag: c.SelectedTag,
			CorrectTag:  c.CorrectTag,
		})
	}
	return view
}
