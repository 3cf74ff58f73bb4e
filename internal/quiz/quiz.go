// Package quiz scores image-classification answers and picks the matching result article.
package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// MaxClassifications bounds a submitted answer list.
const MaxClassifications = 200

// ErrInvalidPayload reports an unreadable results submission.
var ErrInvalidPayload = errors.New("quiz: invalid payload")

// Classification is one answered quiz item.
type Classification struct {
	ImageIndex  int    `json:"imageIndex"`
	SelectedTag string `json:"selectedTag"`
	CorrectTag  string `json:"correctTag"`
	IsCorrect   bool   `json:"isCorrect"`
}

// Label is the two-digit, one-based item number shown next to a result.
func (c Classification) Label() string {
	return fmt.Sprintf("%02d", c.ImageIndex+1)
}

// Result summarises a list of classifications.
type Result struct {
	Correct    int
	Total      int
	Percentage int
}

// Score counts correct answers. Percentage is 0 for an empty list.
func Score(items []Classification) Result {
	r := Result{Total: len(items)}
	for _, c := range items {
		if c.IsCorrect {
			r.Correct++
		}
	}
	if r.Total > 0 {
		r.Percentage = int(math.Round(float64(r.Correct) / float64(r.Total) * 100))
	}
	return r
}

// ResultArticleID maps a percentage to the article holding its feedback text.
func ResultArticleID(pct int) int {
	switch {
	case pct > 95:
		return 358
	case pct >= 75:
		return 360
	case pct >= 50:
		return 362
	case pct >= 25:
		return 365
	case pct >= 5:
		return 370
	default:
		return 367
	}
}

// MessageKey returns the i18n key of the encouragement line for pct.
func MessageKey(pct int) string {
	switch {
	case pct >= 95:
		return "results.message.excellent"
	case pct >= 75:
		return "results.message.very_good"
	case pct >= 50:
		return "results.message.good"
	case pct >= 25:
		return "results.message.keep_practicing"
	case pct >= 5:
		return "results.message.dont_give_up"
	default:
		return "results.message.try_again"
	}
}

// Submission is the body accepted by the results endpoint.
type Submission struct {
	ArticleID       int              `json:"articleId"`
	Lang            string           `json:"lang"`
	Classifications []Classification `json:"classifications"`
}

// DecodeSubmission reads a JSON Submission from r.
func DecodeSubmission(r io.Reader) (Submission, error) {
	var s Submission
	dec := json.NewDecoder(io.LimitReader(r, 1<<20))
	if err := dec.Decode(&s); err != nil {
		return Submission{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(s.Classifications) > MaxClassifications {
		return Submission{}, fmt.Errorf("%w: %d classifications", ErrInvalidPayload, len(s.Classifications))
	}
	s.Lang = strings.ToLower(strings.TrimSpace(s.Lang))
	return s, nil
}

// DecodeSubmissionString is DecodeSubmission for form values.
func DecodeSubmissionString(payload string) (Submission, error) {
	if strings.TrimSpace(payload) == "" {
		return Submission{}, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}
	return DecodeSubmission(strings.NewReader(payload))
}
