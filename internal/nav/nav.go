package nav

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// MaxSiblings is the page size requested from the CMS when scanning a category.
const MaxSiblings = 100

// Sibling references another article in the same category.
type Sibling struct {
	ID    int
	Title string
}

// Navigation holds the sibling references derived for one article.
// A nil field means there is no article in that direction.
type Navigation struct {
	Previous      *Sibling
	Next          *Sibling
	CategoryFirst *Sibling
}

// IsEmpty reports whether no direction is available.
func (n Navigation) IsEmpty() bool {
	return n.Previous == nil && n.Next == nil && n.CategoryFirst == nil
}

// SiblingLister returns a category's articles ordered by ascending publish date.
type SiblingLister interface {
	FetchCategoryArticles(ctx context.Context, categoryID int) ([]Sibling, error)
}

// Resolver derives Navigation values from category sibling lists.
type Resolver struct {
	lister SiblingLister
	logger *zap.Logger
}

// NewResolver constructs a Resolver backed by lister.
func NewResolver(lister SiblingLister, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{lister: lister, logger: logger}
}

// Resolve fetches the siblings of categoryID and locates articleID among them.
// Fetch failures and unknown ids yield an empty Navigation.
func (r *Resolver) Resolve(ctx context.Context, articleID, categoryID int) Navigation {
	if r == nil || r.lister == nil || articleID <= 0 {
		return Navigation{}
	}
	siblings, err := r.lister.FetchCategoryArticles(ctx, categoryID)
	if err != nil {
		r.logger.Warn("nav: category fetch failed, navigation unavailable",
			zap.Int("article_id", articleID),
			zap.Int("category_id", categoryID),
			zap.Error(err),
		)
		return Navigation{}
	}
	n := FromSiblings(articleID, siblings)
	if n.IsEmpty() {
		r.logger.Debug("nav: article not in category list",
			zap.Int("article_id", articleID),
			zap.Int("category_id", categoryID),
			zap.Int("siblings", len(siblings)),
		)
	}
	return n
}

// FromSiblings locates articleID in an ordered sibling list.
func FromSiblings(articleID int, siblings []Sibling) Navigation {
	idx := -1
	for i, s := range siblings {
		if s.ID == articleID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Navigation{}
	}
	var n Navigation
	if idx > 0 {
		n.Previous = ref(siblings[idx-1])
	}
	if idx < len(siblings)-1 {
		n.Next = ref(siblings[idx+1])
	}
	n.CategoryFirst = ref(siblings[0])
	return n
}

func ref(s Sibling) *Sibling {
	cp := s
	return &cp
}

// Links are footer hrefs. An empty string hides the control.
type Links struct {
	Previous string
	Next     string
	Category string
}

// BuildLinks renders Navigation into reader URLs that keep the other query parameters of state.
func BuildLinks(n Navigation, state url.Values) Links {
	return Links{
		Previous: href(n.Previous, state),
		Next:     href(n.Next, state),
		Category: href(n.CategoryFirst, state),
	}
}

// ArticleHref returns the reader URL for id, keeping the other parameters of state.
func ArticleHref(id int, state url.Values) string {
	q := url.Values{}
	for k, vs := range state {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("p", strconv.Itoa(id))
	return "/?" + q.Encode()
}

func href(s *Sibling, state url.Values) string {
	if s == nil {
		return ""
	}
	return ArticleHref(s.ID, state)
}
