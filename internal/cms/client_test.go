package cms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cache"
)

const postJSON = `{
  "id": 12,
  "title": {"rendered": "L&#8217;intelligence artificielle"},
  "content": {"rendered": "<p>Hello</p>"},
  "categories": [5],
  "translations": {"en": 12, "FR": 14, "de": 0},
  "_embedded": {
    "author": [{"name": "Marco Barnig"}],
    "wp:term": [
      [{"id": 5, "name": "Basics", "taxonomy": "category"}],
      [{"id": 9, "name": "intro", "taxonomy": "post_tag"}]
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRetryDelay(0)}, opts...)
	return NewClient(srv.URL, opts...)
}

func TestFetchArticleParsesPost(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(postJSON))
	})

	a, err := c.FetchArticle(context.Background(), 12, "en")
	require.NoError(t, err)

	require.Equal(t, "/posts/12", gotPath)
	require.Equal(t, "lang=en&_embed", gotQuery)
	require.Equal(t, 12, a.ID)
	require.Equal(t, "L&#8217;intelligence artificielle", a.Title)
	require.Equal(t, "<p>Hello</p>", a.Content)
	require.Equal(t, "Basics", a.Category)
	require.Equal(t, 5, a.CategoryID)
	require.Equal(t, "intro", a.Tag)
	require.Equal(t, "Marco Barnig", a.Author)
	require.Equal(t, map[string]int{"en": 12, "fr": 14}, a.Translations)
	require.False(t, a.Fallback)
}

func TestFetchArticleDefaultsAndEmptyTranslations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 7, "title": {"rendered": "T"}, "content": {"rendered": ""}, "translations": []}`))
	})

	a, err := c.FetchArticle(context.Background(), 7, "fr")
	require.NoError(t, err)
	require.Equal(t, "Unknown Category", a.Category)
	require.Equal(t, 1, a.CategoryID)
	require.Equal(t, "article", a.Tag)
	require.Equal(t, "admin", a.Author)
	require.Nil(t, a.Translations)
	require.False(t, a.HasTranslations())
}

func TestFetchArticleRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(postJSON))
	})

	a, err := c.FetchArticle(context.Background(), 12, "en")
	require.NoError(t, err)
	require.Equal(t, 12, a.ID)
	require.EqualValues(t, 2, calls.Load())
}

func TestFetchArticleGivesUpAfterSecondFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.FetchArticle(context.Background(), 12, "en")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	require.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	require.EqualValues(t, 2, calls.Load())
}

func TestFetchArticleNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	})

	_, err := c.FetchArticle(context.Background(), 99, "en")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.True(t, te.NotFound())
	require.EqualValues(t, 1, calls.Load())
}

func TestFetchArticleMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "twelve"`))
	})
	_, err := c.FetchArticle(context.Background(), 12, "en")
	require.True(t, IsTransport(err))
}

func TestArticleOrFallbackMarksFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	a := c.ArticleOrFallback(context.Background(), 42, "de")
	require.True(t, a.Fallback)
	require.Equal(t, 42, a.ID)
	require.Equal(t, "Sample Article 42", a.Title)
	require.Equal(t, "Sample Category", a.Category)
	require.Equal(t, 1, a.CategoryID)
	require.Equal(t, "sample", a.Tag)
	require.Equal(t, "Sample Author", a.Author)
	require.Contains(t, a.Content, "<h2>Beispiel-Artikel-Inhalt 42</h2>")
	require.Contains(t, a.Content, "<li>Sprachauswahl</li>")
}

func TestArticleOrFallbackPassesThroughRealData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(postJSON))
	})
	a := c.ArticleOrFallback(context.Background(), 12, "en")
	require.False(t, a.Fallback)
	require.Equal(t, "Basics", a.Category)
}

func TestFallbackArticleLanguages(t *testing.T) {
	require.NoError(t, FallbackLoadError())

	en := FallbackArticle(3, "en")
	fr := FallbackArticle(3, "fr")
	lb := FallbackArticle(3, "lb")

	require.Contains(t, en.Content, "Sample Article Content 3")
	require.Contains(t, fr.Content, "Contenu d'article exemple 3")
	require.Equal(t, en.Content, lb.Content, "unknown languages use English")
	require.False(t, strings.Contains(en.Content, idPlaceholder))
}

func TestFetchCategoryArticles(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"id": 10, "title": {"rendered": "A"}}, {"id": 12, "title": {"rendered": "B"}}, {"id": 15, "title": {"rendered": "C"}}]`))
	})

	siblings, err := c.FetchCategoryArticles(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, "categories=5&order=asc&orderby=date&per_page=100", gotQuery)
	require.Len(t, siblings, 3)
	require.Equal(t, 10, siblings[0].ID)
	require.Equal(t, "C", siblings[2].Title)
}

func TestResponsesAreCached(t *testing.T) {
	var calls atomic.Int32
	store := cache.NewMemory()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(postJSON))
	}, WithCache(store, time.Minute))

	for i := 0; i < 3; i++ {
		_, err := c.FetchArticle(context.Background(), 12, "en")
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, calls.Load())

	_, err := c.FetchArticle(context.Background(), 12, "fr")
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load(), "language is part of the cache key")
}

func TestFailuresAreNotCached(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}, WithCache(cache.NewMemory(), time.Minute))

	_, _ = c.FetchArticle(context.Background(), 1, "en")
	_, _ = c.FetchArticle(context.Background(), 1, "en")
	require.EqualValues(t, 2, calls.Load())
}

func TestRetryHonoursContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, WithRetryDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := c.FetchArticle(ctx, 12, "en")
	require.Error(t, err)
	require.Less(t, time.Since(start), time.Second)
}
