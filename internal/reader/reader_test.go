package reader

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cms"
)

func TestSessionLoadingToReady(t *testing.T) {
	s := NewSession()
	ticket := s.Begin(Key{ArticleID: 12, Lang: "en"})
	require.Equal(t, Loading, s.Snapshot().Phase)

	require.True(t, s.Resolve(ticket, cms.Article{ID: 12, Title: "A"}))
	snap := s.Snapshot()
	require.Equal(t, Ready, snap.Phase)
	require.Equal(t, "A", snap.Article.Title)
}

func TestSessionDiscardsStaleResults(t *testing.T) {
	s := NewSession()
	old := s.Begin(Key{ArticleID: 12, Lang: "en"})
	fresh := s.Begin(Key{ArticleID: 15, Lang: "en"})

	require.False(t, s.Current(old))
	require.False(t, s.Resolve(old, cms.Article{ID: 12}))
	require.False(t, s.Fail(old, errors.New("late")))
	require.False(t, s.ResolveNext(old, cms.Article{ID: 13}))
	require.Equal(t, Loading, s.Snapshot().Phase)

	require.True(t, s.Resolve(fresh, cms.Article{ID: 15}))
	require.Equal(t, 15, s.Snapshot().Article.ID)
}

func TestSessionLanguageChangeSupersedes(t *testing.T) {
	s := NewSession()
	en := s.Begin(Key{ArticleID: 12, Lang: "en"})
	s.Begin(Key{ArticleID: 12, Lang: "fr"})
	require.False(t, s.Resolve(en, cms.Article{ID: 12}))
}

func TestSessionFailedStaysFailed(t *testing.T) {
	s := NewSession()
	ticket := s.Begin(Key{ArticleID: 12, Lang: "en"})
	boom := errors.New("boom")
	require.True(t, s.Fail(ticket, boom))

	require.False(t, s.Resolve(ticket, cms.Article{ID: 12}))
	snap := s.Snapshot()
	require.Equal(t, Failed, snap.Phase)
	require.ErrorIs(t, snap.Err, boom)

	reload := s.Begin(Key{ArticleID: 12, Lang: "en"})
	require.True(t, s.Resolve(reload, cms.Article{ID: 12}))
	require.Equal(t, Ready, s.Snapshot().Phase)
}

func TestSessionReadyReentersLoading(t *testing.T) {
	s := NewSession()
	first := s.Begin(Key{ArticleID: 12, Lang: "en"})
	require.True(t, s.Resolve(first, cms.Article{ID: 12}))
	s.Begin(Key{ArticleID: 15, Lang: "en"})

	snap := s.Snapshot()
	require.Equal(t, Loading, snap.Phase)
	require.Zero(t, snap.Article.ID)
}

func TestSessionNextArticle(t *testing.T) {
	s := NewSession()
	ticket := s.Begin(Key{ArticleID: 12, Lang: "en"})
	require.True(t, s.ResolveNext(ticket, cms.Article{ID: 15}))
	require.True(t, s.Resolve(ticket, cms.Article{ID: 12}))

	snap := s.Snapshot()
	require.NotNil(t, snap.Next)
	require.Equal(t, 15, snap.Next.ID)
	require.True(t, snap.NextLoaded)

	require.True(t, s.ResolveNext(ticket, cms.Article{ID: 15, Fallback: true}))
	require.False(t, s.Snapshot().NextLoaded)
}

func TestSessionSnapshotIsACopy(t *testing.T) {
	s := NewSession()
	ticket := s.Begin(Key{ArticleID: 12, Lang: "en"})
	s.Resolve(ticket, cms.Article{ID: 12, Translations: map[string]int{"en": 12}})

	snap := s.Snapshot()
	snap.Article.Translations["fr"] = 99
	require.NotContains(t, s.Snapshot().Article.Translations, "fr")
}

func TestSessionConcurrentCompletion(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup
	tickets := make([]Ticket, 0, 20)
	for i := 1; i <= 20; i++ {
		tickets = append(tickets, s.Begin(Key{ArticleID: i, Lang: "en"}))
	}
	for i, ticket := range tickets {
		wg.Add(1)
		go func(id int, ticket Ticket) {
			defer wg.Done()
			s.Resolve(ticket, cms.Article{ID: id})
		}(i+1, ticket)
	}
	wg.Wait()
	snap := s.Snapshot()
	require.Equal(t, Ready, snap.Phase)
	require.Equal(t, 20, snap.Article.ID)
}

func TestDecideLayout(t *testing.T) {
	require.Equal(t, Dual, DecideLayout(Wide, true, true))
	require.Equal(t, Single, DecideLayout(Wide, true, false))
	require.Equal(t, Single, DecideLayout(Wide, false, true))
	require.Equal(t, Single, DecideLayout(Narrow, true, true))
}

func TestDetectSwipe(t *testing.T) {
	require.Equal(t, SwipeNext, DetectSwipe(-60, 5))
	require.Equal(t, NoSwipe, DetectSwipe(-40, 0))
	require.Equal(t, SwipePrevious, DetectSwipe(80, -10))
	require.Equal(t, NoSwipe, DetectSwipe(50, 0), "threshold is exclusive")
	require.Equal(t, NoSwipe, DetectSwipe(-70, 90), "mostly vertical")
	require.Equal(t, NoSwipe, DetectSwipe(60, 60))
}

func TestParseSwipe(t *testing.T) {
	require.Equal(t, SwipeNext, ParseSwipe(url.Values{"dx": {"-60"}, "dy": {"5"}}))
	require.Equal(t, NoSwipe, ParseSwipe(url.Values{"dx": {"NaN"}}))
	require.Equal(t, NoSwipe, ParseSwipe(url.Values{}))
}

func TestViewportFrom(t *testing.T) {
	cases := []struct {
		name    string
		target  string
		headers map[string]string
		want    Viewport
	}{
		{"default", "/", nil, Wide},
		{"override narrow", "/?view=narrow", map[string]string{"Sec-CH-Viewport-Width": "1400"}, Narrow},
		{"override wide", "/?view=wide", map[string]string{"User-Agent": "Mozilla/5.0 (iPhone)"}, Wide},
		{"hint narrow", "/", map[string]string{"Sec-CH-Viewport-Width": "390"}, Narrow},
		{"hint wide", "/", map[string]string{"Sec-CH-Viewport-Width": "768"}, Wide},
		{"legacy hint", "/", map[string]string{"Viewport-Width": "500"}, Narrow},
		{"mobile hint", "/", map[string]string{"Sec-CH-UA-Mobile": "?1"}, Narrow},
		{"desktop hint beats ua", "/", map[string]string{"Sec-CH-UA-Mobile": "?0", "User-Agent": "Android"}, Wide},
		{"mobile ua", "/", map[string]string{"User-Agent": "Mozilla/5.0 (Linux; Android 14) Mobile"}, Narrow},
		{"desktop ua", "/", map[string]string{"User-Agent": "Mozilla/5.0 (X11; Linux x86_64)"}, Wide},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tc.target, nil)
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			require.Equal(t, tc.want, ViewportFrom(r))
		})
	}
}

func TestParseState(t *testing.T) {
	d := Defaults{ArticleID: 12, Lang: "en"}

	s, err := ParseState(url.Values{}, d)
	require.NoError(t, err)
	require.Equal(t, State{ArticleID: 12, Lang: "en"}, s)

	s, err = ParseState(url.Values{"p": {"15"}, "lang": {"FR"}, "color": {"ocean"}}, d)
	require.NoError(t, err)
	require.Equal(t, State{ArticleID: 15, Lang: "fr", Color: "ocean"}, s)

	s, err = ParseState(url.Values{"p": {"abc"}, "lang": {"de"}}, d)
	require.ErrorIs(t, err, ErrInvalidArticle)
	require.Equal(t, "de", s.Lang)

	_, err = ParseState(url.Values{"p": {"-3"}}, d)
	require.ErrorIs(t, err, ErrInvalidArticle)
}

func TestStateQuery(t *testing.T) {
	s := State{ArticleID: 12, Lang: "en"}
	require.Equal(t, "/?lang=en&p=12", s.URL())
	s.Color = "ocean"
	require.Equal(t, "/?color=ocean&lang=fr&p=15", s.With(15).WithLang("fr").URL())
	require.Equal(t, Key{ArticleID: 12, Lang: "en"}, s.Key())
}
