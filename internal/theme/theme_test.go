package theme

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cache"
)

func TestContrastColor(t *testing.T) {
	require.Equal(t, White, ContrastColor("#000000"))
	require.Equal(t, Black, ContrastColor("#ffffff"))
	require.Equal(t, Black, ContrastColor("#808080"), "128/255 is above the threshold")
	require.Equal(t, White, ContrastColor("#7f7f7f"), "127/255 is below the threshold")
	require.Equal(t, Black, ContrastColor("FFF"))
	require.Equal(t, White, ContrastColor("not-a-colour"))
}

func TestThresholdTieGoesToWhite(t *testing.T) {
	require.Equal(t, White, textColorForLuminance(0.5))
	require.Equal(t, Black, textColorForLuminance(0.5000001))
}

func TestDefaultPalette(t *testing.T) {
	p := Default.Palette("")
	require.Equal(t, Scheme{Header: "#ffffff", Main: "#f9fafb", Footer: "#ffffff"}, p.Scheme)
	require.Equal(t, TextColors{Header: Black, Main: Black, Footer: Black}, p.Text)
}

func TestValidate(t *testing.T) {
	s, err := Scheme{Header: "#1E3A8A", Main: "fff", Footer: " #000 "}.Validate()
	require.NoError(t, err)
	require.Equal(t, Scheme{Header: "#1e3a8a", Main: "#ffffff", Footer: "#000000"}, s)

	_, err = Scheme{Header: "#1e3a8a", Main: "#fff"}.Validate()
	require.ErrorIs(t, err, ErrInvalidScheme)
	require.Contains(t, err.Error(), "footer")

	_, err = Scheme{Header: "blue", Main: "#fff", Footer: "#fff"}.Validate()
	require.ErrorIs(t, err, ErrInvalidScheme)
}

func newServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestFetchValidScheme(t *testing.T) {
	var path string
	base := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"header": "#1e3a8a", "main": "#f0f9ff", "footer": "#1e3a8a"}`))
	})
	c := NewClient(base, WithRetryDelay(0))

	p, err := c.Resolve(context.Background(), "ocean")
	require.NoError(t, err)
	require.Equal(t, "/ocean.json", path)
	require.Equal(t, "ocean", p.Key)
	require.Equal(t, TextColors{Header: White, Main: Black, Footer: White}, p.Text)
}

func TestFetchMissingKeyFallsBack(t *testing.T) {
	base := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"header": "#1e3a8a", "main": "#f0f9ff"}`))
	})
	c := NewClient(base, WithRetryDelay(0))

	p, err := c.Resolve(context.Background(), "broken")
	require.ErrorIs(t, err, ErrInvalidScheme)
	require.Equal(t, Default, p.Scheme)
}

func TestFetchRetriesTransportFailureOnce(t *testing.T) {
	var calls atomic.Int32
	base := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"header": "#000", "main": "#000", "footer": "#000"}`))
	})
	c := NewClient(base, WithRetryDelay(0))

	s, err := c.Fetch(context.Background(), "night")
	require.NoError(t, err)
	require.Equal(t, "#000000", s.Main)
	require.EqualValues(t, 2, calls.Load())
}

func TestFetchDoesNotRetryInvalidDocument(t *testing.T) {
	var calls atomic.Int32
	base := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`not json`))
	})
	c := NewClient(base, WithRetryDelay(0))

	_, err := c.Fetch(context.Background(), "x")
	require.True(t, errors.Is(err, ErrInvalidScheme))
	require.EqualValues(t, 1, calls.Load())
}

func TestFetchRejectsUnsafeKeys(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	for _, key := range []string{"../secret", "a/b", "a b", ""} {
		_, err := c.Fetch(context.Background(), key)
		require.ErrorIs(t, err, ErrInvalidScheme, key)
	}
}

func TestResolveEmptyKeyUsesDefault(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	p, err := c.Resolve(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, Default, p.Scheme)
}

func TestFetchCachesSchemes(t *testing.T) {
	var calls atomic.Int32
	base := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"header": "#111111", "main": "#222222", "footer": "#333333"}`))
	})
	c := NewClient(base, WithCache(cache.NewMemory(), time.Minute))

	for i := 0; i < 3; i++ {
		_, err := c.Fetch(context.Background(), "grey")
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, calls.Load())
}
