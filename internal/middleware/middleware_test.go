package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/observability"
)

func TestFlashRoundTrip(t *testing.T) {
	f := NewFlasher("test-key", false, nil)

	set := httptest.NewRecorder()
	f.Set(set, Flash{Level: FlashWarning, Message: "Translation to Français is not available."})
	cookies := set.Result().Cookies()
	require.Len(t, cookies, 1)

	var got Flash
	var seen bool
	h := f.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, seen = FlashFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, seen)
	require.Equal(t, FlashWarning, got.Level)
	require.Equal(t, "Translation to Français is not available.", got.Message)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, -1, cleared[0].MaxAge)
}

func TestFlashRejectsTamperedCookie(t *testing.T) {
	signer := NewFlasher("key-a", false, nil)
	set := httptest.NewRecorder()
	signer.Set(set, Flash{Level: FlashInfo, Message: "hello"})
	c := set.Result().Cookies()[0]

	other := NewFlasher("key-b", false, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	_, ok := other.Pop(httptest.NewRecorder(), req)
	require.False(t, ok)

	forged := *c
	forged.Value = "eyJtc2ciOiJoaSJ9." + strings.SplitN(c.Value, ".", 2)[1]
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&forged)
	_, ok = signer.Pop(httptest.NewRecorder(), req)
	require.False(t, ok)
}

func TestFlashWithoutCookie(t *testing.T) {
	f := NewFlasher("", false, zap.NewNop())
	rec := httptest.NewRecorder()
	_, ok := f.Pop(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, ok)
	require.Empty(t, rec.Result().Cookies())
}

func TestLoggerEmitsRequestEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var ctxLogger *zap.Logger
	h := chiMid.RequestID(Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = observability.FromContext(r.Context())
		_, ok := RequestID(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusTeapot)
	})))
	req := httptest.NewRequest(http.MethodGet, "/swipe?dx=-60", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, ctxLogger)
	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "request", entries[0].Message)
	require.EqualValues(t, http.StatusTeapot, fields["status"])
	require.Equal(t, "/swipe", fields["path"])
	require.Equal(t, "dx=-60", fields["query"])
	require.NotEmpty(t, fields["request_id"])
}

func TestClientHintsHeaders(t *testing.T) {
	h := ClientHints("Sec-CH-Viewport-Width")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "Sec-CH-Viewport-Width", rec.Header().Get("Accept-CH"))
	require.Equal(t, []string{"Sec-CH-Viewport-Width", "User-Agent"}, rec.Header().Values("Vary"))
}

func TestAssetsWithCacheETag(t *testing.T) {
	fsys := fstest.MapFS{"css/reader.css": {Data: []byte("body{}")}}
	h := AssetsWithCache(fsys, "public, max-age=3600")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/css/reader.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "body{}", rec.Body.String())
	et := rec.Header().Get("ETag")
	require.NotEmpty(t, et)
	require.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	req := httptest.NewRequest(http.MethodGet, "/css/reader.css", nil)
	req.Header.Set("If-None-Match", et)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "invalid payload")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"invalid payload"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/results", nil)
	req.Header.Set("Content-Type", "application/json")
	require.True(t, WantsJSON(req))
	require.False(t, WantsJSON(httptest.NewRequest(http.MethodPost, "/results", nil)))
}
