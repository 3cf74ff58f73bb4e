package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const flashCookieName = "reader_flash"

// flashMaxAge bounds how long an unread notice survives.
const flashMaxAge = 5 * time.Minute

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"msg"`
}

const (
	FlashInfo    = "info"
	FlashWarning = "warning"
)

// Flasher signs notices into a short-lived cookie.
type Flasher struct {
	key    []byte
	secure bool
}

// NewFlasher returns a Flasher signing with key. An empty key selects a
// process-ephemeral one.
func NewFlasher(key string, secure bool, logger *zap.Logger) *Flasher {
	f := &Flasher{key: []byte(key), secure: secure}
	if key == "" {
		f.key = make([]byte, 32)
		if _, err := rand.Read(f.key); err != nil {
			f.key = []byte("insecure-dev-key-please-set-READER_FLASH_KEY")
		}
		if logger != nil {
			logger.Warn("flash: using ephemeral signing key; set READER_FLASH_KEY for multi-instance deployments")
		}
	}
	return f
}

// Set queues a notice for the next page.
func (f *Flasher) Set(w http.ResponseWriter, fl Flash) {
	b, _ := json.Marshal(fl)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    f.sign(b),
		Path:     "/",
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(flashMaxAge / time.Second),
	})
}

// Pop reads and clears the pending notice. Tampered cookies are dropped.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return Flash{}, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	payload, ok := f.verify(c.Value)
	if !ok {
		return Flash{}, false
	}
	var fl Flash
	if err := json.Unmarshal(payload, &fl); err != nil || fl.Message == "" {
		return Flash{}, false
	}
	return fl, true
}

// Middleware consumes any pending notice before the handler runs and
// stores it for FlashFromContext.
func (f *Flasher) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fl, ok := f.Pop(w, r); ok {
			r = r.WithContext(WithFlash(r.Context(), fl))
		}
		next.ServeHTTP(w, r)
	})
}

func (f *Flasher) sign(payload []byte) string {
	mac := hmac.New(sha256.New, f.key)
	mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (f *Flasher) verify(value string) ([]byte, bool) {
	parts := strings.Split(value, ".")
	if len(parts) != 2 {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, false
	}
	mac := hmac.New(sha256.New, f.key)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, false
	}
	return payload, true
}
