// Package theme loads colour schemes and derives readable text colours.
package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cache"
)

const (
	// DefaultBaseURL hosts the named scheme documents.
	DefaultBaseURL = "https://admin.ki-leierbud.lu/my-json"

	Black = "#000000"
	White = "#ffffff"

	defaultCacheTTL   = 5 * time.Minute
	defaultRetryDelay = time.Second
	maxSchemeBytes    = 64 << 10
)

var (
	// ErrInvalidScheme reports a scheme document with a missing or malformed colour.
	ErrInvalidScheme = errors.New("theme: invalid colour scheme")
	// ErrUnavailable reports that the scheme document could not be fetched.
	ErrUnavailable = errors.New("theme: colour scheme unavailable")

	hexPattern = regexp.MustCompile(`^#?(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// Scheme holds the background colours of the three page regions.
type Scheme struct {
	Header string `json:"header"`
	Main   string `json:"main"`
	Footer string `json:"footer"`
}

// TextColors are the contrasting foreground colours for a Scheme.
type TextColors struct {
	Header string
	Main   string
	Footer string
}

// Palette pairs a Scheme with its derived text colours.
type Palette struct {
	Key    string
	Scheme Scheme
	Text   TextColors
}

// Default is used whenever no valid scheme is available.
var Default = Scheme{Header: "#ffffff", Main: "#f9fafb", Footer: "#ffffff"}

// Validate checks that all three colours are present and hex encoded, and
// returns the scheme with colours in #rrggbb form.
func (s Scheme) Validate() (Scheme, error) {
	var missing []string
	out := Scheme{}
	for _, f := range []struct {
		name string
		in   string
		out  *string
	}{
		{"header", s.Header, &out.Header},
		{"main", s.Main, &out.Main},
		{"footer", s.Footer, &out.Footer},
	} {
		c, ok := canonicalHex(f.in)
		if !ok {
			missing = append(missing, f.name)
			continue
		}
		*f.out = c
	}
	if len(missing) > 0 {
		return Scheme{}, fmt.Errorf("%w: %s", ErrInvalidScheme, strings.Join(missing, ", "))
	}
	return out, nil
}

// TextColors derives the text colour for each region.
func (s Scheme) TextColors() TextColors {
	return TextColors{
		Header: ContrastColor(s.Header),
		Main:   ContrastColor(s.Main),
		Footer: ContrastColor(s.Footer),
	}
}

// Palette returns s with its text colours.
func (s Scheme) Palette(key string) Palette {
	return Palette{Key: key, Scheme: s, Text: s.TextColors()}
}

// ContrastColor returns black for light backgrounds and white otherwise.
// Malformed colours are treated as black backgrounds.
func ContrastColor(hex string) string {
	return textColorForLuminance(Luminance(hex))
}

// Luminance computes (0.299r + 0.587g + 0.114b) / 255.
func Luminance(hex string) float64 {
	c, ok := canonicalHex(hex)
	if !ok {
		return 0
	}
	r, _ := strconv.ParseUint(c[1:3], 16, 8)
	g, _ := strconv.ParseUint(c[3:5], 16, 8)
	b, _ := strconv.ParseUint(c[5:7], 16, 8)
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
}

// textColorForLuminance picks black strictly above 0.5; the tie goes to white.
func textColorForLuminance(l float64) string {
	if l > 0.5 {
		return Black
	}
	return White
}

func canonicalHex(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if !hexPattern.MatchString(v) {
		return "", false
	}
	v = strings.ToLower(strings.TrimPrefix(v, "#"))
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	return "#" + v, true
}

// ValidKey reports whether key may name a scheme document.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Client fetches scheme documents from {base}/{key}.json.
type Client struct {
	baseURL    string
	http       *http.Client
	cache      cache.Store
	cacheTTL   time.Duration
	retryDelay time.Duration
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCache caches validated schemes.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(c *Client) {
		if store != nil {
			c.cache = store
		}
		c.cacheTTL = ttl
	}
}

// WithRetryDelay sets the pause before the single retry.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.retryDelay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a scheme client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{},
		cache:      cache.Nop{},
		cacheTTL:   defaultCacheTTL,
		retryDelay: defaultRetryDelay,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch loads and validates the scheme named key.
func (c *Client) Fetch(ctx context.Context, key string) (Scheme, error) {
	if !ValidKey(key) {
		return Scheme{}, fmt.Errorf("%w: bad key %q", ErrInvalidScheme, key)
	}
	cacheKey := cache.Key("theme", key)
	if body, ok := c.cache.Get(ctx, cacheKey); ok {
		var s Scheme
		if err := json.Unmarshal(body, &s); err == nil {
			return s, nil
		}
	}

	s, err := c.fetchOnce(ctx, key)
	if errors.Is(err, ErrUnavailable) && ctx.Err() == nil {
		c.logger.Debug("theme: retrying scheme fetch", zap.String("key", key), zap.Error(err))
		if waitErr := sleepContext(ctx, c.retryDelay); waitErr != nil {
			return Scheme{}, fmt.Errorf("%w: %v", ErrUnavailable, waitErr)
		}
		s, err = c.fetchOnce(ctx, key)
	}
	if err != nil {
		return Scheme{}, err
	}
	if body, err := json.Marshal(s); err == nil {
		c.cache.Set(ctx, cacheKey, body, c.cacheTTL)
	}
	return s, nil
}

// Resolve returns the palette for key, or the default palette and the
// failure when key is set but unusable. An empty key is not an error.
func (c *Client) Resolve(ctx context.Context, key string) (Palette, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Default.Palette(""), nil
	}
	s, err := c.Fetch(ctx, key)
	if err != nil {
		c.logger.Warn("theme: using default colour scheme", zap.String("key", key), zap.Error(err))
		return Default.Palette(""), err
	}
	return s.Palette(key), nil
}

func (c *Client) fetchOnce(ctx context.Context, key string) (Scheme, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(key) + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Scheme{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return Scheme{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Scheme{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSchemeBytes))
	if err != nil {
		return Scheme{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var raw Scheme
	if err := json.Unmarshal(body, &raw); err != nil {
		return Scheme{}, fmt.Errorf("%w: decode: %v", ErrInvalidScheme, err)
	}
	return raw.Validate()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
