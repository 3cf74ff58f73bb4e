// Package cms reads articles from the WordPress REST API.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cache"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/nav"
)

const (
	// DefaultBaseURL is the production WordPress REST root.
	DefaultBaseURL = "https://admin.ki-leierbud.lu/wp-json/wp/v2"

	defaultRetryDelay = time.Second
	defaultCacheTTL   = 30 * time.Second
	maxBodyBytes      = 8 << 20
)

// Client provides read-only access to WordPress posts.
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

// WithCache stores successful response bodies in store for ttl.
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

// NewClient constructs a Client with the provided base URL.
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

// BaseURL returns the configured REST root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchArticle loads one post with embedded author and term data.
// Failures are returned as *TransportError.
func (c *Client) FetchArticle(ctx context.Context, id int, lang string) (Article, error) {
	if id <= 0 {
		return Article{}, &TransportError{URL: c.baseURL + "/posts", StatusCode: http.StatusNotFound, Err: fmt.Errorf("invalid article id %d", id)}
	}
	endpoint, err := url.JoinPath(c.baseURL, "posts", strconv.Itoa(id))
	if err != nil {
		return Article{}, &TransportError{URL: c.baseURL, Err: err}
	}
	q := url.Values{}
	if lang = strings.TrimSpace(lang); lang != "" {
		q.Set("lang", lang)
	}
	// WordPress treats a bare _embed flag as "embed everything".
	query := q.Encode()
	if query != "" {
		query += "&"
	}
	endpoint += "?" + query + "_embed"

	var post wpPost
	if err := c.getJSON(ctx, endpoint, &post); err != nil {
		return Article{}, err
	}
	if post.ID == 0 {
		post.ID = id
	}
	return post.toArticle(), nil
}

// ArticleOrFallback returns the fetched article, or the language-specific
// fallback article when the backend cannot be reached.
func (c *Client) ArticleOrFallback(ctx context.Context, id int, lang string) Article {
	article, err := c.FetchArticle(ctx, id, lang)
	if err == nil {
		return article
	}
	if ctx.Err() == nil {
		c.logger.Warn("cms: article fetch failed, serving fallback",
			zap.Int("article_id", id),
			zap.String("lang", lang),
			zap.Error(err),
		)
	}
	return FallbackArticle(id, lang)
}

// FetchCategoryArticles lists up to nav.MaxSiblings posts of a category,
// oldest first, in the order the backend returns them.
func (c *Client) FetchCategoryArticles(ctx context.Context, categoryID int) ([]nav.Sibling, error) {
	endpoint, err := url.JoinPath(c.baseURL, "posts")
	if err != nil {
		return nil, &TransportError{URL: c.baseURL, Err: err}
	}
	q := url.Values{}
	q.Set("categories", strconv.Itoa(categoryID))
	q.Set("per_page", strconv.Itoa(nav.MaxSiblings))
	q.Set("orderby", "date")
	q.Set("order", "asc")
	endpoint += "?" + q.Encode()

	var posts []struct {
		ID    int        `json:"id"`
		Title wpRendered `json:"title"`
	}
	if err := c.getJSON(ctx, endpoint, &posts); err != nil {
		return nil, err
	}
	out := make([]nav.Sibling, 0, len(posts))
	for _, p := range posts {
		if p.ID <= 0 {
			continue
		}
		out = append(out, nav.Sibling{ID: p.ID, Title: p.Title.Rendered})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dst any) error {
	key := cache.Key("cms", endpoint)
	if body, ok := c.cache.Get(ctx, key); ok {
		if err := json.Unmarshal(body, dst); err == nil {
			return nil
		}
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) || !te.retryable() || ctx.Err() != nil {
			return err
		}
		c.logger.Debug("cms: retrying request", zap.String("url", endpoint), zap.Error(err))
		if waitErr := sleepContext(ctx, c.retryDelay); waitErr != nil {
			return &TransportError{URL: endpoint, Err: waitErr}
		}
		body, err = c.get(ctx, endpoint)
		if err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &TransportError{URL: endpoint, Err: fmt.Errorf("decode: %w", err)}
	}
	c.cache.Set(ctx, key, body, c.cacheTTL)
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{URL: endpoint, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
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
