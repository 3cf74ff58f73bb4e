// Package status reports the reachability of the services the reader depends on.
package status

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StateOperational = "operational"
	StateDegraded    = "degraded"

	ComponentUp   = "up"
	ComponentDown = "down"

	defaultCacheTTL     = 30 * time.Second
	defaultProbeTimeout = 3 * time.Second
)

// Summary captures the state of every registered component.
type Summary struct {
	State      string      `json:"state"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Components []Component `json:"components"`
}

// Component is the probe outcome of one dependency.
type Component struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Probe checks one dependency and returns nil when it is reachable.
type Probe func(ctx context.Context) error

type namedProbe struct {
	name  string
	probe Probe
}

// Checker runs probes concurrently and caches the summary for a short while
// so that frequent polling does not load the backends.
type Checker struct {
	probes  []namedProbe
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	cached  Summary
	expires time.Time
}

// Option customises a Checker.
type Option func(*Checker)

// WithCacheTTL sets how long a summary is reused. Zero disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Checker) {
		if d >= 0 {
			c.ttl = d
		}
	}
}

// WithProbeTimeout bounds each probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// NewChecker builds a Checker with no probes.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{ttl: defaultCacheTTL, timeout: defaultProbeTimeout, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds a probe. Components are reported in registration order.
func (c *Checker) Register(name string, p Probe) {
	if p == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes = append(c.probes, namedProbe{name: strings.TrimSpace(name), probe: p})
	c.expires = time.Time{}
}

// Summary returns the cached summary or runs every probe.
func (c *Checker) Summary(ctx context.Context) Summary {
	c.mu.Lock()
	if c.now().Before(c.expires) {
		s := c.cached.clone()
		c.mu.Unlock()
		return s
	}
	probes := append([]namedProbe(nil), c.probes...)
	c.mu.Unlock()

	components := make([]Component, len(probes))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range probes {
		i, p := i, p
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, c.timeout)
			defer cancel()
			components[i] = Component{Name: p.name, Status: ComponentUp}
			if err := p.probe(pctx); err != nil {
				components[i].Status = ComponentDown
				components[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	s := Summary{State: StateOperational, UpdatedAt: c.now().UTC(), Components: components}
	for _, comp := range components {
		if comp.Status != ComponentUp {
			s.State = StateDegraded
			break
		}
	}

	c.mu.Lock()
	c.cached = s
	c.expires = c.now().Add(c.ttl)
	c.mu.Unlock()
	return s.clone()
}

func (s Summary) clone() Summary {
	cp := s
	cp.Components = append([]Component(nil), s.Components...)
	return cp
}

// HTTPProbe issues a GET to url. Any response below 500 counts as reachable.
func HTTPProbe(client *http.Client, url string) Probe {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("status: remote status %d", resp.StatusCode)
		}
		return nil
	}
}
