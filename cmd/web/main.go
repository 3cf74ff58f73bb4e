package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cache"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cms"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/config"
	handlersPkg "github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/handlers"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/i18n"
	mw "github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/middleware"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/nav"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/observability"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/status"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/theme"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "web: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newCacheStore(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	a, err := newApp(cfg, logger, store)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", cfg.Server.Addr),
			zap.Bool("dev", cfg.Server.Dev),
			zap.String("cms", cfg.CMS.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newApp wires the clients and renderer shared by all handlers.
func newApp(cfg config.Config, logger *zap.Logger, store cache.Store) (*app, error) {
	httpClient := &http.Client{Timeout: cfg.CMS.HTTPTimeout}

	cmsClient := cms.NewClient(cfg.CMS.BaseURL,
		cms.WithHTTPClient(httpClient),
		cms.WithCache(store, cfg.Cache.TTL),
		cms.WithRetryDelay(cfg.CMS.RetryDelay),
		cms.WithLogger(logger.Named("cms")),
	)
	themeClient := theme.NewClient(cfg.Theme.BaseURL,
		theme.WithHTTPClient(httpClient),
		theme.WithCache(store, themeCacheTTL),
		theme.WithRetryDelay(cfg.CMS.RetryDelay),
		theme.WithLogger(logger.Named("theme")),
	)

	bundle, err := i18n.LoadEmbedded(cfg.Reader.DefaultLang, cfg.Reader.SupportedLangs)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}
	if err := cms.FallbackLoadError(); err != nil {
		return nil, fmt.Errorf("load fallback articles: %w", err)
	}

	checker := status.NewChecker()
	checker.Register("cms", status.HTTPProbe(httpClient, cmsClient.BaseURL()+"/posts?per_page=1&_fields=id"))
	if p, ok := store.(pinger); ok {
		checker.Register("cache", p.Ping)
	}

	rd, err := newRenderer(templateSource(cfg.Server), cfg.Server.Dev, bundle)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		cms:       cmsClient,
		themes:    themeClient,
		nav:       nav.NewResolver(cmsClient, logger.Named("nav")),
		bundle:    bundle,
		flash:     mw.NewFlasher(cfg.Flash.SigningKey, cfg.Flash.Secure, logger),
		render:    rd,
		analytics: handlersPkg.AnalyticsFrom(cfg.Analytics),
		assets:    publicAssets(),
		status:    checker,
	}, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// newCacheStore selects Redis when an address is configured and the
// in-memory store otherwise.
func newCacheStore(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (cache.Store, func(), error) {
	if cfg.TTL == 0 {
		return cache.Nop{}, func() {}, nil
	}
	if cfg.RedisAddr == "" {
		return cache.NewMemory(), func() {}, nil
	}
	store, client, err := cache.DialRedis(ctx, cfg.RedisAddr, cfg.RedisDB, logger.Named("cache"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return store, func() { _ = client.Close() }, nil
}
