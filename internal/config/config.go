package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix             = "READER"
	defaultEnvFile        = ".env"
	defaultAddr           = ":8080"
	defaultCMSBaseURL     = "https://admin.ki-leierbud.lu/wp-json/wp/v2"
	defaultThemeBaseURL   = "https://admin.ki-leierbud.lu/my-json"
	defaultTOCURL         = "https://ki-leierbud.lu/toc.html"
	defaultResultsTOCURL  = "https://ki-leierbud.lu/?p=244"
	defaultArticleID      = 12
	defaultResultsArticle = 333
	defaultLang           = "en"
	defaultCacheTTL       = 30 * time.Second
	defaultRetryDelay     = time.Second
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultRequestTimeout = 30 * time.Second
)

var defaultSupportedLangs = []string{"en", "fr", "de", "lb", "pt"}

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	CMS       CMSConfig
	Theme     ThemeConfig
	Reader    ReaderConfig
	Cache     CacheConfig
	Flash     FlashConfig
	Analytics AnalyticsConfig
	LogLevel  string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr           string
	Dev            bool
	TemplatesDir   string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// CMSConfig points at the WordPress REST API.
type CMSConfig struct {
	BaseURL     string
	HTTPTimeout time.Duration
	RetryDelay  time.Duration
}

// ThemeConfig points at the directory of colour scheme documents.
type ThemeConfig struct {
	BaseURL string
}

// ReaderConfig holds URL-state defaults and external links.
type ReaderConfig struct {
	DefaultArticleID int
	ResultsArticleID int
	DefaultLang      string
	SupportedLangs   []string
	TOCURL           string
	ResultsTOCURL    string
}

// CacheConfig controls response caching. An empty RedisAddr selects the in-memory store.
type CacheConfig struct {
	TTL       time.Duration
	RedisAddr string
	RedisDB   int
}

// FlashConfig controls the signed notice cookie.
type FlashConfig struct {
	SigningKey string
	Secure     bool
}

// AnalyticsConfig holds client instrumentation identifiers surfaced to templates.
type AnalyticsConfig struct {
	GA4MeasurementID string
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit key/value pairs. They take precedence over the system environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles configuration from defaults, an optional .env file, the
// environment and explicit overrides, in increasing order of precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	if options.useSystemEnv {
		v.AutomaticEnv()
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}
	for key, value := range dotEnv {
		if options.useSystemEnv {
			if _, ok := os.LookupEnv(key); ok {
				continue
			}
		}
		setFromEnvKey(v, key, value)
	}
	for key, value := range options.envMap {
		setFromEnvKey(v, key, value)
	}

	addr := v.GetString("addr")
	if addr == "" {
		addr = defaultAddr
		if port := lookupPort(options); port != "" {
			addr = ":" + port
		}
	}

	cfg := Config{
		Server: ServerConfig{
			Addr:           addr,
			Dev:            v.GetBool("dev"),
			TemplatesDir:   v.GetString("templates_dir"),
			ReadTimeout:    v.GetDuration("read_timeout"),
			WriteTimeout:   v.GetDuration("write_timeout"),
			IdleTimeout:    v.GetDuration("idle_timeout"),
			RequestTimeout: v.GetDuration("request_timeout"),
		},
		CMS: CMSConfig{
			BaseURL:     strings.TrimRight(strings.TrimSpace(v.GetString("cms_base_url")), "/"),
			HTTPTimeout: v.GetDuration("http_timeout"),
			RetryDelay:  v.GetDuration("retry_delay"),
		},
		Theme: ThemeConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("theme_base_url")), "/"),
		},
		Reader: ReaderConfig{
			DefaultArticleID: v.GetInt("default_article"),
			ResultsArticleID: v.GetInt("results_article"),
			DefaultLang:      strings.ToLower(strings.TrimSpace(v.GetString("default_lang"))),
			SupportedLangs:   splitList(v.GetString("supported_langs")),
			TOCURL:           v.GetString("toc_url"),
			ResultsTOCURL:    v.GetString("results_toc_url"),
		},
		Cache: CacheConfig{
			TTL:       v.GetDuration("cache_ttl"),
			RedisAddr: strings.TrimSpace(v.GetString("redis_addr")),
			RedisDB:   v.GetInt("redis_db"),
		},
		Flash: FlashConfig{
			SigningKey: v.GetString("flash_key"),
			Secure:     v.GetBool("cookie_secure"),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: v.GetString("ga_measurement_id"),
		},
		LogLevel: v.GetString("log_level"),
	}
	if len(cfg.Reader.SupportedLangs) == 0 {
		cfg.Reader.SupportedLangs = append([]string(nil), defaultSupportedLangs...)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c Config) Validate() error {
	var fields []string
	if !isHTTPURL(c.CMS.BaseURL) {
		fields = append(fields, "CMS.BaseURL")
	}
	if c.Theme.BaseURL != "" && !isHTTPURL(c.Theme.BaseURL) {
		fields = append(fields, "Theme.BaseURL")
	}
	if c.Reader.DefaultArticleID <= 0 {
		fields = append(fields, "Reader.DefaultArticleID")
	}
	if c.Reader.ResultsArticleID <= 0 {
		fields = append(fields, "Reader.ResultsArticleID")
	}
	if len(c.Reader.DefaultLang) != 2 {
		fields = append(fields, "Reader.DefaultLang")
	}
	if c.Cache.TTL < 0 {
		fields = append(fields, "Cache.TTL")
	}
	if c.CMS.RetryDelay < 0 {
		fields = append(fields, "CMS.RetryDelay")
	}
	if c.CMS.HTTPTimeout < 0 {
		fields = append(fields, "CMS.HTTPTimeout")
	}
	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "")
	v.SetDefault("dev", false)
	v.SetDefault("templates_dir", "cmd/web/templates")
	v.SetDefault("read_timeout", defaultReadTimeout)
	v.SetDefault("write_timeout", defaultWriteTimeout)
	v.SetDefault("idle_timeout", defaultIdleTimeout)
	v.SetDefault("request_timeout", defaultRequestTimeout)
	v.SetDefault("cms_base_url", defaultCMSBaseURL)
	v.SetDefault("http_timeout", time.Duration(0))
	v.SetDefault("retry_delay", defaultRetryDelay)
	v.SetDefault("theme_base_url", defaultThemeBaseURL)
	v.SetDefault("default_article", defaultArticleID)
	v.SetDefault("results_article", defaultResultsArticle)
	v.SetDefault("default_lang", defaultLang)
	v.SetDefault("supported_langs", strings.Join(defaultSupportedLangs, ","))
	v.SetDefault("toc_url", defaultTOCURL)
	v.SetDefault("results_toc_url", defaultResultsTOCURL)
	v.SetDefault("cache_ttl", defaultCacheTTL)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("flash_key", "")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("ga_measurement_id", "")
	v.SetDefault("log_level", "info")
}

// setFromEnvKey maps READER_FOO_BAR onto the viper key foo_bar. LOG_LEVEL is
// accepted without prefix to match the logging convention.
func setFromEnvKey(v *viper.Viper, envKey, value string) {
	key := strings.TrimSpace(envKey)
	switch {
	case key == "LOG_LEVEL":
		v.Set("log_level", value)
	case strings.HasPrefix(key, envPrefix+"_"):
		v.Set(strings.ToLower(strings.TrimPrefix(key, envPrefix+"_")), value)
	}
}

func lookupPort(options loaderOptions) string {
	if p, ok := options.envMap["PORT"]; ok {
		return strings.TrimSpace(p)
	}
	if options.useSystemEnv {
		return strings.TrimSpace(os.Getenv("PORT"))
	}
	return ""
}

func loadDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func splitList(raw string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		p := strings.ToLower(strings.TrimSpace(part))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
