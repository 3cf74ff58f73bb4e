package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embedded embed.FS

// Locales returns the built-in locale files rooted at "locales".
func Locales() fs.FS {
	return embedded
}

type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported map[string]struct{}
}

// Load reads {dir}/{lang}.json from fsys for every supported language.
// Only the fallback locale is required to exist.
func Load(fsys fs.FS, dir string, fallback string, supported []string) (*Bundle, error) {
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		supported: map[string]struct{}{},
	}
	if len(supported) == 0 {
		supported = []string{fallback}
	}
	for _, l := range supported {
		b.supported[l] = struct{}{}
		raw, err := fs.ReadFile(fsys, path.Join(dir, l+".json"))
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	if _, ok := b.dict[b.fallback]; !ok {
		if err := b.loadFallback(fsys, dir); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Bundle) loadFallback(fsys fs.FS, dir string) error {
	raw, err := fs.ReadFile(fsys, path.Join(dir, b.fallback+".json"))
	if err != nil {
		return fmt.Errorf("fallback locale %s not loaded: %w", b.fallback, err)
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("unmarshal %s: %w", b.fallback, err)
	}
	b.dict[b.fallback] = m
	return nil
}

// LoadEmbedded loads the built-in locales.
func LoadEmbedded(fallback string, supported []string) (*Bundle, error) {
	return Load(embedded, "locales", fallback, supported)
}

func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for k := range b.supported {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang has a locale entry.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.supported[lang]
	return ok
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Tf formats the translation of key with args.
func (b *Bundle) Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(b.T(lang, key), args...)
}

// Resolve chooses the supported language with the highest q-value in an
// Accept-Language header. Regions are ignored and q=0 entries are skipped.
func (b *Bundle) Resolve(acceptLang string) string {
	tags, weights, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil {
		return b.fallback
	}
	for i, tag := range tags {
		if weights[i] <= 0 {
			continue
		}
		base, conf := tag.Base()
		if conf == language.No {
			continue
		}
		if code := base.String(); b.IsSupported(code) {
			return code
		}
	}
	return b.fallback
}
