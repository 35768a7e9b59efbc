package i18n

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	pkgcache "MarketBoard/pkg/cache"
)

//go:embed locales/*.yaml
var localeFS embed.FS

const preferenceKey = "language"

// Service is a flat key→text lookup per language with a persisted user
// preference. Missing keys fall back to the default language, then to the
// key itself so a gap is visible instead of blank.
type Service struct {
	bundles map[string]map[string]string
	def     string
	prefs   pkgcache.Service
}

// New loads the embedded bundles. def is the default language code.
func New(def string, prefs pkgcache.Service) (*Service, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	bundles := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		b, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read bundle %s: %w", e.Name(), err)
		}
		var m map[string]string
		if err := yaml.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("parse bundle %s: %w", e.Name(), err)
		}
		lang := e.Name()[:len(e.Name())-len(".yaml")]
		bundles[lang] = m
	}

	if _, ok := bundles[def]; !ok {
		return nil, fmt.Errorf("default language %q has no bundle", def)
	}
	return &Service{bundles: bundles, def: def, prefs: prefs}, nil
}

// Bundle returns the full key→text map for a language.
func (s *Service) Bundle(lang string) (map[string]string, bool) {
	m, ok := s.bundles[lang]
	return m, ok
}

// Languages lists available language codes in stable order.
func (s *Service) Languages() []string {
	out := make([]string, 0, len(s.bundles))
	for lang := range s.bundles {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// T translates a key with default-language fallback.
func (s *Service) T(lang, key string) string {
	if m, ok := s.bundles[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := s.bundles[s.def][key]; ok {
		return v
	}
	return key
}

// SavePreference persists the user's language choice.
func (s *Service) SavePreference(ctx context.Context, lang string) error {
	if _, ok := s.bundles[lang]; !ok {
		return fmt.Errorf("unknown language %q", lang)
	}
	return s.prefs.Set(ctx, preferenceKey, lang, 365*24*time.Hour)
}

// Preference returns the persisted language, or the default when unset.
func (s *Service) Preference(ctx context.Context) string {
	var lang string
	if err := s.prefs.Get(ctx, preferenceKey, &lang); err != nil {
		return s.def
	}
	if _, ok := s.bundles[lang]; !ok {
		return s.def
	}
	return lang
}
