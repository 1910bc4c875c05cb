package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrymomot/formkit/pkg/logger"
)

// DefaultLanguage is used when no language is requested or detected.
const DefaultLanguage = "en"

// Translator resolves localised strings from a Catalog.
//
// Keys use dot notation to reach nested entries ("validation.short").
// Placeholders take the form %{name} and are filled from key/value argument
// pairs. Lookups fall back from "de-AT" to "de" and then to the default
// language before giving up.
type Translator struct {
	catalog       Catalog
	defaultLang   string
	fallbackToKey bool
	logMissing    bool
	logger        *slog.Logger
	mu            sync.RWMutex
}

// Option configures a Translator.
type Option func(*Translator)

// WithDefaultLanguage sets the language used as the last lookup fallback.
func WithDefaultLanguage(lang string) Option {
	return func(t *Translator) {
		if lang != "" {
			t.defaultLang = lang
		}
	}
}

// WithFallbackToKey controls whether T returns the key when nothing is
// found. Enabled by default.
func WithFallbackToKey(fallback bool) Option {
	return func(t *Translator) { t.fallbackToKey = fallback }
}

// WithLogger sets the logger. A discard logger is used by default.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithMissingTranslationsLogging logs every lookup miss at warn level.
func WithMissingTranslationsLogging(enabled bool) Option {
	return func(t *Translator) { t.logMissing = enabled }
}

// NewTranslator loads the catalogue from adapter.
func NewTranslator(ctx context.Context, adapter Adapter, opts ...Option) (*Translator, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}

	t := &Translator{
		defaultLang:   DefaultLanguage,
		fallbackToKey: true,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}

	catalog, err := adapter.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := t.Replace(catalog); err != nil {
		return nil, err
	}

	t.logger.InfoContext(ctx, "translations loaded",
		logger.Component("i18n"),
		slog.Any("languages", t.SupportedLanguages()))
	return t, nil
}

// Replace swaps the catalogue, for example after a reload.
func (t *Translator) Replace(catalog Catalog) error {
	for lang, entries := range catalog {
		if lang == "" {
			return ErrEmptyLanguage
		}
		if entries == nil {
			return fmt.Errorf("%w: nil entries for %q", ErrInvalidStructure, lang)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.catalog = catalog
	return nil
}

// DefaultLanguage returns the configured fallback language.
func (t *Translator) DefaultLanguage() string {
	return t.defaultLang
}

// SupportedLanguages lists the catalogue languages in sorted order.
func (t *Translator) SupportedLanguages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.catalog))
}

// HasTranslation reports whether key resolves to a string for lang or one of
// its fallbacks.
func (t *Translator) HasTranslation(lang, key string) bool {
	_, ok := t.lookup(lang, key)
	return ok
}

// T translates key for lang.
//
//	t.T("de", "validation.short", "chars", "3") // "Mindestens 3 Zeichen"
func (t *Translator) T(lang, key string, args ...string) string {
	if s, ok := t.lookup(lang, key); ok {
		return interpolate(s, args)
	}
	return t.missing(lang, key, args)
}

// N translates a plural key. It tries key.zero (n == 0), key.one (n == 1)
// and key.other in that order, then key itself. The count is available to
// the template as %{count} unless args already set it.
func (t *Translator) N(lang, key string, n int, args ...string) string {
	if !slices.Contains(everyOther(args), "count") {
		args = append(slices.Clip(args), "count", strconv.Itoa(n))
	}

	var forms []string
	switch n {
	case 0:
		forms = []string{key + ".zero", key + ".other"}
	case 1:
		forms = []string{key + ".one"}
	default:
		forms = []string{key + ".other"}
	}
	forms = append(forms, key)

	for _, k := range forms {
		if s, ok := t.lookup(lang, k); ok {
			return interpolate(s, args)
		}
	}
	return t.missing(lang, key, args)
}

// Tc is T with the language taken from ctx.
func (t *Translator) Tc(ctx context.Context, key string, args ...string) string {
	return t.T(Locale(ctx), key, args...)
}

// Nc is N with the language taken from ctx.
func (t *Translator) Nc(ctx context.Context, key string, n int, args ...string) string {
	return t.N(Locale(ctx), key, n, args...)
}

func (t *Translator) missing(lang, key string, args []string) string {
	if t.logMissing {
		t.logger.Warn("translation not found", slog.String("lang", lang), slog.String("key", key))
	}
	if t.fallbackToKey {
		return interpolate(key, args)
	}
	return ""
}

func (t *Translator) lookup(lang, key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, l := range t.candidates(lang) {
		entries, ok := t.catalog[l]
		if !ok {
			continue
		}
		if s, ok := resolve(entries, key); ok {
			return s, true
		}
	}
	return "", false
}

func (t *Translator) candidates(lang string) []string {
	out := make([]string, 0, 3)
	if lang != "" {
		out = append(out, lang)
		if base, _, found := strings.Cut(lang, "-"); found {
			out = append(out, base)
		}
	}
	if !slices.Contains(out, t.defaultLang) {
		out = append(out, t.defaultLang)
	}
	return out
}

// resolve walks dot-separated keys through nested maps. A flat key that
// contains dots is tried first.
func resolve(entries map[string]any, key string) (string, bool) {
	if v, ok := entries[key]; ok {
		return stringValue(v)
	}

	head, rest, found := strings.Cut(key, ".")
	if !found {
		return "", false
	}
	nested, ok := entries[head].(map[string]any)
	if !ok {
		return "", false
	}
	return resolve(nested, rest)
}

func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}

var placeholder = regexp.MustCompile(`%\{([^}]+)\}`)

// interpolate replaces %{name} placeholders from key/value pairs. Unknown
// placeholders are kept, and an odd trailing argument is ignored.
func interpolate(tmpl string, args []string) string {
	if len(args) < 2 || !strings.Contains(tmpl, "%{") {
		return tmpl
	}

	params := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		params[args[i]] = args[i+1]
	}

	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		if v, ok := params[match[2:len(match)-1]]; ok {
			return v
		}
		return match
	})
}

func everyOther(args []string) []string {
	keys := make([]string, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		keys = append(keys, args[i])
	}
	return keys
}
