package i18n_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/pkg/i18n"
	"github.com/dmitrymomot/formkit/pkg/validation"
)

func newTranslator(t *testing.T, opts ...i18n.Option) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(context.Background(), i18n.MapAdapter{
		"en": {
			"greeting": "Hello, %{name}!",
			"validation": map[string]any{
				"short": "Entry must be at least %{chars} characters long",
			},
			"errors": map[string]any{
				"zero":  "No errors",
				"one":   "%{count} error",
				"other": "%{count} errors",
			},
			"flat.key": "flat",
		},
		"de": {
			"greeting": "Hallo, %{name}!",
			"validation": map[string]any{
				"short": "Mindestens %{chars} Zeichen",
			},
		},
	}, opts...)
	require.NoError(t, err)
	return tr
}

func TestTranslator(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t)

	t.Run("simple and nested keys", func(t *testing.T) {
		assert.Equal(t, "Hallo, Jane!", tr.T("de", "greeting", "name", "Jane"))
		assert.Equal(t, "Mindestens 3 Zeichen", tr.T("de", "validation.short", "chars", "3"))
		assert.Equal(t, "flat", tr.T("en", "flat.key"))
	})

	t.Run("regional and default fallbacks", func(t *testing.T) {
		assert.Equal(t, "Hallo, Max!", tr.T("de-AT", "greeting", "name", "Max"))
		assert.Equal(t, "No errors", tr.N("de", "errors", 0))
		assert.Equal(t, "Hello, Ana!", tr.T("fr", "greeting", "name", "Ana"))
	})

	t.Run("missing key falls back to key", func(t *testing.T) {
		assert.Equal(t, "unknown.key", tr.T("en", "unknown.key"))
		assert.False(t, tr.HasTranslation("en", "unknown.key"))
		assert.False(t, tr.HasTranslation("en", "validation"))
		assert.True(t, tr.HasTranslation("de", "validation.short"))
	})

	t.Run("unknown placeholders are kept", func(t *testing.T) {
		assert.Equal(t, "Hello, %{name}!", tr.T("en", "greeting"))
		assert.Equal(t, "Hello, %{name}!", tr.T("en", "greeting", "other", "x", "dangling"))
	})

	t.Run("plurals", func(t *testing.T) {
		assert.Equal(t, "No errors", tr.N("en", "errors", 0))
		assert.Equal(t, "1 error", tr.N("en", "errors", 1))
		assert.Equal(t, "4 errors", tr.N("en", "errors", 4))
		assert.Equal(t, "seven errors", tr.N("en", "errors", 7, "count", "seven"))
	})

	t.Run("context locale", func(t *testing.T) {
		ctx := i18n.WithLocale(context.Background(), "de")
		assert.Equal(t, "Hallo, Lea!", tr.Tc(ctx, "greeting", "name", "Lea"))
		assert.Equal(t, "Hello, Lea!", tr.Tc(context.Background(), "greeting", "name", "Lea"))
	})

	t.Run("supported languages", func(t *testing.T) {
		assert.Equal(t, []string{"de", "en"}, tr.SupportedLanguages())
	})
}

func TestTranslatorWithoutKeyFallback(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t, i18n.WithFallbackToKey(false), i18n.WithDefaultLanguage("de"))
	assert.Equal(t, "", tr.T("en", "unknown"))
	assert.Equal(t, "de", tr.DefaultLanguage())
}

func TestNewTranslatorErrors(t *testing.T) {
	t.Parallel()

	_, err := i18n.NewTranslator(context.Background(), nil)
	assert.ErrorIs(t, err, i18n.ErrNilAdapter)

	_, err = i18n.NewTranslator(context.Background(), i18n.MapAdapter{"": {"a": "b"}})
	assert.ErrorIs(t, err, i18n.ErrEmptyLanguage)
}

func TestTranslatorAsValidationFormatter(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t)

	v := validation.Bind(
		validation.AtLeast(validation.AtLeastParams{Chars: 3}),
		validation.WithFormatter(validation.TranslatorFormatter(tr, "de", "validation")),
	)
	res, err := v(context.Background(), "ab", nil)
	require.NoError(t, err)
	assert.Equal(t, "Mindestens 3 Zeichen", res.Error)
}
