package validation_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/pkg/validation"
)

type fakeTranslator map[string]map[string]string

func (f fakeTranslator) HasTranslation(lang, key string) bool {
	_, ok := f[lang][key]
	return ok
}

func (f fakeTranslator) T(lang, key string, args ...string) string {
	s, ok := f[lang][key]
	if !ok {
		return key
	}
	for i := 0; i+1 < len(args); i += 2 {
		s = strings.ReplaceAll(s, "%{"+args[i]+"}", args[i+1])
	}
	return s
}

func TestTranslatorFormatter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tr := fakeTranslator{
		"de": {
			"validation.short":      "Mindestens %{chars} Zeichen",
			"validation.nonNumeric": "Nur Ziffern",
			"required":              "Pflichtfeld",
		},
	}

	t.Run("translates by slot", func(t *testing.T) {
		v := validation.Bind(codeRule(), validation.WithFormatter(validation.TranslatorFormatter(tr, "de", "validation")))
		res, err := v(ctx, "ab", nil)
		require.NoError(t, err)
		assert.Equal(t, "Mindestens 3 Zeichen and Nur Ziffern", res.Error)
	})

	t.Run("translates a message used as a key", func(t *testing.T) {
		c := validation.Required(validation.Messages{validation.MessageUndef: validation.Text("required")})
		v := validation.Bind(c, validation.WithFormatter(validation.TranslatorFormatter(tr, "de", "validation")))
		res, err := v(ctx, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "Pflichtfeld", res.Error)
	})

	t.Run("falls back to the message", func(t *testing.T) {
		v := validation.Bind(validation.AtMost(validation.AtMostParams{Chars: 1}),
			validation.WithFormatter(validation.TranslatorFormatter(tr, "fr", "validation")))
		res, err := v(ctx, "abc", nil)
		require.NoError(t, err)
		assert.Equal(t, "Entry must be no more than 1 characters long", res.Error)
	})

	t.Run("nil translator", func(t *testing.T) {
		f := validation.TranslatorFormatter(nil, "de", "validation")
		assert.Equal(t, "msg", f("msg", validation.Params{}))
	})
}
