package validation_test

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/pkg/validation"
)

func run(t *testing.T, c validation.Constructor, value any) validation.Result {
	t.Helper()
	res, err := validation.Bind(c)(context.Background(), value, nil)
	require.NoError(t, err)
	return res
}

func TestAtLeast(t *testing.T) {
	t.Parallel()

	t.Run("passes when value is long enough", func(t *testing.T) {
		res := run(t, validation.AtLeast(validation.AtLeastParams{Chars: 3}), "longenough")
		assert.True(t, res.Valid)
		assert.Empty(t, res.Error)
	})

	t.Run("fails with short message", func(t *testing.T) {
		res := run(t, validation.AtLeast(validation.AtLeastParams{Chars: 3}), "s")
		assert.False(t, res.Valid)
		assert.Equal(t, "Entry must be at least 3 characters long", res.Error)
	})

	t.Run("fails with undef message for absent value", func(t *testing.T) {
		res := run(t, validation.AtLeast(validation.AtLeastParams{Chars: 3}), nil)
		assert.False(t, res.Valid)
		assert.Equal(t, "Please enter a value", res.Error)
	})

	t.Run("coerces numbers to their string length", func(t *testing.T) {
		assert.True(t, run(t, validation.AtLeast(validation.AtLeastParams{Chars: 3}), 55555).Valid)

		res := run(t, validation.AtLeast(validation.AtLeastParams{Chars: 3}), 3)
		assert.False(t, res.Valid)
		assert.Equal(t, "Entry must be at least 3 characters long", res.Error)
	})

	t.Run("measures runes not bytes", func(t *testing.T) {
		assert.False(t, run(t, validation.AtLeast(validation.AtLeastParams{Chars: 3}), "éé").Valid)
	})

	t.Run("uses custom messages", func(t *testing.T) {
		c := validation.AtLeast(validation.AtLeastParams{Chars: 3}, validation.Messages{
			validation.MessageShort: validation.Text("at least 3 characters long"),
			validation.MessageUndef: validation.Text("provided"),
		})
		assert.Equal(t, "at least 3 characters long", run(t, c, "ab").Error)
		assert.Equal(t, "provided", run(t, c, "").Error)
	})

	t.Run("valid iff non-empty and long enough", func(t *testing.T) {
		values := []string{"", "a", "ab", "abc", "abcd", "abcdefgh"}
		for chars := 0; chars <= 6; chars++ {
			c := validation.AtLeast(validation.AtLeastParams{Chars: chars})
			for _, v := range values {
				expected := v != "" && len(v) >= chars
				assert.Equal(t, expected, run(t, c, v).Valid, "chars=%d value=%q", chars, v)
			}
		}
	})
}

func TestAtMost(t *testing.T) {
	t.Parallel()

	t.Run("passes for empty value", func(t *testing.T) {
		assert.True(t, run(t, validation.AtMost(validation.AtMostParams{Chars: 2}), "").Valid)
		assert.True(t, run(t, validation.AtMost(validation.AtMostParams{Chars: 2}), nil).Valid)
	})

	t.Run("fails with long message", func(t *testing.T) {
		res := run(t, validation.AtMost(validation.AtMostParams{Chars: 7}), "12345678")
		assert.False(t, res.Valid)
		assert.Equal(t, "Entry must be no more than 7 characters long", res.Error)
	})

	t.Run("computed message receives params", func(t *testing.T) {
		c := validation.AtMost(validation.AtMostParams{Chars: 7}, validation.Messages{
			validation.MessageLong: func(p validation.Params) string {
				return "at most " + validation.Stringify(p["chars"]) + " characters long, got " + validation.Stringify(p[validation.ParamValue])
			},
		})
		assert.Equal(t, "at most 7 characters long, got 123456789", run(t, c, "123456789").Error)
	})

	t.Run("valid iff empty or short enough", func(t *testing.T) {
		values := []string{"", "a", "ab", "abc", "abcdefgh"}
		for chars := 0; chars <= 5; chars++ {
			c := validation.AtMost(validation.AtMostParams{Chars: chars})
			for _, v := range values {
				expected := v == "" || len(v) <= chars
				assert.Equal(t, expected, run(t, c, v).Valid, "chars=%d value=%q", chars, v)
			}
		}
	})
}

func TestNumeric(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value any
		valid bool
	}{
		{"absent", nil, true},
		{"empty string", "", true},
		{"digits", "0123", true},
		{"integer", 42, true},
		{"letters", "12a", false},
		{"negative", "-1", false},
		{"decimal", 1.5, false},
		{"spaces", " 1", false},
	}

	c := validation.Numeric()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := run(t, c, tc.value)
			assert.Equal(t, tc.valid, res.Valid)
			if !tc.valid {
				assert.Equal(t, "Entered value must be a number", res.Error)
			}
		})
	}

	t.Run("custom message", func(t *testing.T) {
		res := run(t, validation.Numeric(validation.Messages{
			validation.MessageNonNumeric: validation.Text("numeric only"),
		}), "abc")
		assert.Equal(t, "numeric only", res.Error)
	})
}

func TestMatches(t *testing.T) {
	t.Parallel()

	c := validation.Matches(validation.MatchesParams{Regex: regexp.MustCompile(`^[a-z]+@[a-z]+\.[a-z]+$`)})

	t.Run("passes for empty value", func(t *testing.T) {
		assert.True(t, run(t, c, "").Valid)
	})

	t.Run("passes for matching value", func(t *testing.T) {
		assert.True(t, run(t, c, "jane@example.com").Valid)
	})

	t.Run("fails for other values", func(t *testing.T) {
		res := run(t, c, "not an email")
		assert.False(t, res.Valid)
		assert.Equal(t, "Must match pattern", res.Error)
	})

	t.Run("panics without a regex", func(t *testing.T) {
		assert.PanicsWithValue(t, validation.ErrNilPattern, func() {
			validation.Matches(validation.MatchesParams{})
		})
	})
}

func TestRequired(t *testing.T) {
	t.Parallel()

	c := validation.Required()

	for _, v := range []any{nil, "", []any{}} {
		res := run(t, c, v)
		assert.False(t, res.Valid, "value %#v", v)
		assert.Equal(t, "Required", res.Error)
	}

	for _, v := range []any{"x", " ", 0, false, []any{"a"}} {
		assert.True(t, run(t, c, v).Valid, "value %#v", v)
	}

	t.Run("custom message", func(t *testing.T) {
		res := run(t, validation.Required(validation.Messages{
			validation.MessageUndef: func(p validation.Params) string {
				return strings.ToUpper(p[validation.ParamMessage].(string))
			},
		}), "")
		assert.Equal(t, "UNDEF", res.Error)
	})
}
