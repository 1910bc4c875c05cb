package validation_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/pkg/validation"
)

// static returns a constructor always yielding res after an optional delay.
func static(res validation.Result, delay time.Duration) validation.Constructor {
	return func(r validation.Reporters, _ validation.Options) validation.Validator {
		return func(ctx context.Context, _ any, _ validation.Fields) (validation.Result, error) {
			if delay > 0 {
				time.Sleep(delay)
			}
			return res, nil
		}
	}
}

func failing(err error) validation.Constructor {
	return func(validation.Reporters, validation.Options) validation.Validator {
		return func(context.Context, any, validation.Fields) (validation.Result, error) {
			return validation.Result{}, err
		}
	}
}

func codeRule() validation.Constructor {
	return validation.All([]validation.Constructor{
		validation.AtLeast(validation.AtLeastParams{Chars: 3}),
		validation.AtMost(validation.AtMostParams{Chars: 7}),
		validation.Numeric(),
	})
}

func TestAll(t *testing.T) {
	t.Parallel()

	t.Run("valid code", func(t *testing.T) {
		res := run(t, codeRule(), "123")
		assert.Equal(t, validation.Valid(), res)
	})

	t.Run("joins failures with and", func(t *testing.T) {
		res := run(t, codeRule(), "ab")
		assert.False(t, res.Valid)
		assert.Equal(t, "Entry must be at least 3 characters long and Entered value must be a number", res.Error)
	})

	t.Run("keeps input order regardless of completion order", func(t *testing.T) {
		c := validation.All([]validation.Constructor{
			static(validation.Invalid("first"), 40*time.Millisecond),
			static(validation.Valid(), 0),
			static(validation.Invalid("second"), 0),
		})
		assert.Equal(t, "first and second", run(t, c, "").Error)
	})

	t.Run("custom combiner", func(t *testing.T) {
		c := validation.All([]validation.Constructor{
			static(validation.Invalid("a"), 0),
			static(validation.Invalid("b"), 0),
		}, func(errs []string) string { return strings.Join(errs, "; ") })
		assert.Equal(t, "a; b", run(t, c, "").Error)
	})

	t.Run("empty list is valid", func(t *testing.T) {
		assert.True(t, run(t, validation.All(nil), "anything").Valid)
	})

	t.Run("runs validators concurrently", func(t *testing.T) {
		c := validation.All([]validation.Constructor{
			static(validation.Valid(), 50*time.Millisecond),
			static(validation.Valid(), 50*time.Millisecond),
			static(validation.Valid(), 50*time.Millisecond),
		})
		start := time.Now()
		run(t, c, "")
		assert.Less(t, time.Since(start), 140*time.Millisecond)
	})

	t.Run("propagates validator errors", func(t *testing.T) {
		boom := errors.New("lookup failed")
		c := validation.All([]validation.Constructor{static(validation.Valid(), 0), failing(boom)})
		_, err := validation.Bind(c)(context.Background(), "", nil)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("valid iff every validator is valid", func(t *testing.T) {
		outcomes := [][]bool{
			{true, true, true},
			{true, false, true},
			{false, false},
			{false},
			{true},
		}
		for _, o := range outcomes {
			validators := make([]validation.Constructor, len(o))
			all := true
			for i, ok := range o {
				if ok {
					validators[i] = static(validation.Valid(), 0)
				} else {
					validators[i] = static(validation.Invalid("x"), 0)
					all = false
				}
			}
			assert.Equal(t, all, run(t, validation.All(validators), "").Valid, "outcomes %v", o)
		}
	})
}

func TestAny(t *testing.T) {
	t.Parallel()

	t.Run("passes when one validator passes", func(t *testing.T) {
		c := validation.Any([]validation.Constructor{
			static(validation.Invalid("a"), 0),
			static(validation.Valid(), 0),
		})
		assert.True(t, run(t, c, "").Valid)
	})

	t.Run("joins failures with or", func(t *testing.T) {
		c := validation.Any([]validation.Constructor{
			validation.Exactly(validation.ExactlyParams{Value: "yes"}),
			validation.Numeric(),
		})
		res := run(t, c, "maybe")
		assert.Equal(t, "Must be yes or Entered value must be a number", res.Error)
	})

	t.Run("custom combiner", func(t *testing.T) {
		c := validation.Any([]validation.Constructor{
			static(validation.Invalid("a"), 0),
			static(validation.Invalid("b"), 0),
		}, func(errs []string) string { return "none of: " + strings.Join(errs, ",") })
		assert.Equal(t, "none of: a,b", run(t, c, "").Error)
	})

	t.Run("empty list is invalid", func(t *testing.T) {
		assert.False(t, run(t, validation.Any(nil), "").Valid)
	})
}

func TestCovalidate(t *testing.T) {
	t.Parallel()

	t.Run("wraps a valid result", func(t *testing.T) {
		c := validation.Covalidate(validation.CovalidateParams{Fields: []string{"passwordConfirm"}},
			validation.AtLeast(validation.AtLeastParams{Chars: 5}))
		res := run(t, c, "secret")
		assert.True(t, res.Valid)
		assert.True(t, res.IsCovalidated())
		assert.Equal(t, []string{"passwordConfirm"}, res.Covalidate)
		assert.Equal(t, validation.Valid(), res.Inner())
	})

	t.Run("wraps an invalid result", func(t *testing.T) {
		c := validation.Covalidate(validation.CovalidateParams{Fields: []string{"f"}}, static(validation.Invalid("bad"), 0))
		res := run(t, c, "")
		assert.Equal(t, validation.Result{Valid: false, Error: "bad", Covalidate: []string{"f"}}, res)
	})

	t.Run("does not nest", func(t *testing.T) {
		inner := validation.Covalidate(validation.CovalidateParams{Fields: []string{"b"}}, static(validation.Valid(), 0))
		outer := validation.Covalidate(validation.CovalidateParams{Fields: []string{"a", "b"}}, inner)
		res := run(t, outer, "")
		assert.Equal(t, []string{"a", "b"}, res.Covalidate)
		assert.Equal(t, validation.Valid(), res.Inner())
	})

	t.Run("survives aggregation", func(t *testing.T) {
		c := validation.All([]validation.Constructor{
			validation.Covalidate(validation.CovalidateParams{Fields: []string{"x"}}, static(validation.Invalid("e1"), 0)),
			static(validation.Invalid("e2"), 0),
		})
		res := run(t, c, "")
		assert.Equal(t, "e1 and e2", res.Error)
		assert.Equal(t, []string{"x"}, res.Covalidate)
	})
}

func TestDelayed(t *testing.T) {
	t.Parallel()

	t.Run("runs after the delay", func(t *testing.T) {
		var calls atomic.Int32
		c := validation.Delayed(20*time.Millisecond, func(validation.Reporters, validation.Options) validation.Validator {
			return func(context.Context, any, validation.Fields) (validation.Result, error) {
				calls.Add(1)
				return validation.Valid(), nil
			}
		})
		start := time.Now()
		res := run(t, c, "")
		assert.True(t, res.Valid)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		v := validation.Bind(validation.Delayed(time.Second, validation.Required()))
		_, err := v(ctx, "x", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
