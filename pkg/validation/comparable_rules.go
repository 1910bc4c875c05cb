package validation

import (
	"context"
	"fmt"
)

// EqualToParams configures EqualTo.
type EqualToParams struct {
	Field string
}

// ExactlyParams configures Exactly.
type ExactlyParams struct {
	Value any
}

// EqualTo validates that a value equals the current value of another field.
// A missing referenced field never matches.
func EqualTo(params EqualToParams, msgs ...Messages) Constructor {
	return func(r Reporters, opts Options) Validator {
		r = r.withDefaults()
		return func(_ context.Context, value any, fields Fields) (Result, error) {
			if fields != nil {
				if other, ok := fields.Lookup(params.Field); ok && equalValues(value, other) {
					return r.Valid(), nil
				}
			}

			format := messageFormat(msgs, Params{"field": params.Field, ParamValue: value}, opts)
			return r.Invalid(format(MessageDifferent, fmt.Sprintf("Must match %s", params.Field))), nil
		}
	}
}

// Exactly validates that a value is deep-equal to params.Value.
func Exactly(params ExactlyParams, msgs ...Messages) Constructor {
	return func(r Reporters, opts Options) Validator {
		r = r.withDefaults()
		return func(_ context.Context, value any, _ Fields) (Result, error) {
			if equalValues(value, params.Value) {
				return r.Valid(), nil
			}

			format := messageFormat(msgs, Params{"expected": params.Value, ParamValue: value}, opts)
			return r.Invalid(format(MessageDifferent, fmt.Sprintf("Must be %s", Stringify(params.Value)))), nil
		}
	}
}
