package validation

import (
	"context"
	"fmt"
	"regexp"
)

// AtLeastParams configures AtLeast.
type AtLeastParams struct {
	Chars int
}

// AtMostParams configures AtMost.
type AtMostParams struct {
	Chars int
}

// MatchesParams configures Matches.
type MatchesParams struct {
	Regex *regexp.Regexp
}

var numericPattern = regexp.MustCompile(`^[0-9]*$`)

// AtLeast validates that a value is present and at least Chars long.
// Absent or empty values fail with the "undef" message.
func AtLeast(params AtLeastParams, msgs ...Messages) Constructor {
	return func(r Reporters, opts Options) Validator {
		r = r.withDefaults()
		return func(_ context.Context, value any, _ Fields) (Result, error) {
			format := messageFormat(msgs, Params{"chars": params.Chars, ParamValue: value}, opts)

			if isEmpty(value) {
				return r.Invalid(format(MessageUndef, "Please enter a value")), nil
			}

			if valueLength(value) >= params.Chars {
				return r.Valid(), nil
			}
			return r.Invalid(format(MessageShort,
				fmt.Sprintf("Entry must be at least %d characters long", params.Chars))), nil
		}
	}
}

// AtMost validates that a value is no longer than Chars. Empty values pass.
func AtMost(params AtMostParams, msgs ...Messages) Constructor {
	return func(r Reporters, opts Options) Validator {
		r = r.withDefaults()
		return func(_ context.Context, value any, _ Fields) (Result, error) {
			if isEmpty(value) {
				return r.Valid(), nil
			}

			if valueLength(value) <= params.Chars {
				return r.Valid(), nil
			}

			format := messageFormat(msgs, Params{"chars": params.Chars, ParamValue: value}, opts)
			return r.Invalid(format(MessageLong,
				fmt.Sprintf("Entry must be no more than %d characters long", params.Chars))), nil
		}
	}
}

// Numeric validates that a value consists of digits only. Absent values pass.
func Numeric(msgs ...Messages) Constructor {
	return func(r Reporters, opts Options) Validator {
		r = r.withDefaults()
		return func(_ context.Context, value any, _ Fields) (Result, error) {
			if value == nil {
				return r.Valid(), nil
			}

			if numericPattern.MatchString(Stringify(value)) {
				return r.Valid(), nil
			}

			format := messageFormat(msgs, Params{ParamValue: value}, opts)
			return r.Invalid(format(MessageNonNumeric, "Entered value must be a number")), nil
		}
	}
}

// Matches validates a value against a regular expression. Empty values pass.
// It panics when params.Regex is nil.
func Matches(params MatchesParams, msgs ...Messages) Constructor {
	if params.Regex == nil {
		panic(ErrNilPattern)
	}

	return func(r Reporters, opts Options) Validator {
		r = r.withDefaults()
		return func(_ context.Context, value any, _ Fields) (Result, error) {
			if isEmpty(value) {
				return r.Valid(), nil
			}

			if params.Regex.MatchString(Stringify(value)) {
				return r.Valid(), nil
			}

			format := messageFormat(msgs, Params{"regex": params.Regex.String(), ParamValue: value}, opts)
			return r.Invalid(format(MessageDifferent, "Must match pattern")), nil
		}
	}
}

// Required validates that a value is present and not empty.
func Required(msgs ...Messages) Constructor {
	return func(r Reporters, opts Options) Validator {
		r = r.withDefaults()
		return func(_ context.Context, value any, _ Fields) (Result, error) {
			if !isEmpty(value) && Stringify(value) != "" {
				return r.Valid(), nil
			}

			format := messageFormat(msgs, Params{ParamValue: value}, opts)
			return r.Invalid(format(MessageUndef, "Required")), nil
		}
	}
}
