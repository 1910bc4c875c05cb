package validation

import "context"

// FormKey is the reserved validator name for whole-form validation.
const FormKey = "form"

// Validator checks a value, optionally against the other fields of the form.
// A returned error means the validation could not be performed.
type Validator func(ctx context.Context, value any, fields Fields) (Result, error)

// Constructor binds reporters and options to a validator.
type Constructor func(r Reporters, opts Options) Validator

// Set maps field names to bound validators.
type Set map[string]Validator

// Create binds the default reporters and the shared options to every entry of
// validationMap. The entry named FormKey, if any, validates the whole form.
func Create(validationMap map[string]Constructor, opts ...Option) Set {
	options := buildOptions(opts)
	reporters := DefaultReporters()

	set := make(Set, len(validationMap))
	for name, c := range validationMap {
		if c == nil {
			continue
		}
		set[name] = c(reporters, options)
	}
	return set
}

// Bind binds a single constructor the same way Create does.
func Bind(c Constructor, opts ...Option) Validator {
	return c(DefaultReporters(), buildOptions(opts))
}

// Field returns the validator registered for name.
func (s Set) Field(name string) (Validator, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s[name]
	return v, ok && v != nil
}

// Form returns the whole-form validator.
func (s Set) Form() (Validator, bool) {
	return s.Field(FormKey)
}

// Validate runs the validator registered for name. Fields without a
// validator are always valid.
func (s Set) Validate(ctx context.Context, name string, value any, fields Fields) (Result, error) {
	v, ok := s.Field(name)
	if !ok {
		return Valid(), nil
	}
	return v(ctx, value, fields)
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
