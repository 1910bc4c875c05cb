package validation

import "slices"

// Result is the outcome of a single validation.
//
// A result with a non-empty Covalidate list is a covalidated result: it wraps
// the plain Valid/Error outcome and names the fields that must be
// re-validated. Because the list lives on the same value a covalidated result
// can never be nested inside another one.
type Result struct {
	Valid      bool     `json:"valid"`
	Error      string   `json:"error,omitempty"`
	Covalidate []string `json:"covalidate,omitempty"`
}

// Valid reports a passing validation.
func Valid() Result {
	return Result{Valid: true}
}

// Invalid reports a failing validation with a human readable error.
func Invalid(err string) Result {
	return Result{Valid: false, Error: err}
}

// Covalidated wraps r together with fields that must be re-validated.
// Fields already attached to r are kept after the new ones, without duplicates.
func Covalidated(r Result, fields ...string) Result {
	merged := mergeFields(fields, r.Covalidate)
	out := r.Inner()
	if len(merged) > 0 {
		out.Covalidate = merged
	}
	return out
}

// IsCovalidated reports whether the result names fields to re-validate.
func (r Result) IsCovalidated() bool {
	return len(r.Covalidate) > 0
}

// IsInvalid reports whether the wrapped outcome failed.
func (r Result) IsInvalid() bool {
	return !r.Valid
}

// Inner strips the covalidation list and returns the plain outcome.
func (r Result) Inner() Result {
	return Result{Valid: r.Valid, Error: r.Error}
}

// Reporters are the result constructors handed to every validator.
type Reporters struct {
	Valid   func() Result
	Invalid func(err string) Result
}

// DefaultReporters returns the reporters used by Create.
func DefaultReporters() Reporters {
	return Reporters{Valid: Valid, Invalid: Invalid}
}

func (r Reporters) withDefaults() Reporters {
	if r.Valid == nil {
		r.Valid = Valid
	}
	if r.Invalid == nil {
		r.Invalid = Invalid
	}
	return r
}

func mergeFields(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		for _, f := range list {
			if f != "" && !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}
