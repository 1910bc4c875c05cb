package submission

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrymomot/formkit/pkg/form"
)

// Sanitizer strips markup from submitted values before they are stored or
// echoed back.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer returns a sanitizer removing every HTML element.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// NewSanitizerWithPolicy returns a sanitizer using a custom policy.
func NewSanitizerWithPolicy(p *bluemonday.Policy) *Sanitizer {
	return &Sanitizer{policy: p}
}

// String sanitizes a single string.
func (s *Sanitizer) String(v string) string {
	return s.policy.Sanitize(v)
}

// Values returns a sanitized copy of fields. Strings are cleaned, slices are
// cleaned element by element and other scalars are kept as they are.
func (s *Sanitizer) Values(fields form.FieldMap) map[string]any {
	out := make(map[string]any, len(fields))
	for name, v := range fields {
		out[name] = s.value(v)
	}
	return out
}

func (s *Sanitizer) value(v any) any {
	switch v := v.(type) {
	case string:
		return s.policy.Sanitize(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = s.value(e)
		}
		return out
	case []string:
		out := make([]string, len(v))
		for i, e := range v {
			out[i] = s.policy.Sanitize(e)
		}
		return out
	default:
		return v
	}
}
