package form

import "github.com/dmitrymomot/formkit/pkg/validation"

// FieldMap holds the current value of every mounted field. It is what
// validators, handlers and render code see.
type FieldMap map[string]any

var _ validation.Fields = FieldMap(nil)

// Lookup implements validation.Fields.
func (m FieldMap) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// String returns the string form of the named value, "" when absent.
func (m FieldMap) String(name string) string {
	return validation.Stringify(m[name])
}

// Strings returns the string form of every element of the named array value.
func (m FieldMap) Strings(name string) []string {
	values, _ := m[name].([]any)
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = validation.Stringify(v)
	}
	return out
}
