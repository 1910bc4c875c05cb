package validation

// Fields gives validators read access to the values of every field in the form.
type Fields interface {
	Lookup(name string) (any, bool)
}

// FieldValues is a plain value map implementing Fields.
type FieldValues map[string]any

// Lookup returns the value stored under name.
func (v FieldValues) Lookup(name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	val, ok := v[name]
	return val, ok
}
