package form

import (
	"fmt"
	"sort"

	"github.com/dmitrymomot/formkit/pkg/validation"
)

// FieldMeta is the render view of a record's meta.
type FieldMeta struct {
	Valid        bool   `json:"valid"`
	Error        string `json:"error,omitempty"`
	Pristine     bool   `json:"pristine"`
	Touched      bool   `json:"touched"`
	Active       bool   `json:"active"`
	IsValidating bool   `json:"is_validating"`
}

// FieldProps is what a render function receives for a field or array element.
type FieldProps struct {
	Name string `json:"name"`
	// Index is the element index, -1 for plain fields.
	Index int       `json:"index"`
	ID    string    `json:"id"`
	Value any       `json:"value"`
	Meta  FieldMeta `json:"meta"`
}

// Key returns the name used in error maps: name for fields, name[i] for
// array elements.
func (p FieldProps) Key() string {
	return elementKey(p.Name, p.Index)
}

// ArrayProps is what a render function receives for an array field.
type ArrayProps struct {
	Name   string       `json:"name"`
	Fields []FieldProps `json:"fields"`
}

// FormProps is a render snapshot of the whole form.
type FormProps struct {
	Name         string            `json:"name"`
	Valid        bool              `json:"valid"`
	Submitted    bool              `json:"submitted"`
	IsValidating bool              `json:"is_validating"`
	IsSubmitting bool              `json:"is_submitting"`
	Errors       map[string]string `json:"errors"`
	Values       FieldMap          `json:"values"`
}

// ErrorKeys returns the keys of Errors in sorted order.
func (p FormProps) ErrorKeys() []string {
	keys := make([]string, 0, len(p.Errors))
	for k := range p.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fieldProps(name string, index int, rec Record, initial any) FieldProps {
	return FieldProps{
		Name:  name,
		Index: index,
		ID:    rec.ID,
		Value: rec.Value,
		Meta: FieldMeta{
			Valid:        rec.Meta.Validation.Valid,
			Error:        rec.Meta.Validation.Error,
			Pristine:     sameValue(rec.Value, initial),
			Touched:      rec.Meta.Touched,
			Active:       rec.Meta.Active,
			IsValidating: rec.Meta.IsValidating,
		},
	}
}

// arrayProps compares each element with the value it was seeded with, so
// removals do not shift pristine state onto other elements.
func arrayProps(name string, recs []Record) ArrayProps {
	out := ArrayProps{Name: name, Fields: make([]FieldProps, len(recs))}
	for i, rec := range recs {
		out.Fields[i] = fieldProps(name, i, rec, rec.Initial)
	}
	return out
}

func (f *Form) formProps(s State) FormProps {
	errs := make(map[string]string)
	for name, rec := range s.Fields {
		if !rec.Meta.Validation.Valid {
			errs[name] = rec.Meta.Validation.Error
		}
	}
	for name, recs := range s.Arrays {
		for i, rec := range recs {
			if !rec.Meta.Validation.Valid {
				errs[elementKey(name, i)] = rec.Meta.Validation.Error
			}
		}
	}
	if !s.Meta.Validation.Valid {
		errs[validation.FormKey] = s.Meta.Validation.Error
	}

	return FormProps{
		Name:         f.name,
		Valid:        s.Valid(),
		Submitted:    s.Submitted,
		IsValidating: s.IsValidating(),
		IsSubmitting: s.Meta.IsSubmitting,
		Errors:       errs,
		Values:       s.Values(),
	}
}

func elementKey(name string, index int) string {
	if index < 0 {
		return name
	}
	return fmt.Sprintf("%s[%d]", name, index)
}
