package form

import (
	"maps"
	"reflect"
	"slices"

	"github.com/dmitrymomot/formkit/pkg/validation"
)

// Meta is the per-record interaction and validation state.
type Meta struct {
	Touched      bool              `json:"touched"`
	Active       bool              `json:"active"`
	IsValidating bool              `json:"is_validating"`
	Validation   validation.Result `json:"validation"`
}

// Record is the state of a single field or array element.
//
// ID is stable for the lifetime of the record. Version is stamped on every
// value write and on every covalidation; a validation resolution is applied
// only while both still match.
type Record struct {
	ID      string `json:"id"`
	Value   any    `json:"value"`
	Meta    Meta   `json:"meta"`
	Version uint64 `json:"version"`
	// Initial is the value the record was seeded with.
	Initial any `json:"initial"`
}

// FormMeta is form-wide state.
type FormMeta struct {
	Validation   validation.Result `json:"validation"`
	IsSubmitting bool              `json:"is_submitting"`
	// Version is the state sequence the form-level validation was computed at.
	Version uint64 `json:"version"`
}

// State is the complete state of a form as held by a Store.
type State struct {
	Fields    map[string]Record   `json:"fields"`
	Arrays    map[string][]Record `json:"arrays"`
	Submitted bool                `json:"submitted"`
	Meta      FormMeta            `json:"meta"`
	// Seq is the last version handed out to a record.
	Seq uint64 `json:"seq"`
}

// NewState returns an empty, valid state.
func NewState() State {
	return State{
		Fields: map[string]Record{},
		Arrays: map[string][]Record{},
		Meta:   FormMeta{Validation: validation.Valid()},
	}
}

// Clone returns a deep copy of s. Slice values are copied; other values are
// treated as immutable scalars.
func (s State) Clone() State {
	out := s
	out.Fields = make(map[string]Record, len(s.Fields))
	for name, rec := range s.Fields {
		out.Fields[name] = rec.clone()
	}
	out.Arrays = make(map[string][]Record, len(s.Arrays))
	for name, recs := range s.Arrays {
		cp := make([]Record, len(recs))
		for i, rec := range recs {
			cp[i] = rec.clone()
		}
		out.Arrays[name] = cp
	}
	out.Meta.Validation = cloneResult(s.Meta.Validation)
	return out
}

func (s *State) normalize() {
	if s.Fields == nil {
		s.Fields = map[string]Record{}
	}
	if s.Arrays == nil {
		s.Arrays = map[string][]Record{}
	}
}

func (s *State) nextVersion() uint64 {
	s.Seq++
	return s.Seq
}

// Values returns the current value of every field. Arrays map to a []any of
// their element values.
func (s State) Values() FieldMap {
	out := make(FieldMap, len(s.Fields)+len(s.Arrays))
	for name, rec := range s.Fields {
		out[name] = rec.Value
	}
	for name, recs := range s.Arrays {
		values := make([]any, len(recs))
		for i, rec := range recs {
			values[i] = rec.Value
		}
		out[name] = values
	}
	return out
}

// Valid reports whether the form-level validation and every record are valid.
func (s State) Valid() bool {
	if !s.Meta.Validation.Valid {
		return false
	}
	for _, rec := range s.Fields {
		if !rec.Meta.Validation.Valid {
			return false
		}
	}
	for _, recs := range s.Arrays {
		for _, rec := range recs {
			if !rec.Meta.Validation.Valid {
				return false
			}
		}
	}
	return true
}

// IsValidating reports whether any record awaits a validation result.
func (s State) IsValidating() bool {
	for _, rec := range s.Fields {
		if rec.Meta.IsValidating {
			return true
		}
	}
	for _, recs := range s.Arrays {
		for _, rec := range recs {
			if rec.Meta.IsValidating {
				return true
			}
		}
	}
	return false
}

// Names returns the mounted field and array names in sorted order.
func (s State) Names() (fields, arrays []string) {
	return slices.Sorted(maps.Keys(s.Fields)), slices.Sorted(maps.Keys(s.Arrays))
}

// Phase describes where a record is in its lifecycle.
type Phase string

const (
	// PhasePristine: the value equals the initial value and no validation is pending.
	PhasePristine Phase = "pristine"
	// PhaseDirty: the value differs from the initial value and its validation settled.
	PhaseDirty Phase = "dirty"
	// PhaseValidating: a validation is in flight.
	PhaseValidating Phase = "validating"
)

// Phase derives the lifecycle phase of r against its initial value.
func (r Record) Phase(initial any) Phase {
	switch {
	case r.Meta.IsValidating:
		return PhaseValidating
	case sameValue(r.Value, initial):
		return PhasePristine
	default:
		return PhaseDirty
	}
}

// Settled reports whether the latest validation has resolved.
func (r Record) Settled() bool {
	return !r.Meta.IsValidating
}

func (r Record) clone() Record {
	if values, ok := r.Value.([]any); ok {
		r.Value = slices.Clone(values)
	}
	r.Meta.Validation = cloneResult(r.Meta.Validation)
	return r
}

func cloneResult(r validation.Result) validation.Result {
	r.Covalidate = slices.Clone(r.Covalidate)
	return r
}

func sameValue(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
