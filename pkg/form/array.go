package form

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// FieldArray is the accessor of a mounted array field. Elements are
// addressed by index; each keeps a stable ID so in-flight validations follow
// it when indices shift.
type FieldArray struct {
	form *Form
	name string
}

// Name returns the array name.
func (a *FieldArray) Name() string {
	return a.name
}

// Len returns the number of elements.
func (a *FieldArray) Len(ctx context.Context) (int, error) {
	state, err := a.form.store.Get(ctx)
	if err != nil {
		return 0, err
	}
	recs, ok := state.Arrays[a.name]
	if !ok {
		return 0, fieldError(ErrUnknownField, a.name)
	}
	return len(recs), nil
}

// Add appends a blank element and validates it.
func (a *FieldArray) Add(ctx context.Context) error {
	var added target
	state, err := a.form.store.Update(ctx, func(s *State) error {
		recs, ok := s.Arrays[a.name]
		if !ok {
			return fieldError(ErrUnknownField, a.name)
		}
		rec := a.form.seed(s, "")
		s.Arrays[a.name] = append(recs, rec)
		added = elementTarget(a.name, len(recs), rec)
		return nil
	})
	if err != nil {
		return err
	}

	a.form.dispatch(ctx, []target{added}, state)
	return nil
}

// Remove splices element i out. Later elements shift down by one and a
// validation still in flight for the removed element is discarded.
func (a *FieldArray) Remove(ctx context.Context, i int) error {
	state, err := a.form.store.Update(ctx, func(s *State) error {
		recs, err := a.elements(s, i)
		if err != nil {
			return err
		}
		s.Arrays[a.name] = slices.Delete(recs, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	a.form.notifyChange(context.WithoutCancel(ctx), state.Values())
	return nil
}

// Focus marks element i touched and active.
func (a *FieldArray) Focus(ctx context.Context, i int) error {
	return a.update(ctx, i, func(rec *Record) {
		rec.Meta.Touched = true
		rec.Meta.Active = true
	})
}

// Blur marks element i inactive.
func (a *FieldArray) Blur(ctx context.Context, i int) error {
	return a.update(ctx, i, func(rec *Record) {
		rec.Meta.Active = false
	})
}

// Change writes value to element i and schedules its validation.
func (a *FieldArray) Change(ctx context.Context, i int, value any) error {
	var changed target
	state, err := a.form.store.Update(ctx, func(s *State) error {
		recs, err := a.elements(s, i)
		if err != nil {
			return err
		}
		recs[i].Value = value
		recs[i].Meta.IsValidating = true
		recs[i].Version = s.nextVersion()
		changed = elementTarget(a.name, i, recs[i])
		return nil
	})
	if err != nil {
		return err
	}

	a.form.dispatch(ctx, []target{changed}, state)
	return nil
}

// Unmount removes the array and all its elements.
func (a *FieldArray) Unmount(ctx context.Context) error {
	_, err := a.form.store.Update(ctx, func(s *State) error {
		if _, ok := s.Arrays[a.name]; !ok {
			return fieldError(ErrUnknownField, a.name)
		}
		delete(s.Arrays, a.name)
		return nil
	})
	return err
}

// Props returns a render snapshot of the array.
func (a *FieldArray) Props(ctx context.Context) (ArrayProps, error) {
	state, err := a.form.store.Get(ctx)
	if err != nil {
		return ArrayProps{}, err
	}
	recs, ok := state.Arrays[a.name]
	if !ok {
		return ArrayProps{}, fieldError(ErrUnknownField, a.name)
	}
	return arrayProps(a.name, recs), nil
}

func (a *FieldArray) update(ctx context.Context, i int, fn func(*Record)) error {
	_, err := a.form.store.Update(ctx, func(s *State) error {
		recs, err := a.elements(s, i)
		if err != nil {
			return err
		}
		fn(&recs[i])
		return nil
	})
	return err
}

// elements returns the array records after checking that i addresses one.
func (a *FieldArray) elements(s *State, i int) ([]Record, error) {
	recs, ok := s.Arrays[a.name]
	if !ok {
		return nil, fieldError(ErrUnknownField, a.name)
	}
	if i < 0 || i >= len(recs) {
		return nil, errors.Join(ErrIndexOutOfRange, fmt.Errorf("index %d of %q with %d elements", i, a.name, len(recs)))
	}
	return recs, nil
}
