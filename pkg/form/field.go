package form

import (
	"context"
)

// Field is the accessor of a mounted field. It holds no state of its own.
type Field struct {
	form *Form
	name string
}

// Name returns the field name.
func (fl *Field) Name() string {
	return fl.name
}

// Focus marks the field touched and active.
func (fl *Field) Focus(ctx context.Context) error {
	return fl.update(ctx, func(rec *Record) {
		rec.Meta.Touched = true
		rec.Meta.Active = true
	})
}

// Blur marks the field inactive. Touched stays set.
func (fl *Field) Blur(ctx context.Context) error {
	return fl.update(ctx, func(rec *Record) {
		rec.Meta.Active = false
	})
}

// Change writes value and schedules its validation. It returns as soon as
// the value is stored.
func (fl *Field) Change(ctx context.Context, value any) error {
	var changed Record
	state, err := fl.form.store.Update(ctx, func(s *State) error {
		rec, ok := s.Fields[fl.name]
		if !ok {
			return fieldError(ErrUnknownField, fl.name)
		}
		rec.Value = value
		rec.Meta.IsValidating = true
		rec.Version = s.nextVersion()
		s.Fields[fl.name] = rec
		changed = rec
		return nil
	})
	if err != nil {
		return err
	}

	fl.form.dispatch(ctx, []target{fieldTarget(fl.name, changed)}, state)
	return nil
}

// Unmount removes the field record. Resolutions still in flight for it are
// discarded.
func (fl *Field) Unmount(ctx context.Context) error {
	_, err := fl.form.store.Update(ctx, func(s *State) error {
		if _, ok := s.Fields[fl.name]; !ok {
			return fieldError(ErrUnknownField, fl.name)
		}
		delete(s.Fields, fl.name)
		return nil
	})
	return err
}

// Props returns a render snapshot of the field.
func (fl *Field) Props(ctx context.Context) (FieldProps, error) {
	state, err := fl.form.store.Get(ctx)
	if err != nil {
		return FieldProps{}, err
	}
	rec, ok := state.Fields[fl.name]
	if !ok {
		return FieldProps{}, fieldError(ErrUnknownField, fl.name)
	}
	return fieldProps(fl.name, -1, rec, fl.form.initialValue(fl.name)), nil
}

func (fl *Field) update(ctx context.Context, fn func(*Record)) error {
	_, err := fl.form.store.Update(ctx, func(s *State) error {
		rec, ok := s.Fields[fl.name]
		if !ok {
			return fieldError(ErrUnknownField, fl.name)
		}
		fn(&rec)
		s.Fields[fl.name] = rec
		return nil
	})
	return err
}
