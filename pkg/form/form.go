package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/formkit/pkg/async"
	"github.com/dmitrymomot/formkit/pkg/logger"
	"github.com/dmitrymomot/formkit/pkg/statemachine"
	"github.com/dmitrymomot/formkit/pkg/validation"
)

// Form owns the state of one form and orchestrates its validation.
//
// Fields and arrays are mounted with Field and FieldArray, which return
// accessors bound to the form. All state lives in the Store; accessors only
// carry the form and a name.
type Form struct {
	name           string
	validators     validation.Set
	initial        map[string]any
	onSubmit       Handler
	onSubmitFailed Handler
	onChange       Handler
	store          Store
	logger         *slog.Logger
	observer       Observer
	depth          int
	rejection      string

	lifecycle *statemachine.Machine[submitPhase, submitEvent]
	work      inflight
}

// New creates a form. It fails with ErrEmptyName for an empty name.
func New(name string, opts ...Option) (*Form, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	f := &Form{
		name:      name,
		logger:    logger.Discard(),
		observer:  NopObserver{},
		depth:     1,
		rejection: DefaultRejectionMessage,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.store == nil {
		f.store = NewMemoryStore()
	}
	f.logger = f.logger.With(logger.Form(name))
	f.lifecycle = newLifecycle(func(ctx context.Context, from, to submitPhase, event submitEvent) {
		f.logger.DebugContext(ctx, "submit lifecycle",
			logger.Event(string(event)),
			slog.String("from", string(from)),
			slog.String("to", string(to)))
	})

	return f, nil
}

// MustNew is like New but panics on error.
func MustNew(name string, opts ...Option) *Form {
	f, err := New(name, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the form name.
func (f *Form) Name() string {
	return f.name
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot(ctx context.Context) (State, error) {
	return f.store.Get(ctx)
}

// Values returns the current value of every mounted field.
func (f *Form) Values(ctx context.Context) (FieldMap, error) {
	state, err := f.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	return state.Values(), nil
}

// Field mounts the named field and returns its accessor. A new field is
// seeded from the initial values and validated; mounting an already mounted
// field returns an accessor without touching its state.
func (f *Form) Field(ctx context.Context, name string) (*Field, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	var seeded []target
	state, err := f.store.Update(ctx, func(s *State) error {
		seeded = nil
		if _, ok := s.Arrays[name]; ok {
			return fieldError(ErrIsArray, name)
		}
		if _, ok := s.Fields[name]; ok {
			return nil
		}
		rec := f.seed(s, f.initialValue(name))
		s.Fields[name] = rec
		seeded = []target{fieldTarget(name, rec)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(seeded) > 0 {
		f.dispatch(ctx, seeded, state)
	}
	return &Field{form: f, name: name}, nil
}

// MustField is like Field but panics on error.
func (f *Form) MustField(ctx context.Context, name string) *Field {
	fld, err := f.Field(ctx, name)
	if err != nil {
		panic(err)
	}
	return fld
}

// FieldArray mounts the named array and returns its accessor. The initial
// value must be a slice (or absent, for an empty array); anything else
// returns ErrArrayInitialValue. Every seeded element is validated.
func (f *Form) FieldArray(ctx context.Context, name string) (*FieldArray, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	elements, err := f.initialElements(name)
	if err != nil {
		return nil, err
	}

	var seeded []target
	state, err := f.store.Update(ctx, func(s *State) error {
		seeded = nil
		if _, ok := s.Fields[name]; ok {
			return fieldError(ErrNotArray, name)
		}
		if _, ok := s.Arrays[name]; ok {
			return nil
		}
		recs := make([]Record, len(elements))
		for i, v := range elements {
			recs[i] = f.seed(s, v)
			seeded = append(seeded, elementTarget(name, i, recs[i]))
		}
		s.Arrays[name] = recs
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(seeded) > 0 {
		f.dispatch(ctx, seeded, state)
	}
	return &FieldArray{form: f, name: name}, nil
}

// MustFieldArray is like FieldArray but panics on error.
func (f *Form) MustFieldArray(ctx context.Context, name string) *FieldArray {
	arr, err := f.FieldArray(ctx, name)
	if err != nil {
		panic(err)
	}
	return arr
}

// Submit marks the form submitted and calls the submit handler when every
// validation passes, the failed-submit handler otherwise. It returns after
// the handler finished, with the handler's error. A Submit while another one
// is running returns ErrSubmitInProgress.
//
// Submit decides on the validations settled so far; call Wait first to
// include in-flight ones.
func (f *Form) Submit(ctx context.Context) error {
	if err := f.lifecycle.Fire(ctx, eventSubmit, nil); err != nil {
		if errors.Is(err, statemachine.ErrNoTransition) {
			return ErrSubmitInProgress
		}
		return err
	}
	start := time.Now()

	state, err := f.store.Update(ctx, func(s *State) error {
		if s.Meta.IsSubmitting {
			return ErrSubmitInProgress
		}
		s.Submitted = true
		s.Meta.IsSubmitting = true
		return nil
	})
	if err != nil {
		_ = f.lifecycle.Fire(ctx, eventComplete, nil)
		return err
	}

	valid := state.Valid()
	handler := f.onSubmit
	if !valid {
		handler = f.onSubmitFailed
	}

	// a panicking handler surfaces as async.ErrPanic and the flag is still cleared
	var handlerErr error
	if handler != nil {
		_, handlerErr = async.Run(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, handler(ctx, state.Values())
		}).Await()
	}

	// the flag must be cleared even when the caller's context is gone
	_, clearErr := f.store.Update(context.WithoutCancel(ctx), func(s *State) error {
		s.Meta.IsSubmitting = false
		return nil
	})
	_ = f.lifecycle.Fire(ctx, eventComplete, nil)

	err = errors.Join(handlerErr, clearErr)
	f.observer.ObserveSubmit(ctx, f.name, valid, time.Since(start), err)
	if err != nil {
		f.logger.ErrorContext(ctx, "submit handler failed", slog.Bool("valid", valid), logger.Error(err))
	} else {
		f.logger.InfoContext(ctx, "form submitted", slog.Bool("valid", valid), logger.Duration(time.Since(start)))
	}
	return err
}

// Reset clears every record, the submitted flag and the form-level
// validation, then regenerates every mounted field and array from the
// initial values and validates them again. Resolutions still in flight for
// the old records are discarded.
func (f *Form) Reset(ctx context.Context) error {
	var seeded []target
	state, err := f.store.Update(ctx, func(s *State) error {
		seeded = nil
		fields, arrays := s.Names()

		s.Fields = make(map[string]Record, len(fields))
		s.Arrays = make(map[string][]Record, len(arrays))
		s.Submitted = false
		s.Meta.Validation = validation.Valid()

		for _, name := range fields {
			rec := f.seed(s, f.initialValue(name))
			s.Fields[name] = rec
			seeded = append(seeded, fieldTarget(name, rec))
		}
		for _, name := range arrays {
			// mounted arrays passed this check already
			elements, _ := f.initialElements(name)
			recs := make([]Record, len(elements))
			for i, v := range elements {
				recs[i] = f.seed(s, v)
				seeded = append(seeded, elementTarget(name, i, recs[i]))
			}
			s.Arrays[name] = recs
		}
		return nil
	})
	if err != nil {
		return err
	}

	if f.lifecycle.CanFire(ctx, eventReset, nil) {
		_ = f.lifecycle.Fire(ctx, eventReset, nil)
	}
	f.logger.DebugContext(ctx, "form reset", slog.Int("records", len(seeded)))

	f.dispatch(ctx, seeded, state)
	return nil
}

// Wait blocks until every in-flight validation and change notification has
// finished, or ctx is done.
func (f *Form) Wait(ctx context.Context) error {
	return f.work.wait(ctx)
}

// Props returns a render snapshot of the form.
func (f *Form) Props(ctx context.Context) (FormProps, error) {
	state, err := f.store.Get(ctx)
	if err != nil {
		return FormProps{}, err
	}
	return f.formProps(state), nil
}

func (f *Form) seed(s *State, value any) Record {
	return Record{
		ID:      uuid.NewString(),
		Value:   value,
		Meta:    Meta{IsValidating: true, Validation: validation.Valid()},
		Version: s.nextVersion(),
		Initial: value,
	}
}

// initialValue returns the configured initial value of a field, "" when unset.
func (f *Form) initialValue(name string) any {
	if v, ok := f.initial[name]; ok && v != nil {
		return v
	}
	return ""
}

// initialElements returns the initial elements of an array field.
func (f *Form) initialElements(name string) ([]any, error) {
	v, ok := f.initial[name]
	if !ok || v == nil {
		return nil, nil
	}
	if values, ok := v.([]any); ok {
		return values, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.Join(ErrArrayInitialValue, fmt.Errorf("field %q has initial value of type %T", name, v))
	}
	out := make([]any, rv.Len())
	for i := range rv.Len() {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func fieldError(err error, name string) error {
	return errors.Join(err, fmt.Errorf("field %q", name))
}
