package form

import (
	"context"
	"log/slog"
	"maps"

	"github.com/dmitrymomot/formkit/pkg/validation"
)

// DefaultRejectionMessage is the error shown when a validator fails to run.
const DefaultRejectionMessage = "Validation could not be completed"

// Handler receives the field map on submit, failed submit and change.
type Handler func(ctx context.Context, fields FieldMap) error

// Option configures a Form.
type Option func(*Form)

// WithValidators sets the validators, keyed by field name. The entry under
// validation.FormKey validates the whole form.
func WithValidators(set validation.Set) Option {
	return func(f *Form) { f.validators = set }
}

// WithInitialValues sets the values fields are seeded with on mount and reset.
// Fields without an entry start as "". Arrays expect a slice.
func WithInitialValues(values map[string]any) Option {
	return func(f *Form) { f.initial = maps.Clone(values) }
}

// WithOnSubmit sets the handler called by Submit when the form is valid.
func WithOnSubmit(h Handler) Option {
	return func(f *Form) { f.onSubmit = h }
}

// WithOnSubmitFailed sets the handler called by Submit when the form is invalid.
func WithOnSubmitFailed(h Handler) Option {
	return func(f *Form) { f.onSubmitFailed = h }
}

// WithOnChange sets the handler notified after every value write. It runs in
// the background; its error is logged.
func WithOnChange(h Handler) Option {
	return func(f *Form) { f.onChange = h }
}

// WithStore sets the state store. Defaults to a MemoryStore.
func WithStore(s Store) Option {
	return func(f *Form) { f.store = s }
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithObserver sets the observer of validation and submit activity.
func WithObserver(o Observer) Option {
	return func(f *Form) {
		if o != nil {
			f.observer = o
		}
	}
}

// WithCovalidationDepth bounds how many levels of covalidated results are
// followed per change event. Zero disables fan-out. Defaults to 1.
func WithCovalidationDepth(depth int) Option {
	return func(f *Form) {
		if depth >= 0 {
			f.depth = depth
		}
	}
}

// WithRejectionMessage sets the error stored for a field whose validator
// returned an error or panicked.
func WithRejectionMessage(msg string) Option {
	return func(f *Form) {
		if msg != "" {
			f.rejection = msg
		}
	}
}
