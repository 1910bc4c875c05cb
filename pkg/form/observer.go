package form

import (
	"context"
	"time"

	"github.com/dmitrymomot/formkit/pkg/validation"
)

// Observer receives validation and submit events, for example to export
// metrics. Methods are called from validation goroutines and must be safe
// for concurrent use.
type Observer interface {
	// ObserveValidation reports a finished validator run. err is non-nil
	// when the validator failed to run.
	ObserveValidation(ctx context.Context, form, field string, result validation.Result, elapsed time.Duration, err error)
	// ObserveDiscarded reports a resolution dropped because its record
	// changed, moved or disappeared in the meantime.
	ObserveDiscarded(ctx context.Context, form, field string)
	// ObserveSubmit reports a finished submit.
	ObserveSubmit(ctx context.Context, form string, valid bool, elapsed time.Duration, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) ObserveValidation(context.Context, string, string, validation.Result, time.Duration, error) {
}

func (NopObserver) ObserveDiscarded(context.Context, string, string) {}

func (NopObserver) ObserveSubmit(context.Context, string, bool, time.Duration, error) {}
