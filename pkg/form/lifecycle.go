package form

import (
	"github.com/dmitrymomot/formkit/pkg/statemachine"
)

type submitPhase string

type submitEvent string

const (
	phaseIdle       submitPhase = "idle"
	phaseSubmitting submitPhase = "submitting"
	phaseSubmitted  submitPhase = "submitted"

	eventSubmit   submitEvent = "submit"
	eventComplete submitEvent = "complete"
	eventReset    submitEvent = "reset"
)

// newLifecycle builds the submit state machine:
// idle -> submitting -> submitted, and back to idle on reset.
// A submitted form may be submitted again.
func newLifecycle(listener statemachine.Listener[submitPhase, submitEvent]) *statemachine.Machine[submitPhase, submitEvent] {
	return statemachine.MustNew(phaseIdle,
		statemachine.WithTransition(phaseIdle, phaseSubmitting, eventSubmit),
		statemachine.WithTransition(phaseSubmitted, phaseSubmitting, eventSubmit),
		statemachine.WithTransition(phaseSubmitting, phaseSubmitted, eventComplete),
		statemachine.WithTransition(phaseSubmitted, phaseIdle, eventReset),
		statemachine.WithListener(listener),
	)
}
