// Package statemachine implements a small, generic finite-state machine.
//
// States and events are any string-based types, so callers declare them as
// typed constants and get compile-time checking for free:
//
//	type Phase string
//	type Trigger string
//
//	const (
//	    Idle       Phase = "idle"
//	    Submitting Phase = "submitting"
//
//	    Submit Trigger = "submit"
//	)
//
//	m := statemachine.MustNew(Idle,
//	    statemachine.WithTransition(Idle, Submitting, Submit),
//	)
//
//	if err := m.Fire(ctx, Submit, nil); errors.Is(err, statemachine.ErrNoTransition) {
//	    // already submitting
//	}
//
// Guards veto transitions based on runtime data, actions run after the guards
// pass and before the state changes (an action error aborts the transition),
// and listeners observe every completed transition. All methods are safe for
// concurrent use.
package statemachine
