package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState      = errors.New("statemachine: empty initial state")
	ErrInvalidTransition = errors.New("statemachine: transition needs from, to and event")
	ErrInvalidEvent      = errors.New("statemachine: empty event")
	ErrNoTransition      = errors.New("statemachine: no transition")
	ErrRejected          = errors.New("statemachine: rejected by guards")
)

// TransitionError reports a Fire that left the state unchanged. It unwraps
// to ErrNoTransition or ErrRejected.
type TransitionError struct {
	From  string
	Event string
	Err   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: event %q in state %q", e.Err, e.Event, e.From)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

func transitionError[S, E ~string](from S, event E, err error) error {
	return &TransitionError{From: string(from), Event: string(event), Err: err}
}
