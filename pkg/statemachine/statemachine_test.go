package statemachine_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrymomot/formkit/pkg/statemachine"
)

type phase string
type trigger string

const (
	idle       phase = "idle"
	submitting phase = "submitting"
	submitted  phase = "submitted"

	submit   trigger = "submit"
	complete trigger = "complete"
	reset    trigger = "reset"
)

func lifecycle(opts ...statemachine.Option[phase, trigger]) *statemachine.Machine[phase, trigger] {
	base := []statemachine.Option[phase, trigger]{
		statemachine.WithTransition(idle, submitting, submit),
		statemachine.WithTransition(submitted, submitting, submit),
		statemachine.WithTransition(submitting, submitted, complete),
		statemachine.WithTransition(submitted, idle, reset),
	}
	return statemachine.MustNew(idle, append(base, opts...)...)
}

func TestMachine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Basic Transitions", func(t *testing.T) {
		t.Parallel()
		m := lifecycle()

		if m.Current() != idle {
			t.Fatalf("expected initial state %s, got %s", idle, m.Current())
		}
		if !m.CanFire(ctx, submit, nil) {
			t.Fatal("expected submit to be allowed from idle")
		}
		if err := m.Fire(ctx, submit, nil); err != nil {
			t.Fatalf("failed to fire submit: %v", err)
		}
		if !m.Is(submitting) {
			t.Fatalf("expected %s, got %s", submitting, m.Current())
		}
		if err := m.Fire(ctx, complete, nil); err != nil {
			t.Fatalf("failed to fire complete: %v", err)
		}
		if err := m.Fire(ctx, submit, nil); err != nil {
			t.Fatalf("expected resubmit from submitted, got %v", err)
		}

		m.Reset()
		if m.Current() != idle {
			t.Fatalf("expected %s after reset, got %s", idle, m.Current())
		}
	})

	t.Run("No Transition Available", func(t *testing.T) {
		t.Parallel()
		m := lifecycle()

		if err := m.Fire(ctx, submit, nil); err != nil {
			t.Fatal(err)
		}
		err := m.Fire(ctx, submit, nil)
		if !errors.Is(err, statemachine.ErrNoTransition) {
			t.Fatalf("expected no transition error, got %v", err)
		}
		var te *statemachine.TransitionError
		if !errors.As(err, &te) || te.From != "submitting" || te.Event != "submit" {
			t.Fatalf("expected transition error naming state and event, got %v", err)
		}
		if m.CanFire(ctx, submit, nil) {
			t.Fatal("expected CanFire to be false while submitting")
		}
	})

	t.Run("Guards", func(t *testing.T) {
		t.Parallel()
		onlyValid := func(_ context.Context, _ phase, _ trigger, data any) bool {
			ok, _ := data.(bool)
			return ok
		}
		m := statemachine.MustNew(idle,
			statemachine.WithTransition(idle, submitting, submit, statemachine.WithGuard(onlyValid)),
		)

		if m.CanFire(ctx, submit, false) {
			t.Fatal("expected guard to veto")
		}
		if err := m.Fire(ctx, submit, false); !errors.Is(err, statemachine.ErrRejected) {
			t.Fatalf("expected rejection, got %v", err)
		}
		if err := m.Fire(ctx, submit, true); err != nil {
			t.Fatalf("expected transition, got %v", err)
		}
	})

	t.Run("First Passing Guard Wins", func(t *testing.T) {
		t.Parallel()
		never := func(context.Context, phase, trigger, any) bool { return false }
		m := statemachine.MustNew(idle,
			statemachine.WithTransitions(
				statemachine.Transition[phase, trigger]{From: idle, To: submitted, Event: submit, Guards: []statemachine.Guard[phase, trigger]{never}},
				statemachine.Transition[phase, trigger]{From: idle, To: submitting, Event: submit},
			),
		)
		if err := m.Fire(ctx, submit, nil); err != nil {
			t.Fatal(err)
		}
		if m.Current() != submitting {
			t.Fatalf("expected %s, got %s", submitting, m.Current())
		}
	})

	t.Run("Actions", func(t *testing.T) {
		t.Parallel()
		var seen any
		record := func(_ context.Context, from, to phase, _ trigger, data any) error {
			seen = data
			return nil
		}
		fail := func(context.Context, phase, phase, trigger, any) error {
			return errors.New("handler exploded")
		}
		m := statemachine.MustNew(idle,
			statemachine.WithTransition(idle, submitting, submit, statemachine.WithAction(record)),
			statemachine.WithTransition(submitting, submitted, complete, statemachine.WithAction(fail)),
		)

		if err := m.Fire(ctx, submit, "payload"); err != nil {
			t.Fatal(err)
		}
		if seen != "payload" {
			t.Fatalf("expected action to receive data, got %v", seen)
		}

		err := m.Fire(ctx, complete, nil)
		if err == nil || !strings.Contains(err.Error(), "action failed") {
			t.Fatalf("expected action error, got %v", err)
		}
		if m.Current() != submitting {
			t.Fatalf("failed action must keep state, got %s", m.Current())
		}
	})

	t.Run("Listeners", func(t *testing.T) {
		t.Parallel()
		var got []string
		m := lifecycle(statemachine.WithListener(func(_ context.Context, from, to phase, event trigger) {
			got = append(got, string(from)+">"+string(to)+":"+string(event))
		}))

		_ = m.Fire(ctx, submit, nil)
		_ = m.Fire(ctx, complete, nil)
		_ = m.Fire(ctx, complete, nil) // no transition, not reported

		want := []string{"idle>submitting:submit", "submitting>submitted:complete"}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("Invalid Definitions", func(t *testing.T) {
		t.Parallel()
		if _, err := statemachine.New[phase, trigger](""); !errors.Is(err, statemachine.ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
		_, err := statemachine.New(idle, statemachine.WithTransition[phase, trigger](idle, "", submit))
		if !errors.Is(err, statemachine.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		if err := lifecycle().Fire(ctx, "", nil); !errors.Is(err, statemachine.ErrInvalidEvent) {
			t.Fatalf("expected ErrInvalidEvent, got %v", err)
		}
	})

	t.Run("MustNew Panics", func(t *testing.T) {
		t.Parallel()
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		statemachine.MustNew[phase, trigger]("")
	})

	t.Run("Concurrent Submit", func(t *testing.T) {
		t.Parallel()
		m := lifecycle()

		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if m.Fire(ctx, submit, nil) == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if wins != 1 {
			t.Fatalf("expected exactly one submit to win, got %d", wins)
		}
	})
}
