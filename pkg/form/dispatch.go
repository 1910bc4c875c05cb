package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrymomot/formkit/pkg/async"
	"github.com/dmitrymomot/formkit/pkg/logger"
	"github.com/dmitrymomot/formkit/pkg/validation"
)

// errStale aborts a resolution whose record was replaced or changed.
var errStale = errors.New("form: stale resolution")

// target is one record scheduled for validation, pinned to the identity and
// version it had when the value was read.
type target struct {
	name    string
	index   int
	array   bool
	id      string
	version uint64
	value   any
}

func fieldTarget(name string, rec Record) target {
	return target{name: name, index: -1, id: rec.ID, version: rec.Version, value: rec.Value}
}

func elementTarget(name string, index int, rec Record) target {
	return target{name: name, index: index, array: true, id: rec.ID, version: rec.Version, value: rec.Value}
}

// visitedSet records the fields validated during one change event.
type visitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// claim marks name as visited and reports whether it was new.
func (v *visitedSet) claim(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[name]; ok {
		return false
	}
	v.seen[name] = struct{}{}
	return true
}

// dispatch schedules validation of targets against the given state and
// notifies the change handler. It never blocks on validators.
func (f *Form) dispatch(ctx context.Context, targets []target, state State) {
	ctx = context.WithoutCancel(ctx)
	fields := state.Values()

	if len(targets) > 0 {
		f.work.goTracked(func() {
			f.validate(ctx, targets, fields, state.Seq)
		})
	}
	f.notifyChange(ctx, fields)
}

// validate runs one change event: the form validator once, then every target
// concurrently. Covalidated siblings share the event's visited set.
func (f *Form) validate(ctx context.Context, targets []target, fields FieldMap, seq uint64) {
	visited := newVisitedSet()
	for _, t := range targets {
		visited.claim(t.name)
	}

	f.validateForm(ctx, fields, seq, visited)

	futures := make([]*async.Future[struct{}], len(targets))
	for i, t := range targets {
		futures[i] = async.Run(ctx, func(ctx context.Context) (struct{}, error) {
			f.validateTarget(ctx, t, fields, visited, f.depth)
			return struct{}{}, nil
		})
	}
	_, _ = async.WaitAll(futures...)
}

func (f *Form) validateTarget(ctx context.Context, t target, fields FieldMap, visited *visitedSet, depth int) {
	res := f.run(ctx, t.name, t.index, t.value, fields)
	if res.IsCovalidated() {
		f.covalidate(ctx, res.Covalidate, visited, depth)
	}
	f.resolve(ctx, t, res.Inner())
}

// validateForm runs the form-level validator. A covalidated result triggers
// its fields instead of being stored.
func (f *Form) validateForm(ctx context.Context, fields FieldMap, seq uint64, visited *visitedSet) {
	if _, ok := f.validators.Form(); !ok {
		return
	}

	res := f.run(ctx, validation.FormKey, -1, nil, fields)
	if res.IsCovalidated() {
		f.covalidate(ctx, res.Covalidate, visited, f.depth)
		return
	}

	_, err := f.store.Update(ctx, func(s *State) error {
		if seq < s.Meta.Version {
			return errStale
		}
		s.Meta.Validation = res
		s.Meta.Version = seq
		return nil
	})
	switch {
	case errors.Is(err, errStale):
		f.observer.ObserveDiscarded(ctx, f.name, validation.FormKey)
		f.logger.DebugContext(ctx, "stale form validation discarded")
	case err != nil:
		f.logger.ErrorContext(ctx, "failed to store form validation", logger.Error(err))
	}
}

// covalidate re-validates the named siblings with their current values.
// Names already visited in this event are skipped, which terminates cycles;
// depth bounds how far covalidation chains are followed.
func (f *Form) covalidate(ctx context.Context, names []string, visited *visitedSet, depth int) {
	if depth <= 0 {
		return
	}

	pending := make([]string, 0, len(names))
	for _, name := range names {
		if visited.claim(name) {
			pending = append(pending, name)
		}
	}
	if len(pending) == 0 {
		return
	}

	// Siblings get a fresh version; in-flight validations pinned to the old
	// one are discarded.
	var siblings []target
	state, err := f.store.Update(ctx, func(s *State) error {
		siblings = siblings[:0]
		for _, name := range pending {
			if rec, ok := s.Fields[name]; ok {
				rec.Version = s.nextVersion()
				rec.Meta.IsValidating = true
				s.Fields[name] = rec
				siblings = append(siblings, fieldTarget(name, rec))
				continue
			}
			if recs, ok := s.Arrays[name]; ok {
				for i := range recs {
					recs[i].Version = s.nextVersion()
					recs[i].Meta.IsValidating = true
					siblings = append(siblings, elementTarget(name, i, recs[i]))
				}
			}
		}
		return nil
	})
	if err != nil {
		f.logger.ErrorContext(ctx, "failed to stamp covalidated fields", logger.Error(err))
		return
	}
	for _, name := range pending {
		if _, ok := state.Fields[name]; !ok {
			if _, ok := state.Arrays[name]; !ok {
				f.logger.DebugContext(ctx, "covalidated field is not mounted", logger.Field(name))
			}
		}
	}
	fields := state.Values()

	futures := make([]*async.Future[struct{}], len(siblings))
	for i, t := range siblings {
		futures[i] = async.Run(ctx, func(ctx context.Context) (struct{}, error) {
			f.validateTarget(ctx, t, fields, visited, depth-1)
			return struct{}{}, nil
		})
	}
	_, _ = async.WaitAll(futures...)
}

// run executes the validator registered for name. Validator errors and
// panics become an invalid result carrying the rejection message.
func (f *Form) run(ctx context.Context, name string, index int, value any, fields FieldMap) validation.Result {
	v, ok := f.validators.Field(name)
	if !ok {
		return validation.Valid()
	}

	start := time.Now()
	res, err := async.Run(ctx, func(ctx context.Context) (validation.Result, error) {
		return v(ctx, value, fields)
	}).Await()
	elapsed := time.Since(start)

	f.observer.ObserveValidation(ctx, f.name, name, res, elapsed, err)
	if err != nil {
		f.logger.ErrorContext(ctx, "validator failed",
			logger.Field(name),
			logger.Index(index),
			logger.Duration(elapsed),
			logger.Error(err))
		return validation.Invalid(f.rejection)
	}

	f.logger.DebugContext(ctx, "validator resolved",
		logger.Field(name),
		logger.Index(index),
		logger.Validation(res.Valid, res.Error),
		logger.Duration(elapsed))
	return res
}

// resolve stores res on the target record if it still has the identity and
// version the validation started from.
func (f *Form) resolve(ctx context.Context, t target, res validation.Result) {
	_, err := f.store.Update(ctx, func(s *State) error {
		applied := s.withRecord(t, func(rec *Record) bool {
			if rec.Version != t.version {
				return false
			}
			rec.Meta.Validation = res
			rec.Meta.IsValidating = false
			return true
		})
		if !applied {
			return errStale
		}
		return nil
	})

	switch {
	case errors.Is(err, errStale):
		f.observer.ObserveDiscarded(ctx, f.name, t.name)
		f.logger.DebugContext(ctx, "stale validation discarded", logger.Field(t.name), logger.Index(t.index))
	case err != nil:
		f.logger.ErrorContext(ctx, "failed to store validation", logger.Field(t.name), logger.Error(err))
	}
}

// notifyChange calls the change handler with the post-change values.
func (f *Form) notifyChange(ctx context.Context, fields FieldMap) {
	if f.onChange == nil {
		return
	}
	f.work.goTracked(func() {
		_, err := async.Run(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, f.onChange(ctx, fields)
		}).Await()
		if err != nil {
			f.logger.WarnContext(ctx, "change handler failed", logger.Error(err))
		}
	})
}

// withRecord applies fn to the record addressed by t, located by name and ID.
// It reports false when the record is gone or fn declined the change.
func (s *State) withRecord(t target, fn func(*Record) bool) bool {
	if t.array {
		recs := s.Arrays[t.name]
		for i := range recs {
			if recs[i].ID == t.id {
				return fn(&recs[i])
			}
		}
		return false
	}

	rec, ok := s.Fields[t.name]
	if !ok || rec.ID != t.id {
		return false
	}
	if !fn(&rec) {
		return false
	}
	s.Fields[t.name] = rec
	return true
}
