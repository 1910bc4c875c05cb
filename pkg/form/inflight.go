package form

import (
	"context"
	"sync"
)

// inflight counts background work. Unlike sync.WaitGroup it may be waited on
// while new work is being added.
type inflight struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (w *inflight) add() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.n == 0 {
		w.idle = make(chan struct{})
	}
	w.n++
}

func (w *inflight) done() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.n--
	if w.n == 0 {
		close(w.idle)
	}
}

func (w *inflight) wait(ctx context.Context) error {
	w.mu.Lock()
	if w.n == 0 {
		w.mu.Unlock()
		return nil
	}
	idle := w.idle
	w.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// goTracked runs fn in a goroutine tracked by w.
func (w *inflight) goTracked(fn func()) {
	w.add()
	go func() {
		defer w.done()
		fn()
	}()
}
