// Package views orchestrates the per-entity surface the presentation layer
// consumes: records, loading flag, last error, refresh and mutations. A
// successful write never patches local state; the coordinator refetches the
// authoritative collection instead.
package views

import (
	"context"
	"errors"
	"sync"
)

// ErrInFlight rejects a submission while an identical one is still running.
var ErrInFlight = errors.New("operation already in flight")

// coordinator is the shared state machine behind every entity view. It
// guards against re-entrant identical submissions and discards results whose
// coordinating state changed identity while the request was in flight.
type coordinator[T any] struct {
	mu       sync.Mutex
	records  []T
	loading  bool
	err      error
	gen      uint64
	inflight map[string]bool
}

func newCoordinator[T any]() *coordinator[T] {
	return &coordinator[T]{inflight: map[string]bool{}}
}

// Snapshot is the view-ready state handed to the presentation layer.
type Snapshot[T any] struct {
	Records []T
	Loading bool
	Err     error
}

func (c *coordinator[T]) snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	records := make([]T, len(c.records))
	copy(records, c.records)
	return Snapshot[T]{Records: records, Loading: c.loading, Err: c.err}
}

// reset drops the collection and invalidates in-flight results. Called when
// the session changes identity or the view is torn down.
func (c *coordinator[T]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.records = nil
	c.err = nil
	c.loading = false
}

// refresh runs fetch and installs its result unless the coordinator was
// reset while the fetch was in flight; a superseded fetch completes but its
// result is discarded. Refreshes are not deduplicated, the newest one wins.
func (c *coordinator[T]) refresh(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	c.mu.Lock()
	gen := c.gen
	c.loading = true
	c.mu.Unlock()

	records, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	c.loading = false
	if err != nil {
		c.err = err
		return err
	}
	c.records = records
	c.err = nil
	return nil
}

// mutate runs op guarded by key, then refetches. A second submission with
// the same key while the first is in flight is rejected without reaching the
// repository.
func (c *coordinator[T]) mutate(ctx context.Context, key string, op func(context.Context) error, fetch func(context.Context) ([]T, error)) error {
	c.mu.Lock()
	if c.inflight[key] {
		c.mu.Unlock()
		return ErrInFlight
	}
	c.inflight[key] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
	}()

	if err := op(ctx); err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return err
	}

	// Write succeeded; the refetch supplies the authoritative state.
	return c.refresh(ctx, fetch)
}
