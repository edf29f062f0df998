// Package keylock serializes work per key (a meeting id) inside one process.
//
// Each key gets a one-slot semaphore that exists only while someone holds or
// waits for it, so distinct meetings never contend and idle meetings cost
// nothing. Waiting honours the caller's context.
package keylock

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrTimeout is returned when the context ends before the lock is acquired.
var ErrTimeout = errors.New("keylock: timed out waiting for lock")

type entry struct {
	slot chan struct{}
	refs int
}

// Registry hands out per-key locks. The zero value is not usable; call New.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{locks: make(map[string]*entry)}
}

// Lock blocks until the lock for key is held or ctx is done. The returned
// unlock func is safe to call more than once.
func (r *Registry) Lock(ctx context.Context, key string) (unlock func(), err error) {
	e := r.acquireEntry(key)

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		r.releaseEntry(key, e)
		return nil, fmt.Errorf("%w: %s: %v", ErrTimeout, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.slot
			r.releaseEntry(key, e)
		})
	}, nil
}

// Len reports how many keys currently have holders or waiters.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

func (r *Registry) acquireEntry(key string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.locks[key]
	if !ok {
		e = &entry{slot: make(chan struct{}, 1)}
		r.locks[key] = e
	}
	e.refs++
	return e
}

func (r *Registry) releaseEntry(key string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(r.locks, key)
	}
}
