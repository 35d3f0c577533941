// Package admission bounds the number of concurrently active connections.
//
// The controller is a fixed-capacity token gate: Acquire blocks the calling
// goroutine (no OS thread is consumed) while all slots are outstanding, and
// every Release wakes exactly one waiter. Waiters are served in roughly the
// order the runtime unblocks channel sends, which is sufficient: no waiter
// can starve once capacity frees.
package admission

import (
	"context"
	"sync"
)

// Controller issues slots up to a fixed capacity.
type Controller struct {
	slots    chan struct{}
	capacity int
}

// NewController creates a controller with the given capacity. A capacity
// below one is clamped to one so the gate can always make progress.
func NewController(capacity int) *Controller {
	if capacity < 1 {
		capacity = 1
	}
	return &Controller{
		slots:    make(chan struct{}, capacity),
		capacity: capacity,
	}
}

// Acquire blocks until a slot is available or ctx is done. On success the
// returned slot must be released exactly once; Release is safe to call
// more than once but only the first call returns the slot.
func (c *Controller) Acquire(ctx context.Context) (*Slot, error) {
	select {
	case c.slots <- struct{}{}:
		return &Slot{controller: c}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryAcquire acquires a slot without blocking. It returns nil when the
// controller is at capacity.
func (c *Controller) TryAcquire() *Slot {
	select {
	case c.slots <- struct{}{}:
		return &Slot{controller: c}
	default:
		return nil
	}
}

// InFlight returns the number of outstanding slots.
func (c *Controller) InFlight() int {
	return len(c.slots)
}

// Capacity returns the configured maximum.
func (c *Controller) Capacity() int {
	return c.capacity
}

// Slot is permission for one connection's pipeline to be active.
type Slot struct {
	controller *Controller
	once       sync.Once
}

// Release returns the slot to the controller, waking one waiter if any.
// Calling Release more than once has no further effect.
func (s *Slot) Release() {
	s.once.Do(func() {
		<-s.controller.slots
	})
}
