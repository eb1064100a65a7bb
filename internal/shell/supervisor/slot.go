package supervisor

import (
	"context"
	"time"
)

// occupant is the content of the core slot. It is only reachable from inside
// coreSlot.with, so every read and write happens under the slot's lock.
type occupant struct {
	handle    Handle
	startedAt time.Time
}

func (o *occupant) clear() {
	o.handle = nil
	o.startedAt = time.Time{}
}

// coreSlot holds zero or one core handle behind a single lock. The lock is a
// one-element semaphore so waiting for it honors context cancellation.
type coreSlot struct {
	sem chan struct{}
	occ occupant
}

func newCoreSlot() *coreSlot {
	return &coreSlot{sem: make(chan struct{}, 1)}
}

// with runs fn while holding the slot. It returns ctx.Err() if the lock could
// not be acquired before ctx ended.
func (s *coreSlot) with(ctx context.Context, fn func(o *occupant) error) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.sem }()
	return fn(&s.occ)
}
