// Package cancel remembers cancellation requests that arrive before the
// job they target has started, so a scancel broadcast is never lost to a
// race with the submissions queue.
package cancel

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type CancellationTracker struct {
	mu         sync.Mutex
	pending    map[uuid.UUID]time.Time
	retention  time.Duration
	gcInterval time.Duration
	clock      clockwork.Clock
}

func NewCancellationTracker(retention, gcInterval time.Duration) *CancellationTracker {
	return &CancellationTracker{
		pending:    make(map[uuid.UUID]time.Time),
		retention:  retention,
		gcInterval: gcInterval,
		clock:      clockwork.NewRealClock(),
	}
}

// Track records a cancellation request, valid for the retention period.
func (ct *CancellationTracker) Track(jobID uuid.UUID) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.pending[jobID] = ct.clock.Now().Add(ct.retention)
}

// IsCancelled reports whether an unexpired cancellation request exists
// for this job. Expired entries count as not cancelled; the GC loop
// removes them eventually.
func (ct *CancellationTracker) IsCancelled(jobID uuid.UUID) bool {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	expiry, exists := ct.pending[jobID]
	if !exists {
		return false
	}

	if ct.clock.Now().After(expiry) {
		return false
	}

	return true
}

// StartGC runs the cleanup loop until ctx is done (call in a goroutine).
func (ct *CancellationTracker) StartGC(ctx context.Context) {
	ticker := ct.clock.NewTicker(ct.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			ct.cleanup()
		}
	}
}

func (ct *CancellationTracker) cleanup() {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	now := ct.clock.Now()
	for id, expiry := range ct.pending {
		if now.After(expiry) {
			delete(ct.pending, id)
		}
	}
}
