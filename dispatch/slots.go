package dispatch

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SlotManager bounds how many launches run concurrently. Each accepted
// job reserves one slot for its whole pipeline.
type SlotManager struct {
	mu       sync.Mutex
	capacity int
	inUse    map[uuid.UUID]struct{}
}

func NewSlotManager(capacity int) (*SlotManager, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("slot capacity must be at least 1, got %d", capacity)
	}
	return &SlotManager{
		capacity: capacity,
		inUse:    make(map[uuid.UUID]struct{}),
	}, nil
}

func (s *SlotManager) Reserve(jobID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inUse[jobID]; ok {
		return fmt.Errorf("job %s already holds a slot", jobID)
	}
	if len(s.inUse) >= s.capacity {
		return fmt.Errorf("no launch slots available")
	}

	s.inUse[jobID] = struct{}{}
	return nil
}

// Release frees the slot held by a job.
// Errors if the job does not hold one.
func (s *SlotManager) Release(jobID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inUse[jobID]; !ok {
		return fmt.Errorf("job %s not found", jobID)
	}
	delete(s.inUse, jobID)
	return nil
}

func (s *SlotManager) InUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inUse)
}
