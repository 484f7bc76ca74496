package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eugenenazirov/print-layout/internal/pricing"
)

// ErrInvalidSchedule indicates the provided price schedule violates validation rules.
var ErrInvalidSchedule = errors.New("price schedule rejected")

// Storage provides access to the price schedule used for quoting.
type Storage interface {
	GetSchedule() (pricing.Schedule, error)
	SetSchedule(schedule pricing.Schedule) error
}

// MemoryStorage keeps the schedule in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	schedule pricing.Schedule
}

// NewMemoryStorage initialises storage with the default price schedule.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		schedule: pricing.DefaultSchedule(),
	}
}

// GetSchedule returns a copy of the current schedule.
func (s *MemoryStorage) GetSchedule() (pricing.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.schedule.Clone(), nil
}

// SetSchedule validates and stores a copy of schedule.
func (s *MemoryStorage) SetSchedule(schedule pricing.Schedule) error {
	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	cloned := schedule.Clone()

	s.mu.Lock()
	s.schedule = cloned
	s.mu.Unlock()

	return nil
}
