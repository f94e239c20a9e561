package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/critmon/pulsecheck/internal/models"
)

// MemoryStore is an in-memory MonitorStore. It backs tests and the
// single-node development mode; all operations run under one lock, which
// gives the same atomic-update guarantee the SQL store gets from per-row
// statements.
type MemoryStore struct {
	mu       sync.RWMutex
	monitors map[string]models.Monitor
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{monitors: make(map[string]models.Monitor)}
}

func (s *MemoryStore) Create(_ context.Context, m *models.Monitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitors[m.ID] = *m
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*models.Monitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.monitors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) FindByDeviceID(_ context.Context, deviceID string) ([]models.Monitor, error) {
	return s.filter(func(m models.Monitor) bool { return m.DeviceID == deviceID }), nil
}

func (s *MemoryStore) FindActive(_ context.Context) ([]models.Monitor, error) {
	return s.filter(func(m models.Monitor) bool { return m.IsActive }), nil
}

func (s *MemoryStore) FindExpired(_ context.Context, now time.Time) ([]models.Monitor, error) {
	return s.filter(func(m models.Monitor) bool { return m.IsExpired(now) }), nil
}

func (s *MemoryStore) Update(_ context.Context, m *models.Monitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.monitors[m.ID]; !ok {
		return ErrNotFound
	}
	s.monitors[m.ID] = *m
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.monitors[id]; !ok {
		return ErrNotFound
	}
	delete(s.monitors, id)
	return nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]models.Monitor, error) {
	return s.filter(func(models.Monitor) bool { return true }), nil
}

// filter returns a consistent snapshot of all monitors matching pred,
// ordered by creation time.
func (s *MemoryStore) filter(pred func(models.Monitor) bool) []models.Monitor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := []models.Monitor{}
	for _, m := range s.monitors {
		if pred(m) {
			matched = append(matched, m)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched
}
