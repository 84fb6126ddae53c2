package ranch

import (
	"context"
	"sync"

	"github.com/udisondev/ranch/internal/model"
)

// Store persists ranch populations. *db.ActorRepository implements it.
type Store interface {
	SaveActors(ctx context.Context, ranchID string, actors []*model.Actor) error
	LoadActors(ctx context.Context, ranchID string) ([]*model.Actor, error)
}

// MemoryStore keeps populations in memory. Used when persistence is off.
type MemoryStore struct {
	mu      sync.Mutex
	ranches map[string][]*model.Actor
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ranches: make(map[string][]*model.Actor)}
}

// SaveActors replaces the stored population of ranchID.
func (s *MemoryStore) SaveActors(_ context.Context, ranchID string, actors []*model.Actor) error {
	saved := make([]*model.Actor, len(actors))
	for i, a := range actors {
		saved[i] = a.Clone()
	}

	s.mu.Lock()
	s.ranches[ranchID] = saved
	s.mu.Unlock()
	return nil
}

// LoadActors returns copies of the stored population, nil when none.
func (s *MemoryStore) LoadActors(_ context.Context, ranchID string) ([]*model.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.ranches[ranchID]
	if saved == nil {
		return nil, nil
	}
	out := make([]*model.Actor, len(saved))
	for i, a := range saved {
		out[i] = a.Clone()
	}
	return out, nil
}
