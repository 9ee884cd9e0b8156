package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/vero/internal/domain/model"
	"github.com/okian/vero/pkg/metrics"
)

// InMemoryStore is a map-backed Store. It is safe for concurrent use.
type InMemoryStore struct {
	mu       sync.RWMutex
	athletes map[string]model.Athlete
	newID    func() string
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		athletes: make(map[string]model.Athlete),
		newID:    uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Save implements Store.
func (s *InMemoryStore) Save(ctx context.Context, a model.Athlete) (model.Athlete, error) {
	return s.put(ctx, a, true)
}

// Insert implements Store.
func (s *InMemoryStore) Insert(ctx context.Context, a model.Athlete) (model.Athlete, error) {
	return s.put(ctx, a, false)
}

func (s *InMemoryStore) put(ctx context.Context, a model.Athlete, replace bool) (model.Athlete, error) {
	if err := ctx.Err(); err != nil {
		return model.Athlete{}, err
	}
	if strings.TrimSpace(a.Name) == "" {
		metrics.RecordError("repository", "invalid_athlete")
		return model.Athlete{}, fmt.Errorf("%w: name is required", ErrInvalidAthlete)
	}

	stored := a.Clone()
	if stored.ID == "" {
		stored.ID = s.newID()
	}

	// The existence check and the write share one critical section.
	s.mu.Lock()
	if _, exists := s.athletes[stored.ID]; exists && !replace {
		s.mu.Unlock()
		metrics.RecordError("repository", "duplicate_id")
		return model.Athlete{}, fmt.Errorf("%w: %s", ErrDuplicateID, stored.ID)
	}
	s.athletes[stored.ID] = stored
	n := len(s.athletes)
	s.mu.Unlock()

	metrics.UpdateRosterAthletes(n)
	return stored.Clone(), nil
}

// Get implements Store.
func (s *InMemoryStore) Get(ctx context.Context, id string) (model.Athlete, error) {
	if err := ctx.Err(); err != nil {
		return model.Athlete{}, err
	}

	s.mu.RLock()
	a, ok := s.athletes[id]
	s.mu.RUnlock()

	if !ok {
		metrics.RecordError("repository", "not_found")
		return model.Athlete{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a.Clone(), nil
}

// List implements Store.
func (s *InMemoryStore) List(ctx context.Context) ([]model.Athlete, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]model.Athlete, 0, len(s.athletes))
	for _, a := range s.athletes {
		out = append(out, a.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.Athlete) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Delete implements Store.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	_, ok := s.athletes[id]
	delete(s.athletes, id)
	n := len(s.athletes)
	s.mu.Unlock()

	if !ok {
		metrics.RecordError("repository", "not_found")
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	metrics.UpdateRosterAthletes(n)
	return nil
}

// Count implements Store.
func (s *InMemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.athletes)
}
