// Package repository defines the athlete store interface and an in-memory
// implementation.
package repository

import (
	"context"

	"github.com/okian/vero/internal/domain/model"
)

// Store provides read/write access to athletes. Implementations hand out
// copies so callers never share mutable state with the store.
type Store interface {
	// Save inserts or replaces an athlete. An empty ID is assigned one.
	// The stored copy is returned.
	Save(ctx context.Context, a model.Athlete) (model.Athlete, error)

	// Insert stores a new athlete. An empty ID is assigned one.
	// Returns ErrDuplicateID if an athlete with the same ID is already held;
	// the held athlete is left untouched.
	Insert(ctx context.Context, a model.Athlete) (model.Athlete, error)

	// Get returns the athlete with id.
	// Returns ErrNotFound if the athlete is unknown.
	Get(ctx context.Context, id string) (model.Athlete, error)

	// List returns all athletes ordered by name, then id.
	List(ctx context.Context) ([]model.Athlete, error)

	// Delete removes the athlete with id.
	// Returns ErrNotFound if the athlete is unknown.
	Delete(ctx context.Context, id string) error

	// Count returns the number of athletes held.
	Count(ctx context.Context) int
}
