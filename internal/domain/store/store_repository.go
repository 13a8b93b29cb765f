package store

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for store persistence
type Repository interface {
	// Create creates a new store
	Create(ctx context.Context, s *Store) error

	// Update updates an existing store
	Update(ctx context.Context, s *Store) error

	// FindByID finds a store by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)

	// FindByHost finds the store answering on the given host name
	FindByHost(ctx context.Context, host string) (*Store, error)

	// FindAll returns all stores ordered by display order
	FindAll(ctx context.Context) ([]*Store, error)
}
