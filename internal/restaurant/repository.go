package restaurant

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("restaurant not found")
	ErrAlreadyRegistered = errors.New("owner already has a restaurant")
)

type Repository interface {
	// Create fails with ErrAlreadyRegistered if the owner has a restaurant.
	Create(ctx context.Context, r *Restaurant) error
	Update(ctx context.Context, r *Restaurant) error
	FindByOwner(ctx context.Context, ownerID string) (*Restaurant, error)
	List(ctx context.Context) ([]Restaurant, error)
}
