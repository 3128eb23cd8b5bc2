package order

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("order not found")
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// Tx is the write side of one placement transaction.
type Tx interface {
	InsertOrder(ctx context.Context, o *Order) error
	InsertItem(ctx context.Context, it *Item) error
}

type Repository interface {
	// WithTx commits only if fn returns nil; otherwise nothing fn wrote is kept.
	WithTx(ctx context.Context, fn func(Tx) error) error
	Get(ctx context.Context, id int64) (*Order, error)
	RecordOrphan(ctx context.Context, o Orphan) error
}

// Book is the restaurant-facing side of the order store.
type Book interface {
	Get(ctx context.Context, id int64) (*Order, error)
	// ListByRestaurant returns newest first. An empty status means any.
	ListByRestaurant(ctx context.Context, restaurantID int64, status Status, limit int) ([]Order, error)
	// UpdateStatus is a compare-and-set: it fails with ErrStatusConflict when
	// the stored status is no longer from.
	UpdateStatus(ctx context.Context, restaurantID, id int64, from, to Status) error
	Stats(ctx context.Context, restaurantID int64) (Stats, error)
}
