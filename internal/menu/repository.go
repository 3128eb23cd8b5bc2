package menu

import (
	"context"
	"errors"
)

var (
	ErrItemNotFound = errors.New("menu item not found")
	ErrInvalidItem  = errors.New("invalid menu item")
)

// Repository is the customer-facing read side.
type Repository interface {
	// GetItem returns the item only if it belongs to restaurantID.
	GetItem(ctx context.Context, restaurantID, itemID int64) (*Item, error)
	ListAvailable(ctx context.Context, restaurantID int64) ([]Item, error)
}

// Editor is the owner-facing write side. Calls are scoped to it.RestaurantID;
// an item belonging to another restaurant reads as ErrItemNotFound.
type Editor interface {
	ListAll(ctx context.Context, restaurantID int64) ([]Item, error)
	CreateItem(ctx context.Context, it *Item) error
	UpdateItem(ctx context.Context, it *Item) error
	// DeleteItem retires an item. Items already referenced by orders are
	// marked unavailable instead of removed.
	DeleteItem(ctx context.Context, restaurantID, itemID int64) error
}
