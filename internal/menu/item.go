package menu

import (
	"fmt"
	"strings"
)

// Item is a menu item as the ordering flow sees it. Price is in the smallest
// currency unit.
type Item struct {
	ID           int64  `json:"id"`
	RestaurantID int64  `json:"restaurant_id"`
	Category     string `json:"category"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        int64  `json:"price"`
	Available    bool   `json:"is_available"`
}

// Validate checks the fields an owner supplies when creating or editing.
func (it *Item) Validate() error {
	it.Name = strings.TrimSpace(it.Name)
	it.Category = strings.TrimSpace(it.Category)
	it.Description = strings.TrimSpace(it.Description)

	switch {
	case it.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	case len(it.Name) > 100:
		return fmt.Errorf("%w: name is longer than 100 characters", ErrInvalidItem)
	case it.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrInvalidItem)
	case len(it.Category) > 50:
		return fmt.Errorf("%w: category is longer than 50 characters", ErrInvalidItem)
	}
	return nil
}
