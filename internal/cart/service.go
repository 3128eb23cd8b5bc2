package cart

import (
	"context"
	"errors"
	"fmt"

	"foodifusion/internal/menu"
)

var ErrItemUnavailable = errors.New("menu item is not available")

// Store is the per-session cart storage.
type Store interface {
	Cart(ctx context.Context, sessionID string) (*Cart, error)
	UpdateCart(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error)
}

type Service struct {
	store       Store
	menu        menu.Repository
	deliveryFee int64
}

func NewService(store Store, menuRepo menu.Repository, deliveryFee int64) *Service {
	return &Service{store: store, menu: menuRepo, deliveryFee: deliveryFee}
}

// View is the cart as shown to the customer.
type View struct {
	Lines       []Line `json:"lines"`
	Subtotal    int64  `json:"subtotal"`
	DeliveryFee int64  `json:"delivery_fee"`
	Total       int64  `json:"total"`
}

// NewView totals c. An empty cart carries no delivery fee.
func NewView(c *Cart, deliveryFee int64) View {
	v := View{Lines: []Line{}}
	if c.IsEmpty() {
		return v
	}
	v.Lines = c.Lines
	v.Subtotal = c.Total()
	v.DeliveryFee = deliveryFee
	v.Total = v.Subtotal + deliveryFee
	return v
}

func (s *Service) View(ctx context.Context, sessionID string) (View, error) {
	c, err := s.store.Cart(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return NewView(c, s.deliveryFee), nil
}

// AddItem snapshots the item's current name and price into the cart.
func (s *Service) AddItem(ctx context.Context, sessionID string, restaurantID, itemID int64, quantity int, instructions string) (View, error) {
	item, err := s.menu.GetItem(ctx, restaurantID, itemID)
	if err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			return View{}, ErrItemUnavailable
		}
		return View{}, fmt.Errorf("lookup menu item: %w", err)
	}
	if !item.Available {
		return View{}, ErrItemUnavailable
	}

	c, err := s.store.UpdateCart(ctx, sessionID, func(c *Cart) error {
		return c.Add(Line{
			ItemID:              item.ID,
			Name:                item.Name,
			UnitPrice:           item.Price,
			Quantity:            quantity,
			SpecialInstructions: instructions,
		})
	})
	if err != nil {
		return View{}, err
	}
	return NewView(c, s.deliveryFee), nil
}

func (s *Service) SetQuantity(ctx context.Context, sessionID string, key Key, quantity int) (View, error) {
	c, err := s.store.UpdateCart(ctx, sessionID, func(c *Cart) error {
		return c.SetQuantity(key, quantity)
	})
	if err != nil {
		return View{}, err
	}
	return NewView(c, s.deliveryFee), nil
}

func (s *Service) Remove(ctx context.Context, sessionID string, key Key) (View, error) {
	c, err := s.store.UpdateCart(ctx, sessionID, func(c *Cart) error {
		return c.Remove(key)
	})
	if err != nil {
		return View{}, err
	}
	return NewView(c, s.deliveryFee), nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	_, err := s.store.UpdateCart(ctx, sessionID, func(c *Cart) error {
		c.Clear()
		return nil
	})
	return err
}
