package restaurant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"foodifusion/internal/events"
	"foodifusion/internal/menu"
	"foodifusion/internal/order"
)

var (
	ErrInvalidInput      = errors.New("invalid restaurant details")
	ErrInvalidTransition = errors.New("order status change not allowed")
)

const recentOrders = 10

// StatusPublisher announces order status changes. Failures are logged only.
type StatusPublisher interface {
	OrderStatusChanged(ctx context.Context, evt events.OrderStatusChanged) error
}

type Service struct {
	repo      Repository
	orders    order.Book
	menu      menu.Editor
	publisher StatusPublisher
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	orders order.Book,
	menuEditor menu.Editor,
	publisher StatusPublisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		orders:    orders,
		menu:      menuEditor,
		publisher: publisher,
		logger:    logger,
	}
}

// --------------------------------------------------
// Profile
// --------------------------------------------------

func (s *Service) Register(ctx context.Context, ownerID string, p Profile) (*Restaurant, error) {
	p.normalize()
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	rest := &Restaurant{OwnerID: ownerID}
	rest.apply(p)
	if err := s.repo.Create(ctx, rest); err != nil {
		return nil, err
	}

	s.logger.Info("restaurant registered", "restaurant_id", rest.ID, "owner_id", ownerID)
	return rest, nil
}

func (s *Service) UpdateProfile(ctx context.Context, ownerID string, p Profile) (*Restaurant, error) {
	p.normalize()
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	rest, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	rest.apply(p)
	if err := s.repo.Update(ctx, rest); err != nil {
		return nil, err
	}
	return rest, nil
}

func (s *Service) Mine(ctx context.Context, ownerID string) (*Restaurant, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}

func (s *Service) List(ctx context.Context) ([]Restaurant, error) {
	return s.repo.List(ctx)
}

// --------------------------------------------------
// Orders
// --------------------------------------------------

func (s *Service) Dashboard(ctx context.Context, ownerID string) (*Dashboard, error) {
	rest, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats, err := s.orders.Stats(ctx, rest.ID)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	recent, err := s.orders.ListByRestaurant(ctx, rest.ID, "", recentOrders)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}

	return &Dashboard{Restaurant: rest, Stats: stats, Recent: recent}, nil
}

// Orders lists the restaurant's orders, optionally filtered by status.
func (s *Service) Orders(ctx context.Context, ownerID string, status order.Status, limit int) ([]order.Order, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	rest, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByRestaurant(ctx, rest.ID, status, limit)
}

// Order returns one of the restaurant's orders with its items.
func (s *Service) Order(ctx context.Context, ownerID string, orderID int64) (*order.Order, error) {
	rest, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.RestaurantID != rest.ID {
		return nil, order.ErrNotFound
	}
	return o, nil
}

// UpdateOrderStatus moves an order one step along its lifecycle.
func (s *Service) UpdateOrderStatus(ctx context.Context, ownerID string, orderID int64, to order.Status) (*order.Order, error) {
	o, err := s.Order(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if !from.CanBecome(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if err := s.orders.UpdateStatus(ctx, o.RestaurantID, o.ID, from, to); err != nil {
		return nil, err
	}
	o.Status = to

	s.logger.Info("order status changed",
		"order_id", o.ID,
		"restaurant_id", o.RestaurantID,
		"from", from,
		"to", to,
	)

	if err := s.publisher.OrderStatusChanged(ctx, events.OrderStatusChanged{
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		From:         string(from),
		To:           string(to),
		ChangedAt:    time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("order status event not published", "order_id", o.ID, "error", err)
	}

	return o, nil
}

// --------------------------------------------------
// Menu management
// --------------------------------------------------

func (s *Service) MenuItems(ctx context.Context, ownerID string) ([]menu.Item, error) {
	rest, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.menu.ListAll(ctx, rest.ID)
}

func (s *Service) AddMenuItem(ctx context.Context, ownerID string, it menu.Item) (*menu.Item, error) {
	rest, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := it.Validate(); err != nil {
		return nil, err
	}

	it.ID = 0
	it.RestaurantID = rest.ID
	if err := s.menu.CreateItem(ctx, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateMenuItem replaces an item's fields. Carts already holding the item
// keep their snapshot; placement revalidates against the new price.
func (s *Service) UpdateMenuItem(ctx context.Context, ownerID string, it menu.Item) (*menu.Item, error) {
	rest, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := it.Validate(); err != nil {
		return nil, err
	}

	it.RestaurantID = rest.ID
	if err := s.menu.UpdateItem(ctx, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Service) DeleteMenuItem(ctx context.Context, ownerID string, itemID int64) error {
	rest, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	return s.menu.DeleteItem(ctx, rest.ID, itemID)
}
