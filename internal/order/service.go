package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"foodifusion/internal/cart"
	"foodifusion/internal/events"
	"foodifusion/internal/menu"
	"foodifusion/internal/metrics"
	"foodifusion/internal/session"
	"foodifusion/internal/storage"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrPaymentNotVerified = errors.New("payment has not been verified")
	ErrItemUnavailable    = errors.New("item is no longer available")
	ErrStorage            = errors.New("order could not be stored")
)

// Payments is the verified-payment slot of a session.
type Payments interface {
	Peek(ctx context.Context, sessionID string) (*storage.Artifact, error)
	Consume(ctx context.Context, sessionID string) (*storage.Artifact, error)
	Restore(ctx context.Context, sessionID string, a *storage.Artifact) bool
}

// defaultPublishTimeout bounds the event publish after commit.
const defaultPublishTimeout = 5 * time.Second

type Publisher interface {
	OrderPlaced(ctx context.Context, evt events.OrderPlaced) error
}

type PlaceRequest struct {
	SessionID    string
	CustomerID   string
	RestaurantID int64
	Instructions string
}

type Service struct {
	repo        Repository
	menu        menu.Repository
	carts       cart.Store
	payments    Payments
	evidence    storage.EvidenceStore
	publisher   Publisher
	deliveryFee int64
	metrics     *metrics.Metrics
	logger      *slog.Logger

	publishTimeout time.Duration
}

func NewService(
	repo Repository,
	menuRepo menu.Repository,
	carts cart.Store,
	payments Payments,
	evidence storage.EvidenceStore,
	publisher Publisher,
	deliveryFee int64,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		menu:        menuRepo,
		carts:       carts,
		payments:    payments,
		evidence:    evidence,
		publisher:   publisher,
		deliveryFee: deliveryFee,
		metrics:     m,
		logger:      logger,

		publishTimeout: defaultPublishTimeout,
	}
}

// PlaceOrder turns the session's cart into a Pending order paid for by the
// session's verified screenshot. On any error the cart is left as it was.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceRequest) (*Order, error) {
	o, err := s.placeOrder(ctx, req)
	if err != nil {
		s.metrics.OrdersFailed.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	s.metrics.OrdersPlaced.Inc()
	return o, nil
}

func (s *Service) placeOrder(ctx context.Context, req PlaceRequest) (*Order, error) {
	c, err := s.carts.Cart(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	pending, err := s.payments.Peek(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("check payment: %w", err)
	}
	if pending == nil {
		return nil, ErrPaymentNotVerified
	}

	// ---- Price lines from the current menu ----
	items := make([]Item, 0, len(c.Lines))
	var subtotal int64
	for _, line := range c.Lines {
		if !cart.ValidQuantity(line.Quantity) {
			return nil, fmt.Errorf("%w: %s", cart.ErrInvalidQuantity, displayName(line))
		}
		mi, err := s.menu.GetItem(ctx, req.RestaurantID, line.ItemID)
		if err != nil {
			if errors.Is(err, menu.ErrItemNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, displayName(line))
			}
			return nil, fmt.Errorf("lookup menu item %d: %w", line.ItemID, err)
		}
		if !mi.Available {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, mi.Name)
		}

		it := Item{
			MenuItemID:          mi.ID,
			Name:                mi.Name,
			Quantity:            line.Quantity,
			Price:               mi.Price,
			SpecialInstructions: line.SpecialInstructions,
		}
		subtotal += it.Subtotal()
		items = append(items, it)
	}
	total := subtotal + s.deliveryFee

	// ---- Claim the payment ----
	artifact, err := s.payments.Consume(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotVerified) {
			return nil, ErrPaymentNotVerified
		}
		return nil, fmt.Errorf("consume payment: %w", err)
	}

	// Past this point client cancellation no longer aborts placement.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	ref, err := s.evidence.Relocate(ctx, artifact)
	if err != nil {
		restored := s.payments.Restore(ctx, req.SessionID, artifact)
		s.logger.Error("failed to relocate payment screenshot",
			"session_id", req.SessionID,
			"file", artifact.TempPath,
			"restored", restored,
			"error", err,
		)
		return nil, fmt.Errorf("%w: relocate evidence: %v", ErrStorage, err)
	}

	o := &Order{
		CustomerID:            req.CustomerID,
		RestaurantID:          req.RestaurantID,
		TotalAmount:           total,
		Status:                StatusPending,
		SpecialInstructions:   req.Instructions,
		PaymentScreenshotPath: ref,
	}

	err = s.repo.WithTx(ctx, func(tx Tx) error {
		if err := tx.InsertOrder(ctx, o); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i := range items {
			items[i].OrderID = o.ID
			if err := tx.InsertItem(ctx, &items[i]); err != nil {
				return fmt.Errorf("insert order item %d: %w", items[i].MenuItemID, err)
			}
		}
		return nil
	})
	if err != nil {
		s.recordOrphan(ctx, req, ref, err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	o.Items = items

	ordered := c.Lines
	if _, err := s.carts.UpdateCart(ctx, req.SessionID, func(stored *cart.Cart) error {
		stored.Deduct(ordered)
		return nil
	}); err != nil {
		s.logger.Warn("order placed but cart not cleared", "order_id", o.ID, "session_id", req.SessionID, "error", err)
	}

	s.logger.Info("order placed",
		"order_id", o.ID,
		"customer_id", o.CustomerID,
		"restaurant_id", o.RestaurantID,
		"total", o.TotalAmount,
	)

	pubCtx, pubCancel := context.WithTimeout(ctx, s.publishTimeout)
	defer pubCancel()
	if err := s.publisher.OrderPlaced(pubCtx, events.OrderPlaced{
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		TotalAmount:  o.TotalAmount,
		ItemCount:    len(o.Items),
		PlacedAt:     o.CreatedAt,
	}); err != nil {
		s.logger.Warn("failed to publish order event", "order_id", o.ID, "error", err)
	}

	return o, nil
}

// Get returns the order only to the customer who placed it.
func (s *Service) Get(ctx context.Context, id int64, customerID string) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, ErrNotFound
	}
	return o, nil
}

// recordOrphan is called after the screenshot has been moved to permanent
// storage but the order did not commit. The file is not moved back.
func (s *Service) recordOrphan(ctx context.Context, req PlaceRequest, ref string, cause error) {
	s.metrics.EvidenceOrphan.Inc()
	s.logger.Error("order transaction failed, payment evidence orphaned",
		"session_id", req.SessionID,
		"customer_id", req.CustomerID,
		"restaurant_id", req.RestaurantID,
		"evidence", ref,
		"error", cause,
	)

	if err := s.repo.RecordOrphan(ctx, Orphan{
		CustomerID:   req.CustomerID,
		RestaurantID: req.RestaurantID,
		EvidenceRef:  ref,
		Reason:       cause.Error(),
	}); err != nil {
		s.logger.Error("failed to record orphaned evidence", "evidence", ref, "error", err)
	}
}

func displayName(l cart.Line) string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("item %d", l.ItemID)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrPaymentNotVerified):
		return "not_verified"
	case errors.Is(err, ErrItemUnavailable):
		return "item_unavailable"
	case errors.Is(err, cart.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrStorage):
		return "storage"
	default:
		return "internal"
	}
}
