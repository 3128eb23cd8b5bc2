package order

import "time"

type Status string

const (
	StatusPending   Status = "Pending"
	StatusPreparing Status = "Preparing"
	StatusReady     Status = "Ready"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanBecome reports whether a restaurant may move an order from s to next.
// Delivered and Cancelled are final.
func (s Status) CanBecome(next Status) bool {
	for _, st := range transitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

// Open orders still need work from the kitchen.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusPreparing
}

type Order struct {
	ID                    int64     `json:"id"`
	CustomerID            string    `json:"customer_id"`
	RestaurantID          int64     `json:"restaurant_id"`
	TotalAmount           int64     `json:"total_amount"`
	Status                Status    `json:"status"`
	SpecialInstructions   string    `json:"special_instructions"`
	PaymentScreenshotPath string    `json:"-"`
	CreatedAt             time.Time `json:"created_at"`
	Items                 []Item    `json:"items,omitempty"`
}

// Item is one ordered line. Price is the unit price at placement time and is
// never recomputed.
type Item struct {
	ID                  int64  `json:"id"`
	OrderID             int64  `json:"order_id"`
	MenuItemID          int64  `json:"menu_item_id"`
	Name                string `json:"name,omitempty"`
	Quantity            int    `json:"quantity"`
	Price               int64  `json:"price"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

func (it Item) Subtotal() int64 {
	return it.Price * int64(it.Quantity)
}

// Orphan is relocated payment evidence whose order never committed.
type Orphan struct {
	CustomerID   string
	RestaurantID int64
	EvidenceRef  string
	Reason       string
}

// Stats summarises a restaurant's orders. Cancelled orders count toward
// Orders but not Revenue.
type Stats struct {
	Orders       int64 `json:"orders"`
	Revenue      int64 `json:"revenue"`
	AverageOrder int64 `json:"average_order"`
	Open         int64 `json:"open"`
}
