package cart

import "errors"

// MaxQuantity bounds a single line, merged quantities included.
const MaxQuantity = 99

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrLineNotFound    = errors.New("cart line not found")
)

// Key identifies a cart line. The same item with different instructions
// is a different line.
type Key struct {
	ItemID              int64  `json:"item_id"`
	SpecialInstructions string `json:"special_instructions"`
}

type Line struct {
	ItemID              int64  `json:"item_id"`
	Name                string `json:"name"`
	UnitPrice           int64  `json:"unit_price"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

func (l Line) Key() Key {
	return Key{ItemID: l.ItemID, SpecialInstructions: l.SpecialInstructions}
}

func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Cart is the line-item list owned by one session.
type Cart struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// Add merges into an existing line with the same key, otherwise appends.
func (c *Cart) Add(line Line) error {
	if !ValidQuantity(line.Quantity) {
		return ErrInvalidQuantity
	}

	if i := c.index(line.Key()); i >= 0 {
		merged := c.Lines[i].Quantity + line.Quantity
		if merged > MaxQuantity {
			return ErrInvalidQuantity
		}
		c.Lines[i].Quantity = merged
		return nil
	}

	c.Lines = append(c.Lines, line)
	return nil
}

// SetQuantity overwrites a line's quantity. Zero removes the line.
func (c *Cart) SetQuantity(key Key, quantity int) error {
	if quantity < 0 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		return c.Remove(key)
	}

	i := c.index(key)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines[i].Quantity = quantity
	return nil
}

func (c *Cart) Remove(key Key) error {
	i := c.index(key)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// Deduct takes ordered lines out of the cart. Quantities added to a line
// after the snapshot was taken stay behind, as do lines the snapshot lacks.
func (c *Cart) Deduct(ordered []Line) {
	kept := make([]Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		for _, o := range ordered {
			if o.Key() == l.Key() {
				l.Quantity -= o.Quantity
			}
		}
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	c.Lines = kept
}

func ValidQuantity(q int) bool {
	return q >= 1 && q <= MaxQuantity
}

// Total is the sum of line subtotals. Delivery fees are added by the caller.
func (c *Cart) Total() int64 {
	if c == nil {
		return 0
	}
	var total int64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

func (c *Cart) index(key Key) int {
	for i, l := range c.Lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}
