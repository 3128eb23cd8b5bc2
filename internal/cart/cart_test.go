package cart

import (
	"errors"
	"testing"
)

func TestAdd_SameKeyMergesQuantity(t *testing.T) {
	c := &Cart{}

	c.Add(Line{ItemID: 1, UnitPrice: 2500, Quantity: 2, SpecialInstructions: "no onions"})
	c.Add(Line{ItemID: 1, UnitPrice: 2500, Quantity: 3, SpecialInstructions: "no onions"})

	if len(c.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(c.Lines))
	}
	if c.Lines[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", c.Lines[0].Quantity)
	}
}

func TestAdd_DifferentInstructionsAreDistinct(t *testing.T) {
	c := &Cart{}

	c.Add(Line{ItemID: 1, UnitPrice: 2500, Quantity: 1})
	c.Add(Line{ItemID: 1, UnitPrice: 2500, Quantity: 1, SpecialInstructions: "extra spicy"})

	if len(c.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(c.Lines))
	}
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	c := &Cart{}
	if err := c.Add(Line{ItemID: 1, UnitPrice: 100, Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if !c.IsEmpty() {
		t.Error("cart should stay empty")
	}
}

func TestSetQuantity(t *testing.T) {
	c := &Cart{}
	c.Add(Line{ItemID: 7, UnitPrice: 1500, Quantity: 1})
	key := Key{ItemID: 7}

	if err := c.SetQuantity(key, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Lines[0].Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", c.Lines[0].Quantity)
	}

	if err := c.SetQuantity(key, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsEmpty() {
		t.Error("quantity 0 should remove the line")
	}

	if err := c.SetQuantity(key, 2); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("expected ErrLineNotFound, got %v", err)
	}
	if err := c.SetQuantity(key, -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := &Cart{}
	c.Add(Line{ItemID: 1, UnitPrice: 100, Quantity: 1})
	c.Add(Line{ItemID: 2, UnitPrice: 200, Quantity: 1})

	if err := c.Remove(Key{ItemID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].ItemID != 2 {
		t.Fatalf("wrong line removed: %+v", c.Lines)
	}
	if err := c.Remove(Key{ItemID: 1}); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("expected ErrLineNotFound, got %v", err)
	}

	c.Clear()
	if !c.IsEmpty() {
		t.Error("clear should empty the cart")
	}
}

func TestTotal(t *testing.T) {
	c := &Cart{}
	c.Add(Line{ItemID: 1, UnitPrice: 2500, Quantity: 2})
	c.Add(Line{ItemID: 2, UnitPrice: 1500, Quantity: 1})

	if got := c.Total(); got != 6500 {
		t.Fatalf("expected total 6500, got %d", got)
	}

	var nilCart *Cart
	if nilCart.Total() != 0 || !nilCart.IsEmpty() {
		t.Error("nil cart should be empty with zero total")
	}
}

func TestAdd_UpperBound(t *testing.T) {
	c := &Cart{}

	if err := c.Add(Line{ItemID: 1, UnitPrice: 2500, Quantity: MaxQuantity + 1}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := c.Add(Line{ItemID: 1, UnitPrice: 2500, Quantity: 4_000_000_000_000_000}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for a huge quantity, got %v", err)
	}
	if !c.IsEmpty() {
		t.Errorf("rejected lines must not be stored, got %+v", c.Lines)
	}
}

func TestAdd_MergeCannotExceedMax(t *testing.T) {
	c := &Cart{}

	if err := c.Add(Line{ItemID: 1, UnitPrice: 2500, Quantity: MaxQuantity}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Add(Line{ItemID: 1, UnitPrice: 2500, Quantity: 1}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity on merge, got %v", err)
	}
	if c.Lines[0].Quantity != MaxQuantity {
		t.Errorf("quantity should stay %d, got %d", MaxQuantity, c.Lines[0].Quantity)
	}
	if c.Total() != 2500*MaxQuantity {
		t.Errorf("unexpected total %d", c.Total())
	}
}

func TestSetQuantity_UpperBound(t *testing.T) {
	c := &Cart{}
	c.Add(Line{ItemID: 7, UnitPrice: 1500, Quantity: 1})

	if err := c.SetQuantity(Key{ItemID: 7}, MaxQuantity+1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if c.Lines[0].Quantity != 1 {
		t.Errorf("quantity should be unchanged, got %d", c.Lines[0].Quantity)
	}
}

func TestDeduct_KeepsLinesAddedLater(t *testing.T) {
	c := &Cart{}
	c.Add(Line{ItemID: 1, UnitPrice: 2500, Quantity: 2})
	ordered := append([]Line(nil), c.Lines...)

	c.Add(Line{ItemID: 1, UnitPrice: 2500, Quantity: 1})
	c.Add(Line{ItemID: 2, UnitPrice: 1500, Quantity: 1})

	c.Deduct(ordered)

	if len(c.Lines) != 2 {
		t.Fatalf("expected 2 lines left, got %+v", c.Lines)
	}
	if c.Lines[0].ItemID != 1 || c.Lines[0].Quantity != 1 {
		t.Errorf("expected one Ndole left, got %+v", c.Lines[0])
	}
	if c.Lines[1].ItemID != 2 {
		t.Errorf("expected the later line to survive, got %+v", c.Lines[1])
	}

	c.Deduct(c.Lines)
	if !c.IsEmpty() {
		t.Errorf("deducting everything should empty the cart, got %+v", c.Lines)
	}
}
