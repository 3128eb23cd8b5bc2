package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

type InMemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	itemSeq int64
	orders  map[int64]*Order
	orphans []Orphan
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{orders: make(map[int64]*Order)}
}

type memTx struct {
	repo   *InMemoryRepository
	orders []*Order
	items  []*Item
}

// WithTx stages writes and applies them under the lock only when fn succeeds.
func (r *InMemoryRepository) WithTx(ctx context.Context, fn func(Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memTx{repo: r}
	if err := fn(tx); err != nil {
		return err
	}

	for _, o := range tx.orders {
		r.orders[o.ID] = o
		if o.ID >= r.nextID {
			r.nextID = o.ID
		}
	}
	r.itemSeq += int64(len(tx.items))
	for _, it := range tx.items {
		o := r.orders[it.OrderID]
		if o != nil {
			o.Items = append(o.Items, *it)
		}
	}
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, o *Order) error {
	o.ID = t.repo.nextID + int64(len(t.orders)) + 1
	o.CreatedAt = time.Now()
	stored := *o
	stored.Items = nil
	t.orders = append(t.orders, &stored)
	return nil
}

func (t *memTx) InsertItem(_ context.Context, it *Item) error {
	it.ID = t.repo.itemSeq + int64(len(t.items)) + 1
	stored := *it
	t.items = append(t.items, &stored)
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp, nil
}

func (r *InMemoryRepository) RecordOrphan(_ context.Context, o Orphan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orphans = append(r.orphans, o)
	return nil
}

func (r *InMemoryRepository) ListByRestaurant(_ context.Context, restaurantID int64, status Status, limit int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Order
	for _, o := range r.orders {
		if o.RestaurantID != restaurantID || (status != "" && o.Status != status) {
			continue
		}
		cp := *o
		cp.Items = append([]Item(nil), o.Items...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, restaurantID, id int64, from, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok || o.RestaurantID != restaurantID {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrStatusConflict
	}
	o.Status = to
	return nil
}

func (r *InMemoryRepository) Stats(_ context.Context, restaurantID int64) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var st Stats
	var paid int64
	for _, o := range r.orders {
		if o.RestaurantID != restaurantID {
			continue
		}
		st.Orders++
		if o.Status.Open() {
			st.Open++
		}
		if o.Status != StatusCancelled {
			st.Revenue += o.TotalAmount
			paid++
		}
	}
	if paid > 0 {
		st.AverageOrder = st.Revenue / paid
	}
	return st, nil
}

// Count is the number of committed orders.
func (r *InMemoryRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *InMemoryRepository) Orphans() []Orphan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Orphan(nil), r.orphans...)
}
