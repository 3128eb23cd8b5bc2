package menu

import (
	"context"
	"sort"
	"sync"
)

type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]Item
}

func NewInMemoryRepository(items ...Item) *InMemoryRepository {
	r := &InMemoryRepository{items: make(map[int64]Item)}
	for _, it := range items {
		r.Put(it)
	}
	return r
}

// Put adds or replaces an item.
func (r *InMemoryRepository) Put(it Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID] = it
	if it.ID > r.nextID {
		r.nextID = it.ID
	}
}

func (r *InMemoryRepository) GetItem(_ context.Context, restaurantID, itemID int64) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[itemID]
	if !ok || it.RestaurantID != restaurantID {
		return nil, ErrItemNotFound
	}
	return &it, nil
}

func (r *InMemoryRepository) ListAvailable(_ context.Context, restaurantID int64) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Item
	for _, it := range r.items {
		if it.RestaurantID == restaurantID && it.Available {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) ListAll(_ context.Context, restaurantID int64) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Item
	for _, it := range r.items {
		if it.RestaurantID == restaurantID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) CreateItem(_ context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	it.ID = r.nextID
	r.items[it.ID] = *it
	return nil
}

func (r *InMemoryRepository) UpdateItem(_ context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[it.ID]
	if !ok || cur.RestaurantID != it.RestaurantID {
		return ErrItemNotFound
	}
	r.items[it.ID] = *it
	return nil
}

func (r *InMemoryRepository) DeleteItem(_ context.Context, restaurantID, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[itemID]
	if !ok || cur.RestaurantID != restaurantID {
		return ErrItemNotFound
	}
	delete(r.items, itemID)
	return nil
}
