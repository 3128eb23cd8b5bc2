package restaurant

import (
	"context"
	"sort"
	"sync"
	"time"
)

type InMemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byOwner map[string]*Restaurant
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byOwner: make(map[string]*Restaurant)}
}

func (r *InMemoryRepository) Create(_ context.Context, rest *Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byOwner[rest.OwnerID]; ok {
		return ErrAlreadyRegistered
	}
	r.nextID++
	rest.ID = r.nextID
	rest.CreatedAt = time.Now()

	cp := *rest
	r.byOwner[rest.OwnerID] = &cp
	return nil
}

func (r *InMemoryRepository) Update(_ context.Context, rest *Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byOwner[rest.OwnerID]
	if !ok || cur.ID != rest.ID {
		return ErrNotFound
	}
	cp := *rest
	r.byOwner[rest.OwnerID] = &cp
	return nil
}

func (r *InMemoryRepository) FindByOwner(_ context.Context, ownerID string) (*Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rest, ok := r.byOwner[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rest
	return &cp, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Restaurant, 0, len(r.byOwner))
	for _, rest := range r.byOwner {
		out = append(out, *rest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
