package session

import (
	"context"
	"sync"
	"time"

	"foodifusion/internal/cart"
	"foodifusion/internal/storage"
)

type entry struct {
	session  Session
	cart     cart.Cart
	verified *storage.Artifact
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*entry)}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &entry{session: *s}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s := e.session
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) (*storage.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.sessions, id)
	return e.verified, nil
}

func (m *MemoryStore) ListExpired(_ context.Context, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, e := range m.sessions {
		if e.session.Expired(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MemoryStore) Cart(_ context.Context, id string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCart(&e.cart), nil
}

func (m *MemoryStore) UpdateCart(_ context.Context, id string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	working := copyCart(&e.cart)
	if err := fn(working); err != nil {
		return nil, err
	}
	e.cart = *working
	return copyCart(working), nil
}

func (m *MemoryStore) SwapVerification(_ context.Context, id string, a *storage.Artifact) (*storage.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	prev := e.verified
	cp := *a
	e.verified = &cp
	return prev, nil
}

func (m *MemoryStore) PeekVerification(_ context.Context, id string) (*storage.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if e.verified == nil {
		return nil, nil
	}
	cp := *e.verified
	return &cp, nil
}

func (m *MemoryStore) ConsumeVerification(_ context.Context, id string) (*storage.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok || e.verified == nil {
		return nil, ErrNotVerified
	}
	a := e.verified
	e.verified = nil
	return a, nil
}

func (m *MemoryStore) RestoreVerification(_ context.Context, id string, a *storage.Artifact) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return false, ErrNotFound
	}
	if e.verified != nil {
		return false, nil
	}
	cp := *a
	e.verified = &cp
	return true, nil
}

func copyCart(c *cart.Cart) *cart.Cart {
	out := &cart.Cart{}
	if len(c.Lines) > 0 {
		out.Lines = append([]cart.Line(nil), c.Lines...)
	}
	return out
}
