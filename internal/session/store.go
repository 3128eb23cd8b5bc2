package session

import (
	"context"
	"errors"
	"time"

	"foodifusion/internal/cart"
	"foodifusion/internal/storage"
)

var (
	ErrNotFound    = errors.New("session not found")
	ErrExpired     = errors.New("session expired")
	ErrNotVerified = errors.New("no verified payment for session")
	ErrBusy        = errors.New("session store contention, retry")
)

// Session is the server-side half of an authenticated login.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserType  string    `json:"user_type"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store holds everything scoped to one session: its metadata, the cart and
// the single verified-payment slot. Every mutation is atomic per session.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// Delete removes the session and returns any unconsumed verified artifact
	// so the caller can dispose of its file.
	Delete(ctx context.Context, id string) (*storage.Artifact, error)
	ListExpired(ctx context.Context, now time.Time) ([]string, error)

	Cart(ctx context.Context, id string) (*cart.Cart, error)
	UpdateCart(ctx context.Context, id string, fn func(*cart.Cart) error) (*cart.Cart, error)

	// SwapVerification stores a and returns the artifact it replaced, if any.
	SwapVerification(ctx context.Context, id string, a *storage.Artifact) (*storage.Artifact, error)
	// PeekVerification returns nil when the slot is empty.
	PeekVerification(ctx context.Context, id string) (*storage.Artifact, error)
	// ConsumeVerification empties the slot. Exactly one concurrent caller wins;
	// the others get ErrNotVerified.
	ConsumeVerification(ctx context.Context, id string) (*storage.Artifact, error)
	// RestoreVerification puts a back only if the slot is still empty.
	RestoreVerification(ctx context.Context, id string, a *storage.Artifact) (bool, error)
}
