package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// FileRemover disposes of temp files left behind by a session.
type FileRemover interface {
	Remove(path string) error
}

// Manager owns the session lifecycle: creation at login, liveness checks on
// every request, and cleanup at logout or expiry.
type Manager struct {
	store  Store
	files  FileRemover
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(store Store, files FileRemover, ttl time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		files:  files,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func (m *Manager) Store() Store {
	return m.store
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Start(ctx context.Context, userID, userType string) (*Session, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserType:  userType,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate returns the live session for id. Expired sessions are ended on
// the spot.
func (m *Manager) Validate(ctx context.Context, id string) (*Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		if err := m.End(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			m.logger.Warn("failed to end expired session", "session_id", id, "error", err)
		}
		return nil, ErrExpired
	}
	return s, nil
}

// End destroys the session and deletes an unconsumed verified screenshot.
// The slot is cleared before the file goes, so no record outlives its file.
func (m *Manager) End(ctx context.Context, id string) error {
	pending, err := m.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if pending != nil {
		if err := m.files.Remove(pending.TempPath); err != nil {
			m.logger.Warn("failed to remove pending payment screenshot",
				"session_id", id, "path", pending.TempPath, "error", err)
		}
	}
	return nil
}

// SweepExpired ends every session past its expiry and returns how many
// were removed.
func (m *Manager) SweepExpired(ctx context.Context) (int, error) {
	ids, err := m.store.ListExpired(ctx, m.now())
	if err != nil {
		return 0, err
	}

	ended := 0
	for _, id := range ids {
		if err := m.End(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			m.logger.Error("failed to end expired session", "session_id", id, "error", err)
			continue
		}
		ended++
	}
	return ended, nil
}
