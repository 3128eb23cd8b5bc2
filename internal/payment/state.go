package payment

import (
	"context"
	"errors"
	"log/slog"

	"foodifusion/internal/session"
	"foodifusion/internal/storage"
)

// State is the per-session verified-payment slot. It keeps the slot and the
// temp files in step: a record never points at a deleted file.
type State struct {
	store  session.Store
	files  TempFiles
	logger *slog.Logger
}

func NewState(store session.Store, files TempFiles, logger *slog.Logger) *State {
	return &State{store: store, files: files, logger: logger}
}

// Record stores a as the session's verified payment, superseding any
// earlier one.
func (s *State) Record(ctx context.Context, sessionID string, a *storage.Artifact) error {
	return s.Supersede(ctx, sessionID, a)
}

// Supersede swaps a into the slot and only then deletes the file the old
// record pointed at.
func (s *State) Supersede(ctx context.Context, sessionID string, a *storage.Artifact) error {
	prev, err := s.store.SwapVerification(ctx, sessionID, a)
	if err != nil {
		s.remove(a.TempPath)
		return err
	}
	if prev != nil && prev.TempPath != a.TempPath {
		s.remove(prev.TempPath)
	}
	return nil
}

func (s *State) Peek(ctx context.Context, sessionID string) (*storage.Artifact, error) {
	return s.store.PeekVerification(ctx, sessionID)
}

// Consume takes the record out of the slot. Concurrent callers for the same
// session see exactly one success; the rest get session.ErrNotVerified.
func (s *State) Consume(ctx context.Context, sessionID string) (*storage.Artifact, error) {
	return s.store.ConsumeVerification(ctx, sessionID)
}

// Restore puts a consumed record back after a failed relocation. If the file
// is gone or the slot has been refilled meanwhile, the file is discarded.
func (s *State) Restore(ctx context.Context, sessionID string, a *storage.Artifact) bool {
	if !s.files.Exists(a.TempPath) {
		return false
	}

	ok, err := s.store.RestoreVerification(ctx, sessionID, a)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		s.logger.Error("failed to restore verification record", "session_id", sessionID, "error", err)
	}
	if !ok {
		s.remove(a.TempPath)
	}
	return ok
}

func (s *State) remove(path string) {
	if err := s.files.Remove(path); err != nil {
		s.logger.Warn("failed to remove temp screenshot", "file", path, "error", err)
	}
}
