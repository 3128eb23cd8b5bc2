package payment

import (
	"context"
	"errors"
	"log/slog"

	"foodifusion/internal/llm"
	"foodifusion/internal/metrics"
)

// Result is what the customer sees after an upload.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Service struct {
	client   llm.VisionClient
	receiver *Receiver
	verifier *Verifier
	state    *State
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(
	client llm.VisionClient,
	receiver *Receiver,
	verifier *Verifier,
	state *State,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		client:   client,
		receiver: receiver,
		verifier: verifier,
		state:    state,
		metrics:  m,
		logger:   logger,
	}
}

// VerifyUpload runs receive, analyze and record for one screenshot. A
// rejected screenshot is a normal result, not an error. Errors are
// llm.ErrNotConfigured, ErrInvalidUpload, ErrServiceUnavailable or storage
// failures.
func (s *Service) VerifyUpload(ctx context.Context, sessionID string, u Upload) (Result, error) {
	if !s.client.Configured() {
		return Result{}, llm.ErrNotConfigured
	}

	artifact, err := s.receiver.Receive(ctx, u)
	if err != nil {
		if errors.Is(err, ErrInvalidUpload) {
			s.metrics.Verifications.WithLabelValues(metrics.OutcomeInvalid).Inc()
		}
		return Result{}, err
	}

	verdict, err := s.verifier.Verify(ctx, artifact)
	if err != nil {
		return Result{}, err
	}
	if !verdict.Approved {
		return Result{Success: false, Message: "Invalid Payment: " + verdict.Reason}, nil
	}

	if err := s.state.Record(ctx, sessionID, artifact); err != nil {
		return Result{}, err
	}

	s.logger.Info("payment verified", "session_id", sessionID, "file", artifact.TempPath)
	return Result{Success: true, Message: "Payment verified."}, nil
}
