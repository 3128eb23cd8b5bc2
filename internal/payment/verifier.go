package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"foodifusion/internal/llm"
	"foodifusion/internal/metrics"
	"foodifusion/internal/storage"
)

var ErrServiceUnavailable = errors.New("payment verification service unavailable")

// TempFiles is the subset of temporary storage the payment flow needs.
type TempFiles interface {
	Read(path string) ([]byte, error)
	Remove(path string) error
	Exists(path string) bool
}

// Verifier asks the vision model whether a screenshot shows a valid
// payment. Every outcome except approval deletes the temp file.
type Verifier struct {
	client  llm.VisionClient
	files   TempFiles
	prompt  string
	timeout time.Duration
	slots   chan struct{}
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewVerifier(
	client llm.VisionClient,
	files TempFiles,
	prompt string,
	timeout time.Duration,
	maxInFlight int,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Verifier {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Verifier{
		client:  client,
		files:   files,
		prompt:  prompt,
		timeout: timeout,
		slots:   make(chan struct{}, maxInFlight),
		metrics: m,
		logger:  logger,
	}
}

func (v *Verifier) Verify(ctx context.Context, a *storage.Artifact) (llm.Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	select {
	case v.slots <- struct{}{}:
	case <-ctx.Done():
		v.discard(a)
		v.metrics.Verifications.WithLabelValues(metrics.OutcomeServiceError).Inc()
		v.logger.Error("vision call not started", "file", a.TempPath, "error", ctx.Err())
		return llm.Verdict{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, ctx.Err())
	}
	defer func() { <-v.slots }()

	image, err := v.files.Read(a.TempPath)
	if err != nil {
		v.discard(a)
		return llm.Verdict{}, fmt.Errorf("read screenshot: %w", err)
	}

	v.metrics.VerificationsActive.Inc()
	start := time.Now()
	text, err := v.client.Analyze(ctx, v.prompt, image, a.MimeType)
	elapsed := time.Since(start)
	v.metrics.VerificationsActive.Dec()
	v.metrics.VerificationLatency.Observe(elapsed.Seconds())

	if err != nil {
		v.discard(a)
		v.metrics.Verifications.WithLabelValues(metrics.OutcomeServiceError).Inc()

		attrs := []any{"file", a.TempPath, "duration", elapsed, "error", err}
		var se *llm.ServiceError
		if errors.As(err, &se) {
			attrs = append(attrs, "status", se.Status)
		}
		v.logger.Error("vision call failed", attrs...)

		if errors.Is(err, llm.ErrNotConfigured) {
			return llm.Verdict{}, err
		}
		return llm.Verdict{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	verdict := llm.ParseVerdict(text)
	if !verdict.Approved {
		v.discard(a)
		v.metrics.Verifications.WithLabelValues(metrics.OutcomeRejected).Inc()
		v.logger.Info("payment screenshot rejected", "duration", elapsed, "reason", verdict.Reason)
		return verdict, nil
	}

	v.metrics.Verifications.WithLabelValues(metrics.OutcomeApproved).Inc()
	v.logger.Info("payment screenshot approved", "duration", elapsed)
	return verdict, nil
}

func (v *Verifier) discard(a *storage.Artifact) {
	if err := v.files.Remove(a.TempPath); err != nil {
		v.logger.Warn("failed to remove temp screenshot", "file", a.TempPath, "error", err)
	}
}
