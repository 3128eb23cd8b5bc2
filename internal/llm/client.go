package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotConfigured = errors.New("vision service is not configured")

// VisionClient sends one prompt plus one image to a vision model and returns
// the model's raw text answer.
type VisionClient interface {
	Configured() bool
	Analyze(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// ServiceError is a failed call to the vision endpoint: transport failure,
// timeout, non-2xx status or an unreadable response.
type ServiceError struct {
	Status   int
	Duration time.Duration
	Err      error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("vision service: status %d after %s: %v", e.Status, e.Duration, e.Err)
	}
	return fmt.Sprintf("vision service after %s: %v", e.Duration, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
