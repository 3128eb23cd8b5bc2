package storage

import (
	"context"
	"time"
)

// Artifact is an uploaded payment screenshot sitting in temporary storage.
type Artifact struct {
	TempPath         string    `json:"temp_path"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	SizeBytes        int64     `json:"size_bytes"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// EvidenceStore moves a verified artifact out of temporary storage and
// returns the permanent reference (a path or URL) to persist on the order.
// Implementations remove the temp file only once the destination is durable.
type EvidenceStore interface {
	Relocate(ctx context.Context, a *Artifact) (string, error)
}
