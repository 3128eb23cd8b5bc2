package payment

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"foodifusion/internal/storage"
)

var ErrInvalidUpload = errors.New("invalid payment screenshot upload")

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Upload is a screenshot as received from the client.
type Upload struct {
	File         io.Reader
	Filename     string
	DeclaredType string
	Size         int64
}

// Receiver validates an upload and stores it in temporary storage.
type Receiver struct {
	temp     *storage.TempStore
	maxBytes int64
	sniff    bool
}

func NewReceiver(temp *storage.TempStore, maxBytes int64, sniff bool) *Receiver {
	return &Receiver{temp: temp, maxBytes: maxBytes, sniff: sniff}
}

func (r *Receiver) Receive(_ context.Context, u Upload) (*storage.Artifact, error) {
	declared := normalizeType(u.DeclaredType)
	if !allowedTypes[declared] {
		return nil, fmt.Errorf("%w: type %q not allowed", ErrInvalidUpload, u.DeclaredType)
	}
	if u.Size > r.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit", ErrInvalidUpload, u.Size)
	}

	body := u.File
	mimeType := declared

	if r.sniff {
		br := bufio.NewReaderSize(u.File, 512)
		head, err := br.Peek(512)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		sniffed := normalizeType(http.DetectContentType(head))
		if !allowedTypes[sniffed] {
			return nil, fmt.Errorf("%w: content looks like %q", ErrInvalidUpload, sniffed)
		}
		body = br
		mimeType = sniffed
	}

	a, err := r.temp.Save(body, u.Filename, mimeType, r.maxBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
		}
		return nil, err
	}
	return a, nil
}

// MaxMB is the limit as shown to users.
func (r *Receiver) MaxMB() int64 {
	return r.maxBytes / 1_000_000
}

func normalizeType(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.ToLower(strings.TrimSpace(t))
}
