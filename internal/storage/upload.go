package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrTooLarge = errors.New("upload exceeds size limit")

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// TempStore holds uploads between receipt and verification.
type TempStore struct {
	dir string
}

func NewTempStore(dir string) *TempStore {
	return &TempStore{dir: dir}
}

func (s *TempStore) Dir() string {
	return s.dir
}

// Save writes r to a fresh file named after the upload time and original
// filename. At most limit bytes are accepted.
func (s *TempStore) Save(r io.Reader, originalName, mimeType string, limit int64) (*Artifact, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	now := time.Now()
	path := filepath.Join(s.dir, UniqueName(now, originalName))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > limit {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	return &Artifact{
		TempPath:         path,
		OriginalFilename: originalName,
		MimeType:         mimeType,
		SizeBytes:        written,
		UploadedAt:       now,
	}, nil
}

// Remove deletes a temp file. A missing file is not an error.
func (s *TempStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether the temp file is still present.
func (s *TempStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *TempStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// PurgeOlderThan deletes temp files last modified before cutoff.
func (s *TempStore) PurgeOlderThan(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := s.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// UniqueName derives a collision-resistant file name from the upload time
// and the client's file name.
func UniqueName(at time.Time, originalName string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	base = unsafeName.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "upload"
	}
	if len(base) > 64 {
		base = base[len(base)-64:]
	}
	return fmt.Sprintf("%d-%s-%s", at.UnixNano(), uuid.NewString()[:8], base)
}
