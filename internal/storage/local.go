package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// LocalEvidence keeps payment screenshots on the local filesystem.
type LocalEvidence struct {
	dir string
}

func NewLocalEvidence(dir string) *LocalEvidence {
	return &LocalEvidence{dir: dir}
}

func (l *LocalEvidence) Relocate(_ context.Context, a *Artifact) (string, error) {
	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return "", fmt.Errorf("create payment dir: %w", err)
	}

	dst := filepath.Join(l.dir, filepath.Base(a.TempPath))
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("evidence %s already exists", dst)
	}

	err := os.Rename(a.TempPath, dst)
	if err == nil {
		return dst, nil
	}

	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := copyDurable(a.TempPath, dst); err != nil {
			return "", err
		}
		if err := os.Remove(a.TempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("remove temp after copy: %w", err)
		}
		return dst, nil
	}

	return "", fmt.Errorf("rename evidence: %w", err)
}

// copyDurable copies src to dst and fsyncs dst before returning.
func copyDurable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open temp evidence: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return fmt.Errorf("create evidence: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy evidence: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("sync evidence: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("close evidence: %w", err)
	}
	return nil
}
