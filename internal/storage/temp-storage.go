package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BerylCAtieno/sheet-insights-api/internal/utils"
)

// TempStorage holds an upload on disk for the lifetime of one request.
type TempStorage interface {
	Save(ctx context.Context, data []byte, ext string) (string, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
}

type diskStorage struct {
	dir string
}

// NewDiskStorage stores artifacts under dir, or the system temp directory when dir is empty.
func NewDiskStorage(dir string) (TempStorage, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &diskStorage{dir: dir}, nil
}

func (s *diskStorage) Save(ctx context.Context, data []byte, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, "upload-"+utils.GenerateID()+sanitizeExt(ext))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		// A partial write may have left the file behind.
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return path, nil
}

func (s *diskStorage) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.owns(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// Remove deletes the artifact. It runs even when ctx is already cancelled, and a
// missing file is not an error.
func (s *diskStorage) Remove(_ context.Context, path string) error {
	if err := s.owns(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

func (s *diskStorage) owns(path string) error {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return fmt.Errorf("path %q is outside the upload directory", path)
	}
	return nil
}

func sanitizeExt(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	ext = strings.ToLower(filepath.Ext("x" + ext))
	if strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
