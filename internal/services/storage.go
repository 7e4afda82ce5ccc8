package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ContentStore stores binary artifacts and hands back opaque path
// references usable later for retrieval or as inference inputs.
type ContentStore interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

type contentStore struct {
	uploadPath string
}

func NewContentStore(uploadPath string) ContentStore {
	return &contentStore{uploadPath: uploadPath}
}

func (s *contentStore) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// Upload implements ContentStore. The stored name is a uuid with the
// original extension, so references never collide and the original
// filename never leaks into a path.
func (s *contentStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no data to upload")
	}

	if err := s.EnsureUploadDir(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(name))
	uniqueFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	fullPath := filepath.Join(s.uploadPath, uniqueFilename)

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return uniqueFilename, nil
}

// Open implements ContentStore.
func (s *contentStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(path)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid storage path: %s", path)
	}

	f, err := os.Open(filepath.Join(s.uploadPath, clean))
	if err != nil {
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return f, nil
}
