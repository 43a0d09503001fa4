// Package storage keeps uploaded receipt images on the local filesystem
// and hands out the public URLs the client stores as fileUrl.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/billedhq/expense-client/internal/attachment"
	"go.uber.org/zap"
)

// ReceiptStorage writes receipt blobs under a base directory and maps them
// to URLs under a base URL. FileURL and record key are produced together so
// the pair is never half-populated.
type ReceiptStorage struct {
	baseDir string
	baseURL string
	logger  *zap.Logger
}

// NewReceiptStorage creates a new receipt storage
func NewReceiptStorage(baseDir, baseURL string, logger *zap.Logger) *ReceiptStorage {
	return &ReceiptStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Save writes the receipt content under the record key and returns the
// public URL of the stored file.
func (s *ReceiptStorage) Save(ctx context.Context, key, fileName string, content []byte) (string, error) {
	name := storedName(key, fileName)
	fullPath := filepath.Join(s.baseDir, name)

	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		s.logger.Error("Failed to create storage directory",
			zap.String("dir", s.baseDir),
			zap.Error(err))
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write receipt",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}

	s.logger.Debug("Receipt saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return s.baseURL + "/images/" + name, nil
}

// Dir returns the base directory receipts are written to
func (s *ReceiptStorage) Dir() string {
	return s.baseDir
}

// validatePath rejects paths escaping the base directory
func (s *ReceiptStorage) validatePath(fullPath string) error {
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(fullPath)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(abs, base+string(filepath.Separator)) {
		return fmt.Errorf("path escapes storage directory: %s", fullPath)
	}
	return nil
}

// storedName derives the on-disk file name from the record key and the
// original extension, keeping unrelated user input out of the path.
func storedName(key, fileName string) string {
	ext := attachment.ExtensionOf(fileName)
	if ext == "" {
		ext = "bin"
	}
	return key + "." + ext
}
