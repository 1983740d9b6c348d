// Package photo stores pet profile photos.
package photo

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/storage"
)

var (
	// ErrPhotoNotFound indicates the photo doesn't exist.
	ErrPhotoNotFound = errors.New("photo not found")
	// ErrInvalidInput indicates an unusable upload or photo id.
	ErrInvalidInput = errors.New("invalid photo input")
)

// Extensions lists the file extensions accepted as photos.
var Extensions = []string{"jpg", "jpeg", "png", "webp", "heic", "gif"}

// Store is the file storage photos live in.
type Store interface {
	Put(tenantID, filename string, data []byte) (string, error)
	Info(tenantID, name string) (storage.FileInfo, error)
	Delete(tenantID, name string) error
	List(tenantID string) ([]string, error)
	Stats(tenantID string) (storage.FileStats, error)
}

// Stats summarise a tenant's photos.
type Stats struct {
	PhotoCount int    `json:"photo_count"`
	TotalSize  int64  `json:"total_size"`
	StorageDir string `json:"storage_dir"`
}

// Service handles pet photo files.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new photo service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, logger: logger}
}

func isImage(filename string, data []byte) bool {
	if !slices.Contains(Extensions, storage.Extension(filename, "")) {
		return false
	}
	// HEIC is not sniffed, so the extension has to do.
	ct := http.DetectContentType(data)
	return strings.HasPrefix(ct, "image/") || storage.Extension(filename, "") == "heic"
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrPhotoNotFound
	case errors.Is(err, storage.ErrInvalidFileName):
		return fmt.Errorf("%w: invalid photo id", ErrInvalidInput)
	}
	return err
}

// Upload stores a photo and returns its id, the name to put in a pet's photo_path.
func (s *Service) Upload(tenantID, filename string, data []byte) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("%w: filename cannot be empty", ErrInvalidInput)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: photo data cannot be empty", ErrInvalidInput)
	}
	if int64(len(data)) > block.MaxFileSize {
		return "", fmt.Errorf("%w: photo must be %d bytes or less", ErrInvalidInput, block.MaxFileSize)
	}
	if !isImage(filename, data) {
		return "", fmt.Errorf("%w: not an image (accepted: %s)", ErrInvalidInput, strings.Join(Extensions, ", "))
	}
	id, err := s.store.Put(tenantID, filename, data)
	if err != nil {
		return "", fmt.Errorf("storing photo: %w", err)
	}
	s.logger.Info("pet photo uploaded", "photo", id, "size", len(data))
	return id, nil
}

// Info describes a stored photo.
func (s *Service) Info(tenantID, id string) (storage.FileInfo, error) {
	info, err := s.store.Info(tenantID, id)
	if err != nil {
		return storage.FileInfo{}, mapStoreError(err)
	}
	return info, nil
}

// Delete removes a stored photo. The photo must exist.
func (s *Service) Delete(tenantID, id string) error {
	if _, err := s.Info(tenantID, id); err != nil {
		return err
	}
	if err := s.store.Delete(tenantID, id); err != nil {
		return mapStoreError(err)
	}
	s.logger.Info("pet photo deleted", "photo", id)
	return nil
}

// List returns a tenant's photo ids.
func (s *Service) List(tenantID string) ([]string, error) {
	return s.store.List(tenantID)
}

// Stats counts a tenant's photos and their total size.
func (s *Service) Stats(tenantID string) (Stats, error) {
	st, err := s.store.Stats(tenantID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{PhotoCount: st.Count, TotalSize: st.TotalSize, StorageDir: st.Dir}, nil
}
