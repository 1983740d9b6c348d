package attachment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/repository"
)

// MaxMetadataSize bounds the metadata JSON in bytes.
const MaxMetadataSize = 4096

// Service handles activity attachments.
type Service struct {
	repo       Repository
	activities Activities
	files      Files
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new attachment service.
func NewService(repo Repository, activities Activities, files Files, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, activities: activities, files: files, logger: logger, now: time.Now}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// detect fills in the MIME type and file type the caller left out.
func detect(req UploadRequest) (string, FileType) {
	mime := strings.ToLower(strings.TrimSpace(req.MimeType))
	if mime == "" {
		mime, _, _ = strings.Cut(http.DetectContentType(req.FileBytes), ";")
	}
	ft := req.FileType
	if ft == "" {
		switch {
		case strings.HasPrefix(mime, "image/"):
			ft = FileTypePhoto
		case strings.HasPrefix(mime, "video/"):
			ft = FileTypeVideo
		default:
			ft = FileTypeDocument
		}
	}
	return mime, ft
}

func validateUpload(req UploadRequest, mime string, ft FileType) error {
	if req.ActivityID <= 0 {
		return invalid("activity id must be positive")
	}
	if strings.TrimSpace(req.Filename) == "" {
		return invalid("filename cannot be empty")
	}
	if len(req.FileBytes) == 0 {
		return invalid("file data cannot be empty")
	}
	if int64(len(req.FileBytes)) > block.MaxFileSize {
		return invalid("file must be %d bytes or less", block.MaxFileSize)
	}
	if !ft.Valid() {
		return invalid("unknown file type %q", ft)
	}
	if !slices.Contains(block.AllowedMimeTypes, mime) {
		return invalid("file type %s is not allowed", mime)
	}
	if len(req.Metadata) > 0 {
		if len(req.Metadata) > MaxMetadataSize {
			return invalid("metadata must be %d bytes or less", MaxMetadataSize)
		}
		if !json.Valid(req.Metadata) {
			return invalid("metadata is not valid JSON")
		}
	}
	return nil
}

// Upload stores a file and records it against an activity of the tenant.
func (s *Service) Upload(ctx context.Context, tenantID string, req UploadRequest) (*Attachment, error) {
	mime, ft := detect(req)
	if err := validateUpload(req, mime, ft); err != nil {
		return nil, err
	}
	if _, err := s.activities.Get(ctx, tenantID, req.ActivityID); err != nil {
		return nil, err
	}

	name, err := s.files.Put(tenantID, req.Filename, req.FileBytes)
	if err != nil {
		return nil, fmt.Errorf("storing attachment: %w", err)
	}

	a := &Attachment{
		ActivityID:   req.ActivityID,
		FilePath:     name,
		OriginalName: strings.TrimSpace(req.Filename),
		FileType:     ft,
		MimeType:     mime,
		FileSize:     int64(len(req.FileBytes)),
		Metadata:     req.Metadata,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, tenantID, a); err != nil {
		if derr := s.files.Delete(tenantID, name); derr != nil {
			s.logger.Warn("failed to remove orphaned upload", "file", name, "error", derr)
		}
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("activity %d: %w", req.ActivityID, ErrInvalidInput)
		}
		return nil, fmt.Errorf("creating attachment: %w", err)
	}
	s.logger.Info("attachment uploaded", "id", a.ID, "activity", a.ActivityID, "size", a.FileSize)
	return a, nil
}

// List returns an activity's attachments, newest first.
func (s *Service) List(ctx context.Context, tenantID string, activityID int64) ([]Attachment, error) {
	if activityID <= 0 {
		return nil, invalid("activity id must be positive")
	}
	if _, err := s.activities.Get(ctx, tenantID, activityID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByActivity(ctx, tenantID, activityID)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	return list, nil
}

// ListForPet returns every attachment of a pet's activities.
func (s *Service) ListForPet(ctx context.Context, tenantID string, petID int64) ([]Attachment, error) {
	list, err := s.repo.ListByPet(ctx, tenantID, petID)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	return list, nil
}

// Get fetches an attachment by ID.
func (s *Service) Get(ctx context.Context, tenantID string, id int64) (*Attachment, error) {
	if id <= 0 {
		return nil, invalid("attachment id must be positive")
	}
	a, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("getting attachment: %w", err)
	}
	return a, nil
}

// Delete removes an attachment record and its file.
func (s *Service) Delete(ctx context.Context, tenantID string, id int64) error {
	a, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAttachmentNotFound
		}
		return fmt.Errorf("deleting attachment: %w", err)
	}
	s.RemoveFiles(tenantID, []Attachment{*a})
	return nil
}

// Count returns how many attachments a tenant has.
func (s *Service) Count(ctx context.Context, tenantID string) (int, error) {
	n, err := s.repo.Count(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("counting attachments: %w", err)
	}
	return n, nil
}

// RemoveFiles deletes the stored files of attachments whose records are
// already gone, as after an activity or pet delete cascades. Failures are
// logged.
func (s *Service) RemoveFiles(tenantID string, list []Attachment) {
	for _, a := range list {
		if err := s.files.Delete(tenantID, a.FilePath); err != nil {
			s.logger.Warn("failed to delete attachment file", "id", a.ID, "file", a.FilePath, "error", err)
		}
	}
}
