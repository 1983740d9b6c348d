package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pawdiary/pawdiary/internal/domain/attachment"
	"github.com/pawdiary/pawdiary/internal/repository"
)

// AttachmentRepository implements attachment.Repository for SQLite
type AttachmentRepository struct {
	db *DB
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

const attachmentColumns = `
	t.id, t.tenant_id, t.activity_id, t.file_path, t.original_name, t.file_type,
	t.mime_type, t.file_size, t.thumbnail_path, t.metadata, t.created_at
`

func scanAttachment(row rowScanner) (*attachment.Attachment, error) {
	var a attachment.Attachment
	var thumbnail, metadata sql.NullString
	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.ActivityID,
		&a.FilePath,
		&a.OriginalName,
		&a.FileType,
		&a.MimeType,
		&a.FileSize,
		&thumbnail,
		&metadata,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if thumbnail.Valid {
		a.ThumbnailPath = &thumbnail.String
	}
	if metadata.Valid && metadata.String != "" {
		a.Metadata = []byte(metadata.String)
	}
	return &a, nil
}

// Create inserts an attachment. The activity must exist for the tenant.
func (r *AttachmentRepository) Create(ctx context.Context, tenantID string, a *attachment.Attachment) error {
	var metadata any
	if len(a.Metadata) > 0 {
		metadata = string(a.Metadata)
	}
	query := `
		INSERT INTO activity_attachments (
			tenant_id, activity_id, file_path, original_name, file_type,
			mime_type, file_size, thumbnail_path, metadata, created_at
		)
		SELECT ?, a.id, ?, ?, ?, ?, ?, ?, ?, ?
		FROM activities a WHERE a.id = ? AND a.tenant_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		tenantID,
		a.FilePath,
		a.OriginalName,
		a.FileType,
		a.MimeType,
		a.FileSize,
		a.ThumbnailPath,
		metadata,
		a.CreatedAt.UTC(),
		a.ActivityID,
		tenantID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return repository.ErrForeignKeyViolation
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get attachment id: %w", err)
	}
	a.ID = id
	a.TenantID = tenantID
	return nil
}

// Get retrieves an attachment by ID
func (r *AttachmentRepository) Get(ctx context.Context, tenantID string, id int64) (*attachment.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM activity_attachments t WHERE t.id = ? AND t.tenant_id = ?`

	a, err := scanAttachment(r.db.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return a, nil
}

// ListByActivity returns an activity's attachments, newest first.
func (r *AttachmentRepository) ListByActivity(ctx context.Context, tenantID string, activityID int64) ([]attachment.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM activity_attachments t
		WHERE t.tenant_id = ? AND t.activity_id = ?
		ORDER BY t.created_at DESC, t.id DESC`
	return r.list(ctx, query, tenantID, activityID)
}

// ListByPet returns the attachments of every activity of a pet.
func (r *AttachmentRepository) ListByPet(ctx context.Context, tenantID string, petID int64) ([]attachment.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM activity_attachments t
		JOIN activities a ON a.id = t.activity_id
		WHERE t.tenant_id = ? AND a.pet_id = ?
		ORDER BY t.id`
	return r.list(ctx, query, tenantID, petID)
}

func (r *AttachmentRepository) list(ctx context.Context, query string, args ...any) ([]attachment.Attachment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	out := []attachment.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Delete deletes an attachment record
func (r *AttachmentRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM activity_attachments WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return requireAffected(result)
}

// Count returns how many attachments a tenant has.
func (r *AttachmentRepository) Count(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_attachments WHERE tenant_id = ?`, tenantID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count attachments: %w", err)
	}
	return n, nil
}
