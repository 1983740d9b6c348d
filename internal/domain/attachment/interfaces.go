package attachment

import (
	"context"

	"github.com/pawdiary/pawdiary/internal/domain/activity"
)

// Repository provides persistence for attachment records.
type Repository interface {
	Create(ctx context.Context, tenantID string, a *Attachment) error
	Get(ctx context.Context, tenantID string, id int64) (*Attachment, error)
	ListByActivity(ctx context.Context, tenantID string, activityID int64) ([]Attachment, error)
	ListByPet(ctx context.Context, tenantID string, petID int64) ([]Attachment, error)
	Delete(ctx context.Context, tenantID string, id int64) error
	Count(ctx context.Context, tenantID string) (int, error)
}

// Activities is the slice of the activity service attachments depend on.
type Activities interface {
	Get(ctx context.Context, tenantID string, id int64) (*activity.Activity, error)
}

// Files stores attachment contents.
type Files interface {
	Put(tenantID, filename string, data []byte) (string, error)
	Delete(tenantID, name string) error
}
