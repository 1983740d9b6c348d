package mcp

import (
	"context"

	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/transport"
)

// ActivitySaver stores submitted editor forms for the tenant carried in the
// submit context.
type ActivitySaver struct {
	activities ActivityService
}

// NewActivitySaver creates an editor.Saver over the activity service.
func NewActivitySaver(activities ActivityService) *ActivitySaver {
	return &ActivitySaver{activities: activities}
}

func (s *ActivitySaver) SaveActivity(ctx context.Context, activityID *int64, data form.ActivityFormData) error {
	tenantID, ok := transport.TenantFromContext(ctx)
	if !ok || tenantID == "" {
		return ErrNoTenant
	}
	_, err := s.activities.Save(ctx, tenantID, activityID, data)
	return err
}
