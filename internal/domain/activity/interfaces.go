package activity

import (
	"context"

	"github.com/pawdiary/pawdiary/internal/domain/pet"
)

// Repository provides persistence for activities.
type Repository interface {
	Create(ctx context.Context, tenantID string, a *Activity) error
	Get(ctx context.Context, tenantID string, id int64) (*Activity, error)
	Update(ctx context.Context, tenantID string, a *Activity) error
	Delete(ctx context.Context, tenantID string, id int64) error
	List(ctx context.Context, tenantID string, opts ListOptions) (*Page, error)
}

// SearchRepository performs full-text search over activities.
type SearchRepository interface {
	Search(ctx context.Context, tenantID, query string, opts SearchOptions) (*Page, error)
}

// Pets is the slice of the pet service activities depend on.
type Pets interface {
	Get(ctx context.Context, tenantID string, id int64) (*pet.Pet, error)
	SetWeight(ctx context.Context, tenantID string, id int64, kg float64) (*pet.Pet, error)
}
