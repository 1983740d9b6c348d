package pet

import "context"

// Repository provides persistence for pets.
type Repository interface {
	Create(ctx context.Context, tenantID string, p *Pet) error
	Get(ctx context.Context, tenantID string, id int64) (*Pet, error)
	List(ctx context.Context, tenantID string, opts ListOptions) ([]Pet, error)
	Update(ctx context.Context, tenantID string, p *Pet) error
	Delete(ctx context.Context, tenantID string, id int64) error
	Reorder(ctx context.Context, tenantID string, ids []int64) error
}
