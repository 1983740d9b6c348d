package mocks

import (
	"context"

	"github.com/pawdiary/pawdiary/internal/domain/activity"
	"github.com/pawdiary/pawdiary/internal/domain/attachment"
	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/stretchr/testify/mock"
)

// PetRepository is a mock for pet.Repository.
type PetRepository struct {
	mock.Mock
}

func (m *PetRepository) Create(ctx context.Context, tenantID string, p *pet.Pet) error {
	args := m.Called(ctx, tenantID, p)
	return args.Error(0)
}

func (m *PetRepository) Get(ctx context.Context, tenantID string, id int64) (*pet.Pet, error) {
	args := m.Called(ctx, tenantID, id)
	if p, ok := args.Get(0).(*pet.Pet); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PetRepository) List(ctx context.Context, tenantID string, opts pet.ListOptions) ([]pet.Pet, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]pet.Pet); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PetRepository) Update(ctx context.Context, tenantID string, p *pet.Pet) error {
	args := m.Called(ctx, tenantID, p)
	return args.Error(0)
}

func (m *PetRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *PetRepository) Reorder(ctx context.Context, tenantID string, ids []int64) error {
	args := m.Called(ctx, tenantID, ids)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Create(ctx context.Context, tenantID string, a *activity.Activity) error {
	args := m.Called(ctx, tenantID, a)
	return args.Error(0)
}

func (m *ActivityRepository) Get(ctx context.Context, tenantID string, id int64) (*activity.Activity, error) {
	args := m.Called(ctx, tenantID, id)
	if a, ok := args.Get(0).(*activity.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) Update(ctx context.Context, tenantID string, a *activity.Activity) error {
	args := m.Called(ctx, tenantID, a)
	return args.Error(0)
}

func (m *ActivityRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListOptions) (*activity.Page, error) {
	args := m.Called(ctx, tenantID, opts)
	if p, ok := args.Get(0).(*activity.Page); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// SearchRepository is a mock for activity.SearchRepository.
type SearchRepository struct {
	mock.Mock
}

func (m *SearchRepository) Search(ctx context.Context, tenantID, query string, opts activity.SearchOptions) (*activity.Page, error) {
	args := m.Called(ctx, tenantID, query, opts)
	if p, ok := args.Get(0).(*activity.Page); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// Pets is a mock for activity.Pets.
type Pets struct {
	mock.Mock
}

func (m *Pets) Get(ctx context.Context, tenantID string, id int64) (*pet.Pet, error) {
	args := m.Called(ctx, tenantID, id)
	if p, ok := args.Get(0).(*pet.Pet); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Pets) SetWeight(ctx context.Context, tenantID string, id int64, kg float64) (*pet.Pet, error) {
	args := m.Called(ctx, tenantID, id, kg)
	if p, ok := args.Get(0).(*pet.Pet); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// AttachmentRepository is a mock for attachment.Repository.
type AttachmentRepository struct {
	mock.Mock
}

func (m *AttachmentRepository) Create(ctx context.Context, tenantID string, a *attachment.Attachment) error {
	args := m.Called(ctx, tenantID, a)
	return args.Error(0)
}

func (m *AttachmentRepository) Get(ctx context.Context, tenantID string, id int64) (*attachment.Attachment, error) {
	args := m.Called(ctx, tenantID, id)
	if a, ok := args.Get(0).(*attachment.Attachment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AttachmentRepository) ListByActivity(ctx context.Context, tenantID string, activityID int64) ([]attachment.Attachment, error) {
	args := m.Called(ctx, tenantID, activityID)
	if list, ok := args.Get(0).([]attachment.Attachment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AttachmentRepository) ListByPet(ctx context.Context, tenantID string, petID int64) ([]attachment.Attachment, error) {
	args := m.Called(ctx, tenantID, petID)
	if list, ok := args.Get(0).([]attachment.Attachment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AttachmentRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *AttachmentRepository) Count(ctx context.Context, tenantID string) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

// Activities is a mock for the activity lookups other services depend on.
type Activities struct {
	mock.Mock
}

func (m *Activities) Get(ctx context.Context, tenantID string, id int64) (*activity.Activity, error) {
	args := m.Called(ctx, tenantID, id)
	if a, ok := args.Get(0).(*activity.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
