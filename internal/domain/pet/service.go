package pet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pawdiary/pawdiary/internal/repository"
)

// Service handles pet operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new pet service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Create validates and stores a new pet at the end of the display order.
func (s *Service) Create(ctx context.Context, tenantID string, req CreateRequest) (*Pet, error) {
	if err := ValidateCreate(req); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p := &Pet{
		TenantID:  tenantID,
		Name:      strings.TrimSpace(req.Name),
		BirthDate: req.BirthDate,
		Species:   req.Species,
		Gender:    req.Gender,
		Breed:     trimmed(req.Breed),
		Color:     trimmed(req.Color),
		WeightKg:  req.WeightKg,
		PhotoPath: trimmed(req.PhotoPath),
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, tenantID, p); err != nil {
		return nil, fmt.Errorf("creating pet: %w", err)
	}
	s.logger.Info("pet created", "pet", p.ID, "name", p.Name)
	return p, nil
}

// Get fetches a pet by ID.
func (s *Service) Get(ctx context.Context, tenantID string, id int64) (*Pet, error) {
	p, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("getting pet: %w", err)
	}
	return p, nil
}

// List returns pets in display order.
func (s *Service) List(ctx context.Context, tenantID string, opts ListOptions) ([]Pet, error) {
	return s.repo.List(ctx, tenantID, opts)
}

// Update applies the non-nil fields of req.
func (s *Service) Update(ctx context.Context, tenantID string, id int64, req UpdateRequest) (*Pet, error) {
	if err := ValidateUpdate(req); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.BirthDate != nil {
		p.BirthDate = *req.BirthDate
	}
	if req.Species != nil {
		p.Species = *req.Species
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Breed != nil {
		p.Breed = trimmed(req.Breed)
	}
	if req.Color != nil {
		p.Color = trimmed(req.Color)
	}
	if req.WeightKg != nil {
		p.WeightKg = req.WeightKg
	}
	if req.PhotoPath != nil {
		p.PhotoPath = trimmed(req.PhotoPath)
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}
	if req.IsArchived != nil {
		p.IsArchived = *req.IsArchived
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, tenantID, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("updating pet: %w", err)
	}
	return p, nil
}

// SetWeight records a new current weight in kilograms.
func (s *Service) SetWeight(ctx context.Context, tenantID string, id int64, kg float64) (*Pet, error) {
	return s.Update(ctx, tenantID, id, UpdateRequest{WeightKg: &kg})
}

// Archive hides a pet from the default listing. Its activities are kept.
func (s *Service) Archive(ctx context.Context, tenantID string, id int64) (*Pet, error) {
	archived := true
	return s.Update(ctx, tenantID, id, UpdateRequest{IsArchived: &archived})
}

// Delete removes a pet and, through the store, its activities.
func (s *Service) Delete(ctx context.Context, tenantID string, id int64) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPetNotFound
		}
		return fmt.Errorf("deleting pet: %w", err)
	}
	s.logger.Info("pet deleted", "pet", id)
	return nil
}

// Reorder sets display order to the position of each id in ids.
func (s *Service) Reorder(ctx context.Context, tenantID string, ids []int64) error {
	if err := ValidateReorder(ids); err != nil {
		return err
	}
	if err := s.repo.Reorder(ctx, tenantID, ids); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPetNotFound
		}
		return fmt.Errorf("reordering pets: %w", err)
	}
	return nil
}
