package activity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/pawdiary/pawdiary/internal/domain/template"
	"github.com/pawdiary/pawdiary/internal/repository"
)

// ValidationError carries block-level errors for a rejected activity.
type ValidationError struct {
	Errors form.Errors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s: invalid fields %s", ErrInvalidInput, strings.Join(keys, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Service handles activity business logic.
type Service struct {
	activities Repository
	search     SearchRepository
	pets       Pets
	templates  *template.Registry
	validator  *block.Validator
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new activity service. With a template registry and a
// validator, activities that name a template are checked block by block.
func NewService(
	activities Repository,
	search SearchRepository,
	pets Pets,
	templates *template.Registry,
	validator *block.Validator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		activities: activities,
		search:     search,
		pets:       pets,
		templates:  templates,
		validator:  validator,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) validate(data form.ActivityFormData) error {
	if err := ValidateData(data, s.now()); err != nil {
		return err
	}
	if s.templates == nil || s.validator == nil || data.TemplateID == "" {
		return nil
	}
	tpl, err := s.templates.Lookup(data.TemplateID)
	if err != nil {
		return invalid("unknown template %q", data.TemplateID)
	}
	if errs := form.ValidateBlocks(s.validator, data, tpl.Blocks); !errs.Empty() {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func (s *Service) requirePet(ctx context.Context, tenantID string, petID int64) error {
	if s.pets == nil {
		return nil
	}
	if _, err := s.pets.Get(ctx, tenantID, petID); err != nil {
		if errors.Is(err, pet.ErrPetNotFound) {
			return ErrPetNotFound
		}
		return fmt.Errorf("checking pet: %w", err)
	}
	return nil
}

func (s *Service) apply(a *Activity, data form.ActivityFormData) {
	a.PetID = data.PetID
	a.Category = data.Category
	a.Subcategory = strings.TrimSpace(data.Subcategory)
	a.TemplateID = data.TemplateID
	a.Title = strings.TrimSpace(data.Title)
	a.Description = data.Description
	if data.ActivityDate != nil {
		a.ActivityDate = data.ActivityDate.UTC()
	} else if a.ActivityDate.IsZero() {
		a.ActivityDate = s.now().UTC()
	}
	a.Blocks = data.Clone().Blocks
}

// Create validates and stores a new activity.
func (s *Service) Create(ctx context.Context, tenantID string, data form.ActivityFormData) (*Activity, error) {
	if err := s.validate(data); err != nil {
		return nil, err
	}
	if err := s.requirePet(ctx, tenantID, data.PetID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a := &Activity{TenantID: tenantID, CreatedAt: now, UpdatedAt: now}
	s.apply(a, data)

	if err := s.activities.Create(ctx, tenantID, a); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("creating activity: %w", err)
	}
	s.logger.Info("activity created", "activity", a.ID, "pet", a.PetID, "category", string(a.Category))
	s.syncWeight(ctx, tenantID, a)
	return a, nil
}

// Update replaces an activity's content with data.
func (s *Service) Update(ctx context.Context, tenantID string, id int64, data form.ActivityFormData) (*Activity, error) {
	if err := s.validate(data); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if a.PetID != data.PetID {
		if err := s.requirePet(ctx, tenantID, data.PetID); err != nil {
			return nil, err
		}
	}

	s.apply(a, data)
	a.UpdatedAt = s.now().UTC()
	if err := s.activities.Update(ctx, tenantID, a); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrActivityNotFound
		case errors.Is(err, repository.ErrForeignKeyViolation):
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("updating activity: %w", err)
	}
	s.syncWeight(ctx, tenantID, a)
	return a, nil
}

// Save creates the activity when id is nil and updates it otherwise.
func (s *Service) Save(ctx context.Context, tenantID string, id *int64, data form.ActivityFormData) (*Activity, error) {
	if id == nil {
		return s.Create(ctx, tenantID, data)
	}
	return s.Update(ctx, tenantID, *id, data)
}

// syncWeight copies a weigh-in to the pet unless a later weigh-in exists.
// Failures are logged; the activity itself is already stored.
func (s *Service) syncWeight(ctx context.Context, tenantID string, a *Activity) {
	if s.pets == nil {
		return
	}
	kg, ok := a.WeightKg()
	if !ok {
		return
	}

	petID := a.PetID
	from := a.ActivityDate
	page, err := s.activities.List(ctx, tenantID, ListOptions{
		PetID:      &petID,
		Categories: []template.Category{template.CategoryGrowth},
		From:       &from,
		Limit:      DefaultLimit,
	})
	if err != nil {
		s.logger.Warn("failed to check later weigh-ins", "pet", petID, "error", err)
		return
	}
	for _, other := range page.Activities {
		if other.ID == a.ID || !other.ActivityDate.After(a.ActivityDate) {
			continue
		}
		if _, ok := other.WeightKg(); ok {
			return
		}
	}

	if _, err := s.pets.SetWeight(ctx, tenantID, petID, roundWeight(kg)); err != nil {
		s.logger.Warn("failed to update pet weight", "pet", petID, "error", err)
	}
}

func roundWeight(kg float64) float64 {
	return float64(int64(kg*100+0.5)) / 100
}

// Get fetches an activity by ID.
func (s *Service) Get(ctx context.Context, tenantID string, id int64) (*Activity, error) {
	a, err := s.activities.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("getting activity: %w", err)
	}
	return a, nil
}

// Delete removes an activity.
func (s *Service) Delete(ctx context.Context, tenantID string, id int64) error {
	if err := s.activities.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrActivityNotFound
		}
		return fmt.Errorf("deleting activity: %w", err)
	}
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// List returns activities newest first.
func (s *Service) List(ctx context.Context, tenantID string, opts ListOptions) (*Page, error) {
	opts.Limit, opts.Offset = normalizePage(opts.Limit, opts.Offset)
	for _, c := range opts.Categories {
		if !c.Valid() {
			return nil, invalid("unknown category %q", c)
		}
	}
	if opts.From != nil && opts.To != nil && opts.From.After(*opts.To) {
		return nil, invalid("date range start is after its end")
	}
	page, err := s.activities.List(ctx, tenantID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return page, nil
}

// Search runs a full-text query over title, description, category and subcategory.
func (s *Service) Search(ctx context.Context, tenantID, query string, opts SearchOptions) (*Page, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalid("search query cannot be empty")
	}
	opts.Limit, opts.Offset = normalizePage(opts.Limit, opts.Offset)
	page, err := s.search.Search(ctx, tenantID, query, opts)
	if err != nil {
		return nil, fmt.Errorf("searching activities: %w", err)
	}
	return page, nil
}

// Export collects every activity, optionally for one pet, for backup.
func (s *Service) Export(ctx context.Context, tenantID string, petID *int64) (*Export, error) {
	out := &Export{ExportedAt: s.now().UTC(), PetID: petID, Activities: []Activity{}}
	opts := ListOptions{PetID: petID, Limit: 200}
	for {
		page, err := s.activities.List(ctx, tenantID, opts)
		if err != nil {
			return nil, fmt.Errorf("exporting activities: %w", err)
		}
		out.Activities = append(out.Activities, page.Activities...)
		if !page.HasMore || len(page.Activities) == 0 {
			break
		}
		opts.Offset += len(page.Activities)
	}
	out.Count = len(out.Activities)
	s.logger.Info("activities exported", "count", out.Count)
	return out, nil
}
