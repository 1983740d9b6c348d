package pet

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxNameLength  = 100
	MaxBreedLength = 100
	MaxColorLength = 50
	MaxNotesLength = 1000
	MaxWeightKg    = 200
	MaxReorderSize = 100
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ValidateName checks a pet name: non-blank, at most 100 characters, no control characters.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return invalid("name cannot exceed %d characters", MaxNameLength)
	}
	if strings.IndexFunc(trimmed, unicode.IsControl) >= 0 {
		return invalid("name contains invalid characters")
	}
	return nil
}

// ValidateWeight checks a weight in kilograms.
func ValidateWeight(kg float64) error {
	if math.IsNaN(kg) || kg < 0 {
		return invalid("weight cannot be negative")
	}
	if kg > MaxWeightKg {
		return invalid("weight cannot exceed %d kg", MaxWeightKg)
	}
	return nil
}

func validateOptional(breed, color, notes *string) error {
	if breed != nil && utf8.RuneCountInString(strings.TrimSpace(*breed)) > MaxBreedLength {
		return invalid("breed cannot exceed %d characters", MaxBreedLength)
	}
	if color != nil && utf8.RuneCountInString(strings.TrimSpace(*color)) > MaxColorLength {
		return invalid("color cannot exceed %d characters", MaxColorLength)
	}
	if notes != nil && utf8.RuneCountInString(*notes) > MaxNotesLength {
		return invalid("notes cannot exceed %d characters", MaxNotesLength)
	}
	return nil
}

// ValidateCreate validates a create request.
func ValidateCreate(req CreateRequest) error {
	if err := ValidateName(req.Name); err != nil {
		return err
	}
	if !req.Species.Valid() {
		return invalid("unknown species %q", req.Species)
	}
	if !req.Gender.Valid() {
		return invalid("unknown gender %q", req.Gender)
	}
	if req.BirthDate.IsZero() {
		return invalid("birth date is required")
	}
	if req.WeightKg != nil {
		if err := ValidateWeight(*req.WeightKg); err != nil {
			return err
		}
	}
	return validateOptional(req.Breed, req.Color, req.Notes)
}

// ValidateUpdate validates the fields present in an update request.
func ValidateUpdate(req UpdateRequest) error {
	if req.Name != nil {
		if err := ValidateName(*req.Name); err != nil {
			return err
		}
	}
	if req.Species != nil && !req.Species.Valid() {
		return invalid("unknown species %q", *req.Species)
	}
	if req.Gender != nil && !req.Gender.Valid() {
		return invalid("unknown gender %q", *req.Gender)
	}
	if req.WeightKg != nil {
		if err := ValidateWeight(*req.WeightKg); err != nil {
			return err
		}
	}
	return validateOptional(req.Breed, req.Color, req.Notes)
}

// ValidateReorder checks an ordering: non-empty, bounded, positive ids, no duplicates.
func ValidateReorder(ids []int64) error {
	if len(ids) == 0 {
		return invalid("pet id list cannot be empty")
	}
	if len(ids) > MaxReorderSize {
		return invalid("too many pets to reorder (limit %d)", MaxReorderSize)
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return invalid("invalid pet id %d", id)
		}
		if seen[id] {
			return invalid("duplicate pet id %d", id)
		}
		seen[id] = true
	}
	return nil
}
