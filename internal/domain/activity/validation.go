package activity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/form"
)

const (
	MaxTitleLength       = 255
	MaxSubcategoryLength = 100
	MaxDescriptionLength = 2000
	// MaxBlocksSize bounds the serialized block map in bytes.
	MaxBlocksSize = 10000
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ValidateData applies the storage rules to submitted form data.
func ValidateData(d form.ActivityFormData, now time.Time) error {
	if d.PetID <= 0 {
		return invalid("pet id must be positive")
	}
	if !d.Category.Valid() {
		return invalid("unknown category %q", d.Category)
	}
	sub := strings.TrimSpace(d.Subcategory)
	if sub == "" {
		return invalid("subcategory cannot be empty")
	}
	if utf8.RuneCountInString(sub) > MaxSubcategoryLength {
		return invalid("subcategory must be %d characters or less", MaxSubcategoryLength)
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return invalid("title cannot be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return invalid("title must be %d characters or less", MaxTitleLength)
	}
	if utf8.RuneCountInString(d.Description) > MaxDescriptionLength {
		return invalid("description must be %d characters or less", MaxDescriptionLength)
	}
	if d.ActivityDate != nil {
		// Matches the time block window.
		if d.ActivityDate.After(block.Latest(now)) {
			return invalid("activity date cannot be more than %d year in the future", block.MaxFutureYears)
		}
		if d.ActivityDate.Before(block.Earliest(now, d.ActivityDate.Location())) {
			return invalid("activity date cannot be more than %d years in the past", block.MaxPastYears)
		}
	}
	if len(d.Blocks) > 0 {
		b, err := json.Marshal(d.Blocks)
		if err != nil {
			return invalid("blocks are not valid JSON")
		}
		if len(b) > MaxBlocksSize {
			return invalid("block data must be less than 10KB")
		}
	}
	return nil
}
