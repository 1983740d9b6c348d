package activity

import (
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// DefaultLimit is the page size when none is given.
const DefaultLimit = 50

// ListOptions provides filtering options for listing activities.
type ListOptions struct {
	PetID      *int64
	Categories []template.Category
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// SearchOptions provides filtering options for full-text search.
type SearchOptions struct {
	PetID  *int64
	Limit  int
	Offset int
}
