package pet

import "time"

// Species of a pet.
type Species string

const (
	SpeciesCat Species = "cat"
	SpeciesDog Species = "dog"
)

// Valid reports whether s is a known species.
func (s Species) Valid() bool {
	return s == SpeciesCat || s == SpeciesDog
}

// Gender of a pet.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

// Pet is an animal whose activities are logged.
type Pet struct {
	ID           int64     `json:"id"`
	TenantID     string    `json:"tenant_id"`
	Name         string    `json:"name"`
	BirthDate    time.Time `json:"birth_date"`
	Species      Species   `json:"species"`
	Gender       Gender    `json:"gender"`
	Breed        *string   `json:"breed,omitempty"`
	Color        *string   `json:"color,omitempty"`
	WeightKg     *float64  `json:"weight_kg,omitempty"`
	PhotoPath    *string   `json:"photo_path,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	DisplayOrder int64     `json:"display_order"`
	IsArchived   bool      `json:"is_archived"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRequest holds the fields for a new pet.
type CreateRequest struct {
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birth_date"`
	Species   Species   `json:"species"`
	Gender    Gender    `json:"gender"`
	Breed     *string   `json:"breed,omitempty"`
	Color     *string   `json:"color,omitempty"`
	WeightKg  *float64  `json:"weight_kg,omitempty"`
	PhotoPath *string   `json:"photo_path,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

// UpdateRequest holds optional field changes. Nil fields are left alone.
type UpdateRequest struct {
	Name       *string    `json:"name,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	Species    *Species   `json:"species,omitempty"`
	Gender     *Gender    `json:"gender,omitempty"`
	Breed      *string    `json:"breed,omitempty"`
	Color      *string    `json:"color,omitempty"`
	WeightKg   *float64   `json:"weight_kg,omitempty"`
	PhotoPath  *string    `json:"photo_path,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	IsArchived *bool      `json:"is_archived,omitempty"`
}

// ListOptions filters List.
type ListOptions struct {
	IncludeArchived bool
}
