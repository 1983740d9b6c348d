package activity

import (
	"encoding/json"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// Activity is a stored event in a pet's log.
type Activity struct {
	ID           int64                      `json:"id"`
	TenantID     string                     `json:"tenant_id"`
	PetID        int64                      `json:"pet_id"`
	Category     template.Category          `json:"category"`
	Subcategory  string                     `json:"subcategory"`
	TemplateID   string                     `json:"template_id,omitempty"`
	Title        string                     `json:"title"`
	Description  string                     `json:"description,omitempty"`
	ActivityDate time.Time                  `json:"activity_date"`
	Blocks       map[string]json.RawMessage `json:"blocks,omitempty"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// Page is one page of activities.
type Page struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
	HasMore    bool       `json:"has_more"`
}

// Export is a JSON backup of activities.
type Export struct {
	ExportedAt time.Time  `json:"exported_at"`
	PetID      *int64     `json:"pet_id,omitempty"`
	Count      int        `json:"count"`
	Activities []Activity `json:"activities"`
}

// FormData converts a stored activity back into editable form data.
func (a Activity) FormData() form.ActivityFormData {
	date := a.ActivityDate
	d := form.ActivityFormData{
		PetID:        a.PetID,
		Category:     a.Category,
		Subcategory:  a.Subcategory,
		TemplateID:   a.TemplateID,
		Title:        a.Title,
		Description:  a.Description,
		ActivityDate: &date,
		Blocks:       a.Blocks,
	}
	return d.Clone()
}
