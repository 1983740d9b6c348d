package draft

import (
	"fmt"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/form"
)

// KeyPrefix starts every draft storage key.
const KeyPrefix = "activity-draft-"

// DefaultMaxAge is the sweep threshold when none is configured.
const DefaultMaxAge = 24 * time.Hour

// Mode is the editor presentation a draft was written from.
type Mode string

const (
	ModePage     Mode = "page"
	ModeModal    Mode = "modal"
	ModeGuided   Mode = "guided"
	ModeAdvanced Mode = "advanced"
	ModeQuick    Mode = "quick"
)

// Modes lists every editor mode.
func Modes() []Mode {
	return []Mode{ModePage, ModeModal, ModeGuided, ModeAdvanced, ModeQuick}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, known := range Modes() {
		if m == known {
			return true
		}
	}
	return false
}

// Context identifies the editing situation a draft belongs to.
type Context struct {
	PetID      int64  `json:"petId"`
	ActivityID *int64 `json:"activityId,omitempty"`
	Mode       Mode   `json:"mode"`
	TemplateID string `json:"templateId,omitempty"`
}

// Key derives the deterministic storage key for c.
func (c Context) Key() string {
	if c.ActivityID != nil {
		return fmt.Sprintf("%s%d-edit-%d", KeyPrefix, c.PetID, *c.ActivityID)
	}
	templateID := c.TemplateID
	if templateID == "" {
		templateID = "default"
	}
	return fmt.Sprintf("%s%d-new-%s-%s", KeyPrefix, c.PetID, c.Mode, templateID)
}

// Matches reports whether m was written from exactly this context.
func (c Context) Matches(m Metadata) bool {
	if c.PetID != m.PetID || c.Mode != m.Mode || c.TemplateID != m.TemplateID {
		return false
	}
	switch {
	case c.ActivityID == nil && m.ActivityID == nil:
		return true
	case c.ActivityID != nil && m.ActivityID != nil:
		return *c.ActivityID == *m.ActivityID
	}
	return false
}

// Metadata records where and when a draft was saved.
type Metadata struct {
	LastSaved  time.Time `json:"lastSaved"`
	PetID      int64     `json:"petId"`
	ActivityID *int64    `json:"activityId,omitempty"`
	Mode       Mode      `json:"mode"`
	TemplateID string    `json:"templateId,omitempty"`
}

// Draft is the stored snapshot of an in-progress form.
type Draft struct {
	Data     form.ActivityFormData `json:"data"`
	Metadata Metadata              `json:"metadata"`
}

// State is the save state of one draft key.
type State string

const (
	StateIdle   State = "idle"
	StateSaving State = "saving"
)
