package mcp

import (
	"encoding/json"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/editor"
	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/pawdiary/pawdiary/internal/domain/template"
)

type ListTemplatesParams struct {
	Category string `json:"category,omitempty"`
	QuickLog bool   `json:"quick_log,omitempty"`
}

type GetTemplateParams struct {
	ID string `json:"id"`
}

// ValidateBlockParams validates either a template block (template_id and
// block_id) or a bare block type.
type ValidateBlockParams struct {
	TemplateID string          `json:"template_id,omitempty"`
	BlockID    string          `json:"block_id,omitempty"`
	Type       string          `json:"type,omitempty"`
	Value      json.RawMessage `json:"value"`
}

type OpenEditorParams struct {
	Shell      editor.Shell           `json:"shell,omitempty"`
	PetID      int64                  `json:"pet_id"`
	ActivityID *int64                 `json:"activity_id,omitempty"`
	TemplateID string                 `json:"template_id,omitempty"`
	Initial    *form.ActivityFormData `json:"initial,omitempty"`
	// Query is an editor URL query string such as "template=diet.feeding&mode=quick".
	Query string `json:"query,omitempty"`
}

type EditorParams struct {
	SessionID string `json:"session_id,omitempty"`
}

type SelectTemplateParams struct {
	SessionID  string `json:"session_id,omitempty"`
	TemplateID string `json:"template_id"`
}

type SetFieldParams struct {
	SessionID string          `json:"session_id,omitempty"`
	Field     string          `json:"field"`
	Value     json.RawMessage `json:"value"`
}

type SetBlockParams struct {
	SessionID string          `json:"session_id,omitempty"`
	BlockID   string          `json:"block_id"`
	Value     json.RawMessage `json:"value"`
}

type BrandSuggestionsParams struct {
	PetID    int64                  `json:"pet_id"`
	Category template.BrandCategory `json:"category"`
	Query    string                 `json:"query,omitempty"`
	Limit    int                    `json:"limit,omitempty"`
}

type RecordBrandParams struct {
	PetID    int64                  `json:"pet_id"`
	Category template.BrandCategory `json:"category"`
	Brand    string                 `json:"brand"`
	Product  string                 `json:"product,omitempty"`
}

type RecentTemplatesParams struct {
	PetID int64 `json:"pet_id"`
	Limit int   `json:"limit,omitempty"`
}

type DraftParams struct {
	PetID      int64        `json:"pet_id"`
	ActivityID *int64       `json:"activity_id,omitempty"`
	Mode       editor.Shell `json:"mode"`
	TemplateID string       `json:"template_id,omitempty"`
}

type ListDraftsParams struct {
	PetID int64 `json:"pet_id"`
}

type SweepDraftsParams struct {
	// MaxAge is a Go duration such as "168h". Empty uses the configured age.
	MaxAge string `json:"max_age,omitempty"`
}

type ListPetsParams struct {
	IncludeArchived bool `json:"include_archived,omitempty"`
}

type PetIDParams struct {
	ID int64 `json:"id"`
}

type UpdatePetParams struct {
	ID int64 `json:"id"`
	pet.UpdateRequest
}

type ReorderPetsParams struct {
	IDs []int64 `json:"ids"`
}

type SaveActivityParams struct {
	ID   *int64                `json:"id,omitempty"`
	Data form.ActivityFormData `json:"data"`
}

type ActivityIDParams struct {
	ID int64 `json:"id"`
}

type ListActivitiesParams struct {
	PetID      *int64     `json:"pet_id,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}

type SearchActivitiesParams struct {
	Query  string `json:"query"`
	PetID  *int64 `json:"pet_id,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

type ExportActivitiesParams struct {
	PetID *int64 `json:"pet_id,omitempty"`
}

type WeightTrendParams struct {
	PetID int64      `json:"pet_id"`
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
	Unit  string     `json:"unit,omitempty"`
}

// EditorResponse wraps a session view.
type EditorResponse struct {
	Session editor.SessionView `json:"session"`
}

// SessionID returns the id of the wrapped session.
func (r *EditorResponse) SessionID() string {
	return r.Session.ID
}

// TemplateSummary is a template without its block definitions.
type TemplateSummary struct {
	ID                string            `json:"id"`
	Category          template.Category `json:"category"`
	Subcategory       string            `json:"subcategory"`
	Label             string            `json:"label"`
	Icon              string            `json:"icon"`
	IsQuickLogEnabled bool              `json:"isQuickLogEnabled"`
	BlockCount        int               `json:"blockCount"`
}

type SweepResponse struct {
	Removed int `json:"removed"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

// QuickLogParams logs an activity in one call through a quick-log editor.
type QuickLogParams struct {
	PetID       int64          `json:"pet_id"`
	TemplateID  string         `json:"template_id"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Blocks      map[string]any `json:"blocks,omitempty"`
}

type AttachmentIDParams struct {
	ID int64 `json:"id"`
}

type ActivityAttachmentsParams struct {
	ActivityID int64 `json:"activity_id"`
}

// UploadPhotoParams carries a photo; photo_bytes is base64 in JSON.
type UploadPhotoParams struct {
	Filename   string `json:"filename"`
	PhotoBytes []byte `json:"photo_bytes"`
}

type PhotoIDParams struct {
	PhotoID string `json:"photo_id"`
}

type PhotoResponse struct {
	PhotoID string `json:"photo_id"`
}

// AppStatistics summarises a tenant's data.
type AppStatistics struct {
	TotalPets        int   `json:"total_pets"`
	ActivePets       int   `json:"active_pets"`
	ArchivedPets     int   `json:"archived_pets"`
	TotalActivities  int   `json:"total_activities"`
	TotalAttachments int   `json:"total_attachments"`
	TotalPhotos      int   `json:"total_photos"`
	TotalPhotoSize   int64 `json:"total_photo_size"`
}
