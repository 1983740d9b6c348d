package form

import (
	"encoding/json"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// ActivityFormData is the mutable entity an editor session works on.
// Blocks maps a block id to its raw value; its shape depends on the block type.
type ActivityFormData struct {
	PetID        int64                      `json:"petId"`
	Category     template.Category          `json:"category"`
	Subcategory  string                     `json:"subcategory"`
	TemplateID   string                     `json:"templateId,omitempty"`
	Title        string                     `json:"title"`
	Description  string                     `json:"description,omitempty"`
	ActivityDate *time.Time                 `json:"activityDate,omitempty"`
	Blocks       map[string]json.RawMessage `json:"blocks"`
}

// New returns empty form data for a pet.
func New(petID int64) ActivityFormData {
	return ActivityFormData{PetID: petID, Blocks: map[string]json.RawMessage{}}
}

// FromTemplate seeds form data from a template's category metadata.
func FromTemplate(petID int64, tpl template.ActivityTemplate) ActivityFormData {
	d := New(petID)
	d.ApplyTemplate(tpl)
	return d
}

// ApplyTemplate re-derives category, subcategory and template id from tpl.
// Entered block values are kept. The title is seeded from the template label
// only while it is blank.
func (d *ActivityFormData) ApplyTemplate(tpl template.ActivityTemplate) {
	d.TemplateID = tpl.ID
	d.Category = tpl.Category
	d.Subcategory = tpl.Subcategory
	if d.Blocks == nil {
		d.Blocks = map[string]json.RawMessage{}
	}
	if d.Title == "" {
		d.Title = tpl.Label
		if _, ok := tpl.Block("title"); ok {
			if raw, err := json.Marshal(tpl.Label); err == nil {
				d.Blocks["title"] = raw
			}
		}
	}
}

// Block returns the raw value bound to a block id.
func (d ActivityFormData) Block(id string) json.RawMessage {
	return d.Blocks[id]
}

// SetBlock binds a raw value to a block id. The title block mirrors into Title.
func (d *ActivityFormData) SetBlock(id string, raw json.RawMessage) {
	if d.Blocks == nil {
		d.Blocks = map[string]json.RawMessage{}
	}
	d.Blocks[id] = append(json.RawMessage(nil), raw...)
	if id == "title" {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			d.Title = s
		}
	}
}

// Clone returns a deep copy.
func (d ActivityFormData) Clone() ActivityFormData {
	out := d
	if d.ActivityDate != nil {
		t := *d.ActivityDate
		out.ActivityDate = &t
	}
	out.Blocks = make(map[string]json.RawMessage, len(d.Blocks))
	for k, v := range d.Blocks {
		out.Blocks[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
