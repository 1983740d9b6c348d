package render

import (
	"encoding/json"

	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// Status is the outcome variant of rendering one block.
type Status string

const (
	StatusReady       Status = "ready"
	StatusUnsupported Status = "unsupported"
	StatusFailed      Status = "failed"
)

const (
	MsgUnsupported = "Unsupported block type"
	MsgFailed      = "Unable to load this block"
)

// BlockView is the view model of one block inside the shared field wrapper.
type BlockView struct {
	BlockID  string             `json:"blockId"`
	Type     template.BlockType `json:"type"`
	Label    string             `json:"label"`
	Required bool               `json:"required"`
	Status   Status             `json:"status"`
	Value    json.RawMessage    `json:"value,omitempty"`

	// Invalid is set whenever the value fails validation, shown or not.
	Invalid bool `json:"invalid"`
	// RequiredHint marks a required block that is still empty.
	RequiredHint bool               `json:"requiredHint,omitempty"`
	Errors       []block.FieldError `json:"errors,omitempty"`

	Widget any `json:"widget,omitempty"`

	Fallback  string `json:"fallback,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// FormView is the ordered list of block views for a form.
type FormView struct {
	Blocks  []BlockView `json:"blocks"`
	Invalid bool        `json:"invalid"`
	Failed  []string    `json:"failed,omitempty"`
}

// Block returns the view for a block id.
func (f FormView) Block(id string) (BlockView, bool) {
	for _, b := range f.Blocks {
		if b.BlockID == id {
			return b, true
		}
	}
	return BlockView{}, false
}
