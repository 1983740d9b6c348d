package form

import (
	"errors"
	"strings"

	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// ErrInvalid is returned by Check when the form has errors.
var ErrInvalid = errors.New("form is invalid")

// Errors collects field-scoped messages keyed by field name or block id.
type Errors map[string][]block.FieldError

// Add records a message for key.
func (e Errors) Add(key, path, msg string) {
	e[key] = append(e[key], block.FieldError{Path: path, Message: msg})
}

// Empty reports whether no errors were recorded.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Merge copies other into e.
func (e Errors) Merge(other Errors) {
	for k, v := range other {
		e[k] = append(e[k], v...)
	}
}

// ValidateForm applies the top-level rules: a positive pet id, a known
// category and a non-empty subcategory. Block values are not inspected here.
func ValidateForm(d ActivityFormData) Errors {
	errs := Errors{}
	if d.PetID <= 0 {
		errs.Add("petId", "", "Select a pet")
	}
	if !d.Category.Valid() {
		errs.Add("category", "", "Select a category")
	}
	if strings.TrimSpace(d.Subcategory) == "" {
		errs.Add("subcategory", "", "Select a subcategory")
	}
	return errs
}

// ValidateBlocks runs each listed block's own validator against the form value.
func ValidateBlocks(v *block.Validator, d ActivityFormData, blocks []template.BlockDef) Errors {
	errs := Errors{}
	for _, def := range blocks {
		res := v.ValidateBlock(def, d.Blocks[def.ID])
		if !res.Success {
			errs[def.ID] = res.Errors
		}
	}
	return errs
}

// Check validates the whole form against tpl: top-level rules plus every block.
func Check(v *block.Validator, d ActivityFormData, tpl template.ActivityTemplate) Errors {
	errs := ValidateForm(d)
	errs.Merge(ValidateBlocks(v, d, tpl.Blocks))
	return errs
}
