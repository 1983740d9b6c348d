package activity

import (
	"encoding/json"

	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// WeightKg returns the weight carried by a growth activity, in kilograms.
// The first measurement block whose type is weight wins; a block with id
// "weight" is accepted without a measurement type.
func WeightKg(category template.Category, blocks map[string]json.RawMessage) (float64, bool) {
	if category != template.CategoryGrowth {
		return 0, false
	}
	if kg, ok := weightFrom(blocks["weight"], true); ok {
		return kg, true
	}
	for id, raw := range blocks {
		if id == "weight" {
			continue
		}
		if kg, ok := weightFrom(raw, false); ok {
			return kg, true
		}
	}
	return 0, false
}

func weightFrom(raw json.RawMessage, byID bool) (float64, bool) {
	if block.IsEmpty(raw) {
		return 0, false
	}
	var m block.MeasurementValue
	if err := json.Unmarshal(raw, &m); err != nil || m.Unit == "" {
		return 0, false
	}
	if m.MeasurementType != "weight" && !(byID && m.MeasurementType == "") {
		return 0, false
	}
	kg, err := block.WeightToKg(m.Value, m.Unit)
	if err != nil || kg <= 0 {
		return 0, false
	}
	return kg, true
}

// WeightKg returns the weight this activity recorded.
func (a Activity) WeightKg() (float64, bool) {
	return WeightKg(a.Category, a.Blocks)
}
