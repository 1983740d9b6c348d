package template

import "strings"

// Category is the top-level grouping of an activity.
type Category string

const (
	CategoryHealth    Category = "health"
	CategoryGrowth    Category = "growth"
	CategoryDiet      Category = "diet"
	CategoryLifestyle Category = "lifestyle"
	CategoryExpense   Category = "expense"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryHealth, CategoryGrowth, CategoryDiet, CategoryLifestyle, CategoryExpense}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryHealth, CategoryGrowth, CategoryDiet, CategoryLifestyle, CategoryExpense:
		return true
	}
	return false
}

// Label returns the display name of the category.
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// BlockType tags the kind of a block. The set is closed.
type BlockType string

const (
	BlockTitle       BlockType = "title"
	BlockNotes       BlockType = "notes"
	BlockTime        BlockType = "time"
	BlockSubcategory BlockType = "subcategory"
	BlockMeasurement BlockType = "measurement"
	BlockRating      BlockType = "rating"
	BlockPortion     BlockType = "portion"
	BlockTimer       BlockType = "timer"
	BlockLocation    BlockType = "location"
	BlockWeather     BlockType = "weather"
	BlockChecklist   BlockType = "checklist"
	BlockAttachment  BlockType = "attachment"
	BlockCost        BlockType = "cost"
	BlockReminder    BlockType = "reminder"
	BlockPeople      BlockType = "people"
	BlockRecurrence  BlockType = "recurrence"
)

// BlockTypes lists every supported block type.
func BlockTypes() []BlockType {
	return []BlockType{
		BlockTitle, BlockNotes, BlockTime, BlockSubcategory, BlockMeasurement, BlockRating,
		BlockPortion, BlockTimer, BlockLocation, BlockWeather, BlockChecklist, BlockAttachment,
		BlockCost, BlockReminder, BlockPeople, BlockRecurrence,
	}
}

// Known reports whether t belongs to the closed set of block types.
func (t BlockType) Known() bool {
	for _, known := range BlockTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// BlockDef describes one field unit inside a template.
type BlockDef struct {
	ID       string    `json:"id"`
	Type     BlockType `json:"type"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
	// Config holds one of the *Config types below, matching Type. Nil means defaults.
	Config any `json:"config,omitempty"`
}

// ActivityTemplate is an immutable descriptor of one activity type.
type ActivityTemplate struct {
	ID                string     `json:"id"`
	Category          Category   `json:"category"`
	Subcategory       string     `json:"subcategory"`
	Label             string     `json:"label"`
	Icon              string     `json:"icon"`
	Description       string     `json:"description"`
	IsQuickLogEnabled bool       `json:"isQuickLogEnabled"`
	Blocks            []BlockDef `json:"blocks"`
}

// Block returns the block with the given id.
func (t ActivityTemplate) Block(id string) (BlockDef, bool) {
	for _, b := range t.Blocks {
		if b.ID == id {
			return b, true
		}
	}
	return BlockDef{}, false
}

// RequiredBlocks returns the required blocks in template order.
func (t ActivityTemplate) RequiredBlocks() []BlockDef {
	var out []BlockDef
	for _, b := range t.Blocks {
		if b.Required {
			out = append(out, b)
		}
	}
	return out
}

// TimeMode selects which parts of a timestamp a time block collects.
type TimeMode string

const (
	TimeModeDateTime TimeMode = "datetime"
	TimeModeDate     TimeMode = "date"
	TimeModeTime     TimeMode = "time"
)

type TitleConfig struct {
	Placeholder string `json:"placeholder,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
}

type NotesConfig struct {
	Placeholder string `json:"placeholder,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
	Markup      bool   `json:"markup,omitempty"`
}

type TimeConfig struct {
	Mode        TimeMode `json:"mode,omitempty"`
	AllowFuture bool     `json:"allowFuture,omitempty"`
}

type SubcategoryConfig struct {
	Options []string `json:"options"`
}

type MeasurementConfig struct {
	MeasurementType string   `json:"measurementType"`
	Units           []string `json:"units"`
	DefaultUnit     string   `json:"defaultUnit,omitempty"`
}

type RatingConfig struct {
	Kind   string   `json:"kind"`
	Labels []string `json:"labels,omitempty"`
}

// BrandCategory scopes brand memory suggestions for a portion block.
type BrandCategory string

const (
	BrandFood       BrandCategory = "food"
	BrandTreats     BrandCategory = "treats"
	BrandMedication BrandCategory = "medication"
	BrandGrooming   BrandCategory = "grooming"
	BrandToys       BrandCategory = "toys"
)

// Valid reports whether c is a known brand category.
func (c BrandCategory) Valid() bool {
	switch c {
	case BrandFood, BrandTreats, BrandMedication, BrandGrooming, BrandToys:
		return true
	}
	return false
}

type PortionConfig struct {
	BrandCategory BrandCategory `json:"brandCategory"`
	DefaultUnit   string        `json:"defaultUnit,omitempty"`
	ShowBrand     bool          `json:"showBrand"`
}

type TimerConfig struct {
	DefaultMinutes int `json:"defaultMinutes,omitempty"`
}

type LocationConfig struct {
	Suggestions []string `json:"suggestions,omitempty"`
}

type ChecklistConfig struct {
	Items []string `json:"items"`
}

type AttachmentConfig struct {
	MaxFiles    int      `json:"maxFiles,omitempty"`
	MaxFileSize int64    `json:"maxFileSize,omitempty"`
	Accept      []string `json:"accept,omitempty"`
}

type CostConfig struct {
	DefaultCurrency string `json:"defaultCurrency,omitempty"`
	Category        string `json:"category,omitempty"`
	AllowReceipt    bool   `json:"allowReceipt,omitempty"`
}

type PeopleConfig struct {
	Roles []string `json:"roles,omitempty"`
}
