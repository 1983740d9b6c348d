package render

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/memory"
	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// brandSuggestionLimit caps the suggestions shown under a portion block.
const brandSuggestionLimit = 8

type TextWidget struct {
	Value       string `json:"value"`
	Placeholder string `json:"placeholder,omitempty"`
	MaxLength   int    `json:"maxLength"`
}

type NotesWidget struct {
	Value       string             `json:"value"`
	Placeholder string             `json:"placeholder,omitempty"`
	Counter     block.NotesCounter `json:"counter"`
	Markup      bool               `json:"markup"`
}

type TimeWidget struct {
	Mode        template.TimeMode `json:"mode"`
	Value       string            `json:"value"`
	AllowFuture bool              `json:"allowFuture"`
	Min         string            `json:"min"`
	Max         string            `json:"max,omitempty"`
}

type SelectWidget struct {
	Value   string   `json:"value"`
	Options []string `json:"options"`
}

type MeasurementWidget struct {
	MeasurementType string   `json:"measurementType"`
	Value           *float64 `json:"value,omitempty"`
	Unit            string   `json:"unit"`
	Units           []string `json:"units"`
}

type RatingWidget struct {
	Kind   string   `json:"kind"`
	Rating int      `json:"rating"`
	Labels []string `json:"labels,omitempty"`
}

type PortionWidget struct {
	Value         block.PortionValue           `json:"value"`
	UnitGroups    map[block.UnitGroup][]string `json:"unitGroups"`
	BrandCategory template.BrandCategory       `json:"brandCategory"`
	ShowBrand     bool                         `json:"showBrand"`
	Suggestions   []memory.BrandSuggestion     `json:"suggestions,omitempty"`
}

type TimerWidget struct {
	Value          block.TimerValue `json:"value"`
	DefaultMinutes int              `json:"defaultMinutes"`
}

type LocationWidget struct {
	Value       block.LocationValue `json:"value"`
	Suggestions []string            `json:"suggestions,omitempty"`
}

type WeatherWidget struct {
	Value      block.WeatherValue `json:"value"`
	Conditions []string           `json:"conditions"`
}

type ChecklistWidget struct {
	Items []block.ChecklistItem `json:"items"`
	Done  int                   `json:"done"`
}

type AttachmentWidget struct {
	Files       []block.File `json:"files"`
	MaxFiles    int          `json:"maxFiles"`
	MaxFileSize int64        `json:"maxFileSize"`
	Accept      []string     `json:"accept"`
	Remaining   int          `json:"remaining"`
}

type CostWidget struct {
	Value        block.CostValue `json:"value"`
	Currencies   []string        `json:"currencies"`
	Categories   []string        `json:"categories"`
	AllowReceipt bool            `json:"allowReceipt"`
}

type ReminderWidget struct {
	Value   block.ReminderValue `json:"value"`
	Repeats []string            `json:"repeats"`
}

type PeopleWidget struct {
	People []block.Person `json:"people"`
	Roles  []string       `json:"roles"`
}

type RecurrenceWidget struct {
	Value       block.RecurrenceValue `json:"value"`
	Frequencies []string              `json:"frequencies"`
}

var (
	weatherConditions = []string{"sunny", "cloudy", "rainy", "snowy", "windy", "stormy"}
	reminderRepeats   = []string{"none", "daily", "weekly", "monthly"}
	personRoles       = []string{"vet", "groomer", "trainer", "sitter", "walker", "other"}
	frequencies       = []string{"daily", "weekly", "monthly", "yearly"}
)

// configAs returns the block's config as *T. A nil config yields a zero T.
func configAs[T any](def template.BlockDef) (*T, error) {
	if def.Config == nil {
		return new(T), nil
	}
	c, ok := def.Config.(*T)
	if !ok {
		return nil, fmt.Errorf("block %s: config %T does not match type %s", def.ID, def.Config, def.Type)
	}
	if c == nil {
		return new(T), nil
	}
	return c, nil
}

// decode fills dst from a value that may be empty or malformed. Validation
// reports bad values; the widget just starts blank.
func decode(raw json.RawMessage, dst any) {
	if block.IsEmpty(raw) {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

func (r *Registry) builtin() map[template.BlockType]Factory {
	static := func(fn RendererFunc) Factory {
		return func() (Renderer, error) { return fn, nil }
	}
	return map[template.BlockType]Factory{
		template.BlockTitle:       static(renderTitle),
		template.BlockNotes:       static(renderNotes),
		template.BlockTime:        static(renderTime),
		template.BlockSubcategory: static(renderSubcategory),
		template.BlockMeasurement: static(renderMeasurement),
		template.BlockRating:      static(renderRating),
		template.BlockPortion:     static(r.renderPortion),
		template.BlockTimer:       static(renderTimer),
		template.BlockLocation:    static(renderLocation),
		template.BlockWeather:     static(renderWeather),
		template.BlockChecklist:   static(renderChecklist),
		template.BlockAttachment:  static(renderAttachment),
		template.BlockCost:        static(renderCost),
		template.BlockReminder:    static(renderReminder),
		template.BlockPeople:      static(renderPeople),
		template.BlockRecurrence:  static(renderRecurrence),
	}
}

func renderTitle(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.TitleConfig](in.Def)
	if err != nil {
		return nil, err
	}
	w := TextWidget{Placeholder: cfg.Placeholder, MaxLength: block.MaxTitleLength}
	if cfg.MaxLength > 0 && cfg.MaxLength < w.MaxLength {
		w.MaxLength = cfg.MaxLength
	}
	decode(in.Value, &w.Value)
	return w, nil
}

func renderNotes(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.NotesConfig](in.Def)
	if err != nil {
		return nil, err
	}
	w := NotesWidget{Placeholder: cfg.Placeholder, Markup: cfg.Markup}
	decode(in.Value, &w.Value)
	w.Counter = block.CountNotes(w.Value, cfg.MaxLength)
	return w, nil
}

func renderTime(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.TimeConfig](in.Def)
	if err != nil {
		return nil, err
	}
	mode := cfg.Mode
	if mode == "" {
		mode = template.TimeModeDateTime
	}
	w := TimeWidget{
		Mode:        mode,
		AllowFuture: cfg.AllowFuture,
		Min:         block.FormatLocal(in.Now.AddDate(-block.MaxPastYears, 0, 0), mode, in.Loc),
	}
	if cfg.AllowFuture {
		w.Max = block.FormatLocal(block.Latest(in.Now), mode, in.Loc)
	} else {
		w.Max = block.FormatLocal(in.Now, mode, in.Loc)
	}
	var raw string
	decode(in.Value, &raw)
	if t, err := block.ParseLocal(raw, in.Loc, in.Now); err == nil {
		w.Value = block.FormatLocal(t, mode, in.Loc)
	} else {
		w.Value = raw
	}
	return w, nil
}

func renderSubcategory(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.SubcategoryConfig](in.Def)
	if err != nil {
		return nil, err
	}
	w := SelectWidget{Options: cfg.Options}
	decode(in.Value, &w.Value)
	return w, nil
}

func renderMeasurement(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.MeasurementConfig](in.Def)
	if err != nil {
		return nil, err
	}
	units := cfg.Units
	if len(units) == 0 {
		units = block.MeasurementUnits[cfg.MeasurementType]
	}
	w := MeasurementWidget{MeasurementType: cfg.MeasurementType, Units: units, Unit: cfg.DefaultUnit}

	var v block.MeasurementValue
	decode(in.Value, &v)
	if v.Value > 0 {
		w.Value = &v.Value
	}
	if v.Unit != "" {
		w.Unit = v.Unit
	}
	if w.Unit == "" && len(units) > 0 {
		w.Unit = units[0]
	}
	return w, nil
}

func renderRating(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.RatingConfig](in.Def)
	if err != nil {
		return nil, err
	}
	var v block.RatingValue
	decode(in.Value, &v)
	return RatingWidget{Kind: cfg.Kind, Rating: v.Rating, Labels: cfg.Labels}, nil
}

func (r *Registry) renderPortion(ctx context.Context, in Input) (any, error) {
	cfg, err := configAs[template.PortionConfig](in.Def)
	if err != nil {
		return nil, err
	}
	w := PortionWidget{
		UnitGroups:    block.PortionUnits,
		BrandCategory: cfg.BrandCategory,
		ShowBrand:     cfg.ShowBrand,
	}
	decode(in.Value, &w.Value)
	if w.Value.Unit == "" {
		w.Value.Unit = cfg.DefaultUnit
	}

	if r.brands != nil && cfg.ShowBrand && cfg.BrandCategory.Valid() && in.PetID > 0 {
		sugg, err := r.brands.Suggestions(ctx, in.PetID, cfg.BrandCategory, strings.TrimSpace(w.Value.Brand), brandSuggestionLimit)
		if err != nil {
			// Suggestions are optional; the portion input still works without them.
			r.logger.Warn("brand suggestions unavailable", "pet_id", in.PetID, "category", cfg.BrandCategory, "error", err)
		} else {
			w.Suggestions = sugg
		}
	}
	return w, nil
}

func renderTimer(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.TimerConfig](in.Def)
	if err != nil {
		return nil, err
	}
	w := TimerWidget{DefaultMinutes: cfg.DefaultMinutes}
	decode(in.Value, &w.Value)
	if block.IsEmpty(in.Value) {
		w.Value.DurationMinutes = cfg.DefaultMinutes
	}
	return w, nil
}

func renderLocation(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.LocationConfig](in.Def)
	if err != nil {
		return nil, err
	}
	w := LocationWidget{Suggestions: cfg.Suggestions}
	decode(in.Value, &w.Value)
	return w, nil
}

func renderWeather(_ context.Context, in Input) (any, error) {
	w := WeatherWidget{Conditions: weatherConditions}
	decode(in.Value, &w.Value)
	return w, nil
}

// renderChecklist lists configured items first, in order, then any extra items the user added.
func renderChecklist(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.ChecklistConfig](in.Def)
	if err != nil {
		return nil, err
	}
	var v block.ChecklistValue
	decode(in.Value, &v)

	checked := make(map[string]bool, len(v.Items))
	for _, item := range v.Items {
		checked[item.Label] = item.Checked
	}
	w := ChecklistWidget{}
	seen := make(map[string]bool)
	for _, label := range cfg.Items {
		w.Items = append(w.Items, block.ChecklistItem{Label: label, Checked: checked[label]})
		seen[label] = true
	}
	for _, item := range v.Items {
		if !seen[item.Label] {
			w.Items = append(w.Items, item)
		}
	}
	for _, item := range w.Items {
		if item.Checked {
			w.Done++
		}
	}
	return w, nil
}

func renderAttachment(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.AttachmentConfig](in.Def)
	if err != nil {
		return nil, err
	}
	w := AttachmentWidget{MaxFiles: block.MaxAttachmentFiles, MaxFileSize: block.MaxFileSize, Accept: block.AllowedMimeTypes}
	if cfg.MaxFiles > 0 && cfg.MaxFiles < w.MaxFiles {
		w.MaxFiles = cfg.MaxFiles
	}
	if cfg.MaxFileSize > 0 && cfg.MaxFileSize < w.MaxFileSize {
		w.MaxFileSize = cfg.MaxFileSize
	}
	if len(cfg.Accept) > 0 {
		w.Accept = cfg.Accept
	}
	var v block.AttachmentValue
	decode(in.Value, &v)
	w.Files = v.Files
	w.Remaining = max(0, w.MaxFiles-len(v.Files))
	return w, nil
}

func renderCost(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.CostConfig](in.Def)
	if err != nil {
		return nil, err
	}
	w := CostWidget{Currencies: block.Currencies, Categories: block.CostCategories, AllowReceipt: cfg.AllowReceipt}
	decode(in.Value, &w.Value)
	if w.Value.Currency == "" {
		w.Value.Currency = cfg.DefaultCurrency
	}
	if w.Value.Category == "" {
		w.Value.Category = cfg.Category
	}
	return w, nil
}

func renderReminder(_ context.Context, in Input) (any, error) {
	w := ReminderWidget{Repeats: reminderRepeats}
	decode(in.Value, &w.Value)
	return w, nil
}

func renderPeople(_ context.Context, in Input) (any, error) {
	cfg, err := configAs[template.PeopleConfig](in.Def)
	if err != nil {
		return nil, err
	}
	w := PeopleWidget{Roles: personRoles}
	if len(cfg.Roles) > 0 {
		w.Roles = cfg.Roles
	}
	var v block.PeopleValue
	decode(in.Value, &v)
	w.People = v.People
	return w, nil
}

func renderRecurrence(_ context.Context, in Input) (any, error) {
	w := RecurrenceWidget{Frequencies: frequencies}
	decode(in.Value, &w.Value)
	if w.Value.Interval == 0 {
		w.Value.Interval = 1
	}
	return w, nil
}
