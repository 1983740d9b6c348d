package block

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pawdiary/pawdiary/internal/domain/template"
)

const (
	// MaxAttachmentFiles caps files per attachment block.
	MaxAttachmentFiles = 10
	// MaxFileSize is the per-file ceiling in bytes (10 MB).
	MaxFileSize int64 = 10 * 1024 * 1024
	// MaxTitleLength is the hard title ceiling.
	MaxTitleLength = 255
)

// AllowedMimeTypes lists the attachment types accepted by default.
var AllowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/heic",
	"application/pdf",
	"video/mp4",
}

const (
	MsgUnitRequired     = "Select a unit for the amount"
	MsgReactionDetail   = "Describe the symptoms or severity of the reaction"
	MsgTimerOrder       = "End time must be after start time"
	MsgOptionNotAllowed = "Choose one of the available options"
)

// refine decodes a schema-valid value and applies the rules that depend on config,
// the clock or more than one field.
func (v *Validator) refine(bt template.BlockType, raw json.RawMessage, cfg any) Result {
	switch bt {
	case template.BlockTitle:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decodeFailure(err)
		}
		max := MaxTitleLength
		if c, ok := cfg.(*template.TitleConfig); ok && c != nil && c.MaxLength > 0 && c.MaxLength < max {
			max = c.MaxLength
		}
		if utf8.RuneCountInString(s) > max {
			return failure(fieldErr("", fmt.Sprintf("Title must be at most %d characters", max)))
		}
		return Result{Success: true, Data: s}

	case template.BlockNotes:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decodeFailure(err)
		}
		max := DefaultNotesMaxLength
		if c, ok := cfg.(*template.NotesConfig); ok && c != nil && c.MaxLength > 0 {
			max = c.MaxLength
		}
		if CountNotes(s, max).Level == CounterExceeded {
			return failure(fieldErr("", fmt.Sprintf("Notes must be at most %d characters", max)))
		}
		return Result{Success: true, Data: s}

	case template.BlockTime:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decodeFailure(err)
		}
		mode, allowFuture := template.TimeModeDateTime, false
		if c, ok := cfg.(*template.TimeConfig); ok && c != nil {
			if c.Mode != "" {
				mode = c.Mode
			}
			allowFuture = c.AllowFuture
		}
		now := v.Now()
		t, err := ParseLocal(s, v.loc, now)
		if err != nil {
			return failure(fieldErr("", MsgTimeInvalid))
		}
		if msg := CheckTimeWindow(t, now, mode, allowFuture); msg != "" {
			return failure(fieldErr("", msg))
		}
		return Result{Success: true, Data: t}

	case template.BlockSubcategory:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decodeFailure(err)
		}
		if c, ok := cfg.(*template.SubcategoryConfig); ok && c != nil && len(c.Options) > 0 && !contains(c.Options, s) {
			return failure(fieldErr("", MsgOptionNotAllowed))
		}
		return Result{Success: true, Data: s}

	case template.BlockMeasurement:
		var m MeasurementValue
		if err := json.Unmarshal(raw, &m); err != nil {
			return decodeFailure(err)
		}
		units := MeasurementUnits[m.MeasurementType]
		if c, ok := cfg.(*template.MeasurementConfig); ok && c != nil {
			if len(c.Units) > 0 {
				units = c.Units
			} else if u, ok := MeasurementUnits[c.MeasurementType]; ok {
				units = u
			}
			if m.MeasurementType == "" {
				m.MeasurementType = c.MeasurementType
			}
		}
		if len(units) > 0 && !contains(units, m.Unit) {
			return failure(fieldErr("unit", fmt.Sprintf("Unit must be one of %s", strings.Join(units, ", "))))
		}
		return Result{Success: true, Data: m}

	case template.BlockRating:
		var r RatingValue
		if err := json.Unmarshal(raw, &r); err != nil {
			return decodeFailure(err)
		}
		return Result{Success: true, Data: r}

	case template.BlockPortion:
		var p PortionValue
		if err := json.Unmarshal(raw, &p); err != nil {
			return decodeFailure(err)
		}
		var errs []FieldError
		if p.Amount != nil && p.Unit == "" {
			errs = append(errs, fieldErr("unit", MsgUnitRequired))
		}
		if p.AllergicReaction && len(p.Symptoms) == 0 && p.Severity == "" {
			errs = append(errs, fieldErr("symptoms", MsgReactionDetail))
		}
		if len(errs) > 0 {
			return failure(errs...)
		}
		return Result{Success: true, Data: p}

	case template.BlockTimer:
		var tv TimerValue
		if err := json.Unmarshal(raw, &tv); err != nil {
			return decodeFailure(err)
		}
		if tv.StartTime != "" && tv.EndTime != "" {
			now := v.Now()
			start, err := ParseLocal(tv.StartTime, v.loc, now)
			if err != nil {
				return failure(fieldErr("startTime", MsgTimeInvalid))
			}
			end, err := ParseLocal(tv.EndTime, v.loc, now)
			if err != nil {
				return failure(fieldErr("endTime", MsgTimeInvalid))
			}
			if end.Before(start) {
				return failure(fieldErr("endTime", MsgTimerOrder))
			}
		}
		return Result{Success: true, Data: tv}

	case template.BlockLocation:
		var l LocationValue
		if err := json.Unmarshal(raw, &l); err != nil {
			return decodeFailure(err)
		}
		return Result{Success: true, Data: l}

	case template.BlockWeather:
		var w WeatherValue
		if err := json.Unmarshal(raw, &w); err != nil {
			return decodeFailure(err)
		}
		return Result{Success: true, Data: w}

	case template.BlockChecklist:
		var c ChecklistValue
		if err := json.Unmarshal(raw, &c); err != nil {
			return decodeFailure(err)
		}
		return Result{Success: true, Data: c}

	case template.BlockAttachment:
		var a AttachmentValue
		if err := json.Unmarshal(raw, &a); err != nil {
			return decodeFailure(err)
		}
		rules := attachmentRules(cfg)
		if len(a.Files) > rules.maxFiles {
			return failure(fieldErr("files", fmt.Sprintf("Attach at most %d files", rules.maxFiles)))
		}
		var errs []FieldError
		for i, f := range a.Files {
			errs = append(errs, rules.check(fmt.Sprintf("files.%d", i), f)...)
		}
		if len(errs) > 0 {
			return failure(errs...)
		}
		return Result{Success: true, Data: a}

	case template.BlockCost:
		var c CostValue
		if err := json.Unmarshal(raw, &c); err != nil {
			return decodeFailure(err)
		}
		if cc, ok := cfg.(*template.CostConfig); ok && cc != nil && c.Category == "" {
			c.Category = cc.Category
		}
		if c.Receipt != nil {
			if errs := attachmentRules(nil).check("receipt", *c.Receipt); len(errs) > 0 {
				return failure(errs...)
			}
		}
		return Result{Success: true, Data: c}

	case template.BlockReminder:
		var r ReminderValue
		if err := json.Unmarshal(raw, &r); err != nil {
			return decodeFailure(err)
		}
		if _, err := ParseLocal(r.Date, v.loc, v.Now()); err != nil {
			return failure(fieldErr("date", MsgTimeInvalid))
		}
		return Result{Success: true, Data: r}

	case template.BlockPeople:
		var p PeopleValue
		if err := json.Unmarshal(raw, &p); err != nil {
			return decodeFailure(err)
		}
		return Result{Success: true, Data: p}

	case template.BlockRecurrence:
		var r RecurrenceValue
		if err := json.Unmarshal(raw, &r); err != nil {
			return decodeFailure(err)
		}
		if r.EndDate != "" {
			if _, err := ParseLocal(r.EndDate, v.loc, v.Now()); err != nil {
				return failure(fieldErr("endDate", MsgTimeInvalid))
			}
		}
		return Result{Success: true, Data: r}
	}
	return failure(fieldErr("", fmt.Sprintf("%s: %s", ErrUnsupportedType, bt)))
}

type fileRules struct {
	maxFiles int
	maxSize  int64
	accept   []string
}

func attachmentRules(cfg any) fileRules {
	r := fileRules{maxFiles: MaxAttachmentFiles, maxSize: MaxFileSize, accept: AllowedMimeTypes}
	if c, ok := cfg.(*template.AttachmentConfig); ok && c != nil {
		if c.MaxFiles > 0 && c.MaxFiles < r.maxFiles {
			r.maxFiles = c.MaxFiles
		}
		if c.MaxFileSize > 0 && c.MaxFileSize < r.maxSize {
			r.maxSize = c.MaxFileSize
		}
		if len(c.Accept) > 0 {
			r.accept = c.Accept
		}
	}
	return r
}

func (r fileRules) check(path string, f File) []FieldError {
	var errs []FieldError
	if f.Size > r.maxSize {
		errs = append(errs, fieldErr(path+".size", fmt.Sprintf("%s exceeds the %d MB limit", f.Name, r.maxSize/(1024*1024))))
	}
	if !contains(r.accept, strings.ToLower(f.MimeType)) {
		errs = append(errs, fieldErr(path+".mimeType", fmt.Sprintf("File type %s is not allowed", f.MimeType)))
	}
	return errs
}

func decodeFailure(err error) Result {
	return failure(fieldErr("", fmt.Sprintf("Invalid value: %v", err)))
}
