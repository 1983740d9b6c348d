package template

// Shared block builders used by the catalog files.

func titleBlock(placeholder string) BlockDef {
	return BlockDef{
		ID:       "title",
		Type:     BlockTitle,
		Label:    "Title",
		Required: true,
		Config:   &TitleConfig{Placeholder: placeholder, MaxLength: 255},
	}
}

func timeBlock(mode TimeMode) BlockDef {
	label := "When"
	if mode == TimeModeDate {
		label = "Date"
	}
	return BlockDef{
		ID:       "time",
		Type:     BlockTime,
		Label:    label,
		Required: true,
		Config:   &TimeConfig{Mode: mode},
	}
}

func notesBlock() BlockDef {
	return BlockDef{
		ID:     "notes",
		Type:   BlockNotes,
		Label:  "Notes",
		Config: &NotesConfig{MaxLength: 1000, Markup: true},
	}
}

func portionBlock(category BrandCategory, unit string, required bool) BlockDef {
	return BlockDef{
		ID:       "portion",
		Type:     BlockPortion,
		Label:    "Portion",
		Required: required,
		Config:   &PortionConfig{BrandCategory: category, DefaultUnit: unit, ShowBrand: true},
	}
}

func ratingBlock(kind, label string) BlockDef {
	return BlockDef{
		ID:     kind,
		Type:   BlockRating,
		Label:  label,
		Config: &RatingConfig{Kind: kind, Labels: ratingLabels[kind]},
	}
}

var ratingLabels = map[string][]string{
	"mood":     {"Upset", "Low", "Okay", "Happy", "Excited"},
	"energy":   {"Exhausted", "Tired", "Normal", "Active", "Hyper"},
	"appetite": {"Refused", "Picky", "Normal", "Good", "Ravenous"},
	"severity": {"Barely", "Mild", "Noticeable", "Strong", "Severe"},
}

func costBlock(category string, required bool) BlockDef {
	return BlockDef{
		ID:       "cost",
		Type:     BlockCost,
		Label:    "Cost",
		Required: required,
		Config:   &CostConfig{DefaultCurrency: "USD", Category: category, AllowReceipt: true},
	}
}

func attachmentBlock(label string) BlockDef {
	return BlockDef{
		ID:     "attachments",
		Type:   BlockAttachment,
		Label:  label,
		Config: &AttachmentConfig{MaxFiles: 10, MaxFileSize: 10 * 1024 * 1024},
	}
}

func timerBlock(minutes int) BlockDef {
	return BlockDef{
		ID:     "duration",
		Type:   BlockTimer,
		Label:  "Duration",
		Config: &TimerConfig{DefaultMinutes: minutes},
	}
}

func checklistBlock(label string, items ...string) BlockDef {
	return BlockDef{
		ID:     "checklist",
		Type:   BlockChecklist,
		Label:  label,
		Config: &ChecklistConfig{Items: items},
	}
}

func reminderBlock() BlockDef {
	return BlockDef{ID: "reminder", Type: BlockReminder, Label: "Reminder"}
}

func recurrenceBlock() BlockDef {
	return BlockDef{ID: "recurrence", Type: BlockRecurrence, Label: "Repeats"}
}

func locationBlock(suggestions ...string) BlockDef {
	return BlockDef{
		ID:     "location",
		Type:   BlockLocation,
		Label:  "Location",
		Config: &LocationConfig{Suggestions: suggestions},
	}
}

func peopleBlock(roles ...string) BlockDef {
	return BlockDef{
		ID:     "people",
		Type:   BlockPeople,
		Label:  "People",
		Config: &PeopleConfig{Roles: roles},
	}
}
