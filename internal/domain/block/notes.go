package block

import (
	"strings"
	"unicode/utf8"
)

// DefaultNotesMaxLength applies when a notes block has no configured limit.
const DefaultNotesMaxLength = 1000

// CounterLevel escalates as a notes field approaches its limit.
type CounterLevel string

const (
	CounterNormal   CounterLevel = "normal"
	CounterWarning  CounterLevel = "warning"
	CounterCritical CounterLevel = "critical"
	CounterExceeded CounterLevel = "exceeded"
)

// NotesCounter is the live character counter shown under a notes field.
type NotesCounter struct {
	Length    int          `json:"length"`
	Max       int          `json:"max"`
	Remaining int          `json:"remaining"`
	Level     CounterLevel `json:"level"`
}

// CountNotes measures text against max. Warning starts at 80%, critical at 95%.
func CountNotes(text string, max int) NotesCounter {
	if max <= 0 {
		max = DefaultNotesMaxLength
	}
	n := utf8.RuneCountInString(text)
	c := NotesCounter{Length: n, Max: max, Remaining: max - n, Level: CounterNormal}
	switch {
	case n > max:
		c.Level = CounterExceeded
	case n*100 >= max*95:
		c.Level = CounterCritical
	case n*100 >= max*80:
		c.Level = CounterWarning
	}
	return c
}

// Markup is an inline formatting toggle for notes.
type Markup string

const (
	MarkupBold   Markup = "bold"
	MarkupItalic Markup = "italic"
	MarkupBullet Markup = "bullet"
)

// ApplyMarkup rewrites the raw text for a toggle over the rune range [start, end).
// Bold and italic wrap (or unwrap) the selection; bullet toggles a "- " prefix on
// every selected line.
func ApplyMarkup(text string, start, end int, m Markup) string {
	runes := []rune(text)
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start > end {
		start, end = end, start
	}
	before, sel, after := string(runes[:start]), string(runes[start:end]), string(runes[end:])

	switch m {
	case MarkupBold:
		return before + toggleWrap(sel, "**") + after
	case MarkupItalic:
		return before + toggleWrap(sel, "_") + after
	case MarkupBullet:
		lineStart := strings.LastIndex(before, "\n") + 1
		head, body := before[:lineStart], before[lineStart:]+sel
		return head + toggleBullets(body) + after
	default:
		return text
	}
}

func toggleWrap(s, marker string) string {
	if len(s) >= 2*len(marker) && strings.HasPrefix(s, marker) && strings.HasSuffix(s, marker) {
		return s[len(marker) : len(s)-len(marker)]
	}
	return marker + s + marker
}

func toggleBullets(s string) string {
	lines := strings.Split(s, "\n")
	all := true
	for _, line := range lines {
		if !strings.HasPrefix(line, "- ") {
			all = false
			break
		}
	}
	for i, line := range lines {
		if all {
			lines[i] = strings.TrimPrefix(line, "- ")
		} else if !strings.HasPrefix(line, "- ") {
			lines[i] = "- " + line
		}
	}
	return strings.Join(lines, "\n")
}
