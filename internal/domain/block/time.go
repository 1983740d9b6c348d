package block

import (
	"fmt"
	"strings"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// MaxPastYears and MaxFutureYears bound a time block around now.
const (
	MaxPastYears   = 10
	MaxFutureYears = 1
)

var (
	MsgTimeFuture  = "Time cannot be in the future"
	MsgTimeTooOld  = fmt.Sprintf("Time cannot be more than %d years in the past", MaxPastYears)
	MsgTimeTooFar  = fmt.Sprintf("Time cannot be more than %d year in the future", MaxFutureYears)
	MsgTimeInvalid = "Enter a valid date and time"
)

const (
	layoutDateTimeSeconds = "2006-01-02T15:04:05"
	layoutDateTime        = "2006-01-02T15:04"
	layoutDateTimeSpace   = "2006-01-02 15:04"
	layoutDate            = "2006-01-02"
	layoutTime            = "15:04"
)

// ParseLocal parses a time block value as local wall-clock time in loc.
// Values carrying an offset are converted to loc. A time-only value takes its
// date from now.
func ParseLocal(s string, loc *time.Location, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{layoutDateTimeSeconds, layoutDateTime, layoutDateTimeSpace, layoutDate} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation(layoutTime, s, loc); err == nil {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// FormatLocal renders t as a local wall-clock string for the given display mode.
func FormatLocal(t time.Time, mode template.TimeMode, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	switch mode {
	case template.TimeModeDate:
		return t.Format(layoutDate)
	case template.TimeModeTime:
		return t.Format(layoutTime)
	default:
		return t.Format(layoutDateTime)
	}
}

// Earliest is the oldest instant any time block accepts: the start of the day
// MaxPastYears before now, in loc.
func Earliest(now time.Time, loc *time.Location) time.Time {
	return startOfDay(now.In(loc).AddDate(-MaxPastYears, 0, 0))
}

// Latest is the furthest instant a time block that allows the future accepts.
func Latest(now time.Time) time.Time {
	return now.AddDate(MaxFutureYears, 0, 0)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CheckTimeWindow applies the future and past bounds. A value equal to now is accepted.
// Date-only values compare by calendar day, whatever time of day they carry.
func CheckTimeWindow(t, now time.Time, mode template.TimeMode, allowFuture bool) string {
	if mode == template.TimeModeDate {
		day := startOfDay(t)
		today := startOfDay(now.In(t.Location()))
		if !allowFuture && day.After(today) {
			return MsgTimeFuture
		}
		if day.After(startOfDay(Latest(today))) {
			return MsgTimeTooFar
		}
		if day.Before(today.AddDate(-MaxPastYears, 0, 0)) {
			return MsgTimeTooOld
		}
		return ""
	}
	if !allowFuture && t.After(now) {
		return MsgTimeFuture
	}
	if t.After(Latest(now)) {
		return MsgTimeTooFar
	}
	if t.Before(now.AddDate(-MaxPastYears, 0, 0)) {
		return MsgTimeTooOld
	}
	return ""
}
