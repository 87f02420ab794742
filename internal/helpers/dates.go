package helpers

import (
	"strings"
	"time"
)

const (
	FormDateLayout = "2006-01-02"
	YMDLayout      = "20060102"
)

var formDateLayouts = []string{FormDateLayout, "2006/01/02", YMDLayout}

// ParseFormDate parses a date field from the search form. Anything that is
// not a calendar date yields nil.
func ParseFormDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range formDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExpandDateRange lists every calendar day from start to end inclusive as
// YYYYMMDD tokens. A nil start disables date filtering, a nil end means a
// single day, and an inverted range yields nothing.
func ExpandDateRange(start, end *time.Time) []string {
	if start == nil {
		return []string{}
	}
	if end == nil {
		end = start
	}

	cursor := truncateDay(*start)
	last := truncateDay(*end)

	tokens := []string{}
	// AddDate on a UTC midnight always moves exactly one day forward
	for !cursor.After(last) {
		tokens = append(tokens, cursor.Format(YMDLayout))
		cursor = cursor.AddDate(0, 0, 1)
	}
	return tokens
}

// DaySpan counts the calendar days from start to end inclusive. A nil end
// means a single day; an inverted range spans zero days.
func DaySpan(start, end *time.Time) int64 {
	if start == nil {
		return 0
	}
	if end == nil {
		end = start
	}
	// Unix seconds cover year 1 to 9999 where a time.Duration would overflow
	days := (truncateDay(*end).Unix()-truncateDay(*start).Unix())/secondsPerDay + 1
	return max(days, 0)
}

const secondsPerDay = 24 * 60 * 60

type DateField int

const (
	EditedStart DateField = iota
	EditedEnd
)

// ClampDates keeps the pair from ever being inverted after an edit. Editing
// the start past the end moves the end onto it; editing the end before the
// start moves the start onto it. The result is always a fresh pair.
func ClampDates(start, end *time.Time, edited DateField) (*time.Time, *time.Time) {
	start, end = copyDate(start), copyDate(end)
	if start == nil || end == nil || !end.Before(*start) {
		return start, end
	}

	switch edited {
	case EditedStart:
		end = copyDate(start)
	case EditedEnd:
		start = copyDate(end)
	}
	return start, end
}

func copyDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

var weekdaysJA = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// FormatJapaneseDateTime renders "1月2日(火) 19:00" in the event's own zone.
func FormatJapaneseDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("1月2日") + "(" + weekdaysJA[t.Weekday()] + ") " + t.Format("15:04")
}
