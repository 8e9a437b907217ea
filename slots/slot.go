package slots

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Slot identifies a sub-day interval in the canonical "H:MM" form, where
// MM is one of 00, 15, 30 or 45 and the hour carries no leading zero
// ("0:00", "13:45"). A day is either 24 hourly slots (all ":00") or 96
// quarter-hourly slots, depending on what the market returned for that date.
type Slot string

// New builds a slot from an hour and a minute, flooring the minute to the
// containing quarter.
func New(hour, minute int) Slot {
	return Slot(fmt.Sprintf("%d:%s", hour, Quarter(minute)))
}

// Parse accepts a bare hour ("7") or an "H:MM" string and returns the
// canonical slot. Minutes are floored to the containing quarter.
func Parse(str string) (Slot, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return "", fmt.Errorf("empty slot")
	}

	hourPart, minutePart, hasMinute := strings.Cut(str, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return "", fmt.Errorf("invalid slot hour %q: %w", str, err)
	}
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("slot hour out of range: %d", hour)
	}

	minute := 0
	if hasMinute {
		minute, err = strconv.Atoi(minutePart)
		if err != nil {
			return "", fmt.Errorf("invalid slot minute %q: %w", str, err)
		}
		if minute < 0 || minute > 59 {
			return "", fmt.Errorf("slot minute out of range: %d", minute)
		}
	}

	return New(hour, minute), nil
}

// FromTime returns the slot containing the given wall-clock time.
func FromTime(t time.Time) Slot {
	return New(t.Hour(), t.Minute())
}

// Quarter floors a minute value to the label of its quarter hour.
func Quarter(minute int) string {
	switch {
	case minute < 15:
		return "00"
	case minute < 30:
		return "15"
	case minute < 45:
		return "30"
	default:
		return "45"
	}
}

func (s Slot) Hour() int {
	hourPart, _, _ := strings.Cut(string(s), ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0
	}
	return hour
}

func (s Slot) Minute() int {
	_, minutePart, ok := strings.Cut(string(s), ":")
	if !ok {
		return 0
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return 0
	}
	return minute
}

func (s Slot) String() string {
	return string(s)
}

// Compare orders slots chronologically, not lexicographically
// ("9:00" < "10:00").
func (s Slot) Compare(other Slot) int {
	if s.Hour() != other.Hour() {
		return s.Hour() - other.Hour()
	}
	return s.Minute() - other.Minute()
}

// Sort orders a slot list chronologically in place.
func Sort(slts []Slot) {
	sort.Slice(slts, func(i, j int) bool {
		return slts[i].Compare(slts[j]) < 0
	})
}

// Today returns the current date truncated to midnight UTC, the reference
// used when deciding whether a series describes "today".
func Today() time.Time {
	return Midnight(time.Now())
}

// Midnight truncates a time to its date in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two times fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return a.Format(DateLayout) == b.Format(DateLayout)
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}
