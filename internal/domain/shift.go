package domain

import (
	"fmt"
	"time"
)

// DateLayout is the only accepted wire format for calendar dates.
const DateLayout = "2006-01-02"

// ShiftType identifies a work slot within a day.
type ShiftType string

const (
	ShiftDay   ShiftType = "day"
	ShiftNight ShiftType = "night"
)

// Valid reports whether s is a known shift type.
func (s ShiftType) Valid() bool {
	return s == ShiftDay || s == ShiftNight
}

// Slot is the (date, shift) key assignments must not collide on.
type Slot struct {
	Date  time.Time
	Shift ShiftType
}

// NewSlot normalizes the date to midnight UTC.
func NewSlot(date time.Time, shift ShiftType) Slot {
	return Slot{Date: TruncateDate(date), Shift: shift}
}

func (s Slot) String() string {
	return fmt.Sprintf("%s/%s", FormatDate(s.Date), s.Shift)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatDate renders a calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TruncateDate drops the clock component, keeping the calendar day.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange bounds listing queries; nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Page selects a window of a listing. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}
