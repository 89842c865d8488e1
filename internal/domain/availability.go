package domain

import "time"

// Availability is a doctor's declared willingness to work a slot.
type Availability struct {
	ID          string
	UserID      string
	Date        time.Time
	ShiftType   ShiftType
	IsAvailable bool
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Slot returns the availability's (date, shift) key.
func (a *Availability) Slot() Slot {
	return NewSlot(a.Date, a.ShiftType)
}
