package domain

import "time"

// AssignmentStatus enumerates lifecycle states for shift assignments.
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "pending"
	AssignmentStatusConfirmed AssignmentStatus = "confirmed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusPending, AssignmentStatusConfirmed, AssignmentStatusCancelled:
		return true
	}
	return false
}

// Active reports whether the status occupies its slot.
func (s AssignmentStatus) Active() bool {
	return s != AssignmentStatusCancelled
}

var allowedTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentStatusPending:   {AssignmentStatusConfirmed, AssignmentStatusCancelled},
	AssignmentStatusConfirmed: {AssignmentStatusCancelled},
}

// CanTransition reports whether from may move to to. Same-status writes are
// allowed except on cancelled, which is terminal.
func CanTransition(from, to AssignmentStatus) bool {
	if from == AssignmentStatusCancelled {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Assignment binds a doctor to a slot.
type Assignment struct {
	ID         string
	UserID     string
	Date       time.Time
	ShiftType  ShiftType
	Status     AssignmentStatus
	AssignedBy string
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Slot returns the assignment's (date, shift) key.
func (a *Assignment) Slot() Slot {
	return NewSlot(a.Date, a.ShiftType)
}

// AssignmentView decorates an assignment with the people involved.
type AssignmentView struct {
	Assignment
	Doctor         *UserSummary
	AssignedByUser *UserSummary
}

// UserSummary is the public subset of a user shown alongside roster entries.
type UserSummary struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}
