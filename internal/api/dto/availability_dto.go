package dto

import (
	"time"

	"github.com/rosterhq/shift-roster/internal/domain"
)

// AvailabilityRequest declares availability for one slot.
type AvailabilityRequest struct {
	Date        string  `json:"date" validate:"required,isodate"`
	ShiftType   string  `json:"shiftType" validate:"required,oneof=day night"`
	IsAvailable *bool   `json:"isAvailable" validate:"required"`
	Notes       *string `json:"notes" validate:"omitempty,max=1000"`
}

// BulkAvailabilityRequest declares availability for many slots at once.
type BulkAvailabilityRequest struct {
	Availabilities []AvailabilityRequest `json:"availabilities" validate:"required,min=1,max=366,dive"`
}

// AvailabilityResponse is the wire form of an availability entry.
type AvailabilityResponse struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Date        string           `json:"date"`
	ShiftType   domain.ShiftType `json:"shiftType"`
	IsAvailable bool             `json:"isAvailable"`
	Notes       *string          `json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// NewAvailabilityResponse maps a domain availability.
func NewAvailabilityResponse(a *domain.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Date:        domain.FormatDate(a.Date),
		ShiftType:   a.ShiftType,
		IsAvailable: a.IsAvailable,
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
