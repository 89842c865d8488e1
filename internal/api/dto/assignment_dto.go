package dto

import (
	"time"

	"github.com/rosterhq/shift-roster/internal/domain"
)

// AssignRequest creates a shift assignment.
type AssignRequest struct {
	UserID    string  `json:"userId" validate:"required,uuid"`
	Date      string  `json:"date" validate:"required,isodate"`
	ShiftType string  `json:"shiftType" validate:"required,oneof=day night"`
	Notes     *string `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateAssignmentRequest changes an assignment.
type UpdateAssignmentRequest struct {
	UserID *string `json:"userId" validate:"omitempty,uuid"`
	Status *string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

// PageQuery captures optional limit/offset listing params. Without a limit
// every matching row is returned.
type PageQuery struct {
	Limit  int `query:"limit" json:"limit" validate:"omitempty,min=1,max=1000"`
	Offset int `query:"offset" json:"offset" validate:"omitempty,min=0"`
}

// Page converts the validated query into a domain page.
func (q PageQuery) Page() domain.Page {
	return domain.Page{Limit: q.Limit, Offset: q.Offset}
}

// DateRangeQuery captures startDate/endDate listing params plus paging.
type DateRangeQuery struct {
	StartDate string `query:"startDate" json:"startDate" validate:"omitempty,isodate"`
	EndDate   string `query:"endDate" json:"endDate" validate:"omitempty,isodate"`
	Status    string `query:"status" json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Limit     int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=1000"`
	Offset    int    `query:"offset" json:"offset" validate:"omitempty,min=0"`
}

// Page converts the validated paging params.
func (q DateRangeQuery) Page() domain.Page {
	return PageQuery{Limit: q.Limit, Offset: q.Offset}.Page()
}

// Range converts the validated query into a domain range.
func (q DateRangeQuery) Range() domain.DateRange {
	var rng domain.DateRange
	if t, err := domain.ParseDate(q.StartDate); err == nil {
		rng.From = &t
	}
	if t, err := domain.ParseDate(q.EndDate); err == nil {
		rng.To = &t
	}
	return rng
}

// PersonResponse names a user attached to an assignment.
type PersonResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
}

// AssignmentResponse is the wire form of an assignment.
type AssignmentResponse struct {
	ID             string                  `json:"id"`
	UserID         string                  `json:"userId"`
	Date           string                  `json:"date"`
	ShiftType      domain.ShiftType        `json:"shiftType"`
	Status         domain.AssignmentStatus `json:"status"`
	AssignedBy     string                  `json:"assignedBy"`
	Notes          *string                 `json:"notes,omitempty"`
	User           *PersonResponse         `json:"user,omitempty"`
	AssignedByUser *PersonResponse         `json:"assignedByUser,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

// NewAssignmentResponse maps a bare assignment.
func NewAssignmentResponse(a *domain.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		Date:       domain.FormatDate(a.Date),
		ShiftType:  a.ShiftType,
		Status:     a.Status,
		AssignedBy: a.AssignedBy,
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// NewAssignmentViewResponse maps an assignment with its people.
func NewAssignmentViewResponse(v *domain.AssignmentView) AssignmentResponse {
	resp := NewAssignmentResponse(&v.Assignment)
	resp.User = personResponse(v.Doctor)
	resp.AssignedByUser = personResponse(v.AssignedByUser)
	return resp
}

func personResponse(s *domain.UserSummary) *PersonResponse {
	if s == nil {
		return nil
	}
	return &PersonResponse{ID: s.ID, FirstName: s.FirstName, LastName: s.LastName, Email: s.Email}
}
