package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/rosterhq/shift-roster/internal/api/dto"
	"github.com/rosterhq/shift-roster/internal/domain"
	"github.com/rosterhq/shift-roster/internal/service"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

// ScheduleHandler exposes the roster endpoints.
type ScheduleHandler struct {
	assignments *service.AssignmentService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(assignments *service.AssignmentService) *ScheduleHandler {
	return &ScheduleHandler{assignments: assignments}
}

// MySchedule handles GET /api/schedule/my-schedule.
func (h *ScheduleHandler) MySchedule(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filter, err := scheduleFilter(c)
	if err != nil {
		return err
	}
	views, err := h.assignments.MySchedule(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, viewList(views))
}

// All handles GET /api/schedule/all.
func (h *ScheduleHandler) All(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filter, err := scheduleFilter(c)
	if err != nil {
		return err
	}
	views, err := h.assignments.ListAll(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, viewList(views))
}

// Assign handles POST /api/schedule/assign.
func (h *ScheduleHandler) Assign(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return apperrors.NewValidationError("validation failed", map[string]any{"date": err.Error()})
	}
	assignment, err := h.assignments.Propose(c.UserContext(), actor, service.ProposeInput{
		UserID:    req.UserID,
		Date:      date,
		ShiftType: domain.ShiftType(req.ShiftType),
		Notes:     req.Notes,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewAssignmentResponse(assignment))
}

// Get handles GET /api/schedule/:id.
func (h *ScheduleHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	assignment, err := h.assignments.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewAssignmentResponse(assignment))
}

// Update handles PUT /api/schedule/:id.
func (h *ScheduleHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAssignmentRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	input := service.ReassignInput{UserID: req.UserID, Notes: req.Notes}
	if req.Status != nil {
		status := domain.AssignmentStatus(*req.Status)
		input.Status = &status
	}
	assignment, err := h.assignments.Reassign(c.UserContext(), actor, id, input)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewAssignmentResponse(assignment))
}

// Delete handles DELETE /api/schedule/:id.
func (h *ScheduleHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.assignments.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func scheduleFilter(c *fiber.Ctx) (service.ScheduleFilter, error) {
	var query dto.DateRangeQuery
	if err := bindQuery(c, &query); err != nil {
		return service.ScheduleFilter{}, err
	}
	filter := service.ScheduleFilter{Range: query.Range(), Page: query.Page()}
	if query.Status != "" {
		filter.Statuses = []domain.AssignmentStatus{domain.AssignmentStatus(query.Status)}
	}
	return filter, nil
}

func viewList(views []domain.AssignmentView) []dto.AssignmentResponse {
	resp := make([]dto.AssignmentResponse, 0, len(views))
	for i := range views {
		resp = append(resp, dto.NewAssignmentViewResponse(&views[i]))
	}
	return resp
}

// Cancel handles POST /api/schedule/:id/cancel.
func (h *ScheduleHandler) Cancel(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	assignment, err := h.assignments.Cancel(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewAssignmentResponse(assignment))
}
