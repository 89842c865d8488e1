package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/rosterhq/shift-roster/internal/api/dto"
	"github.com/rosterhq/shift-roster/internal/domain"
	"github.com/rosterhq/shift-roster/internal/service"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

// AvailabilityHandler exposes availability declaration endpoints.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// MyAvailability handles GET /api/availability/my-availability.
func (h *AvailabilityHandler) MyAvailability(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var query dto.DateRangeQuery
	if err := bindQuery(c, &query); err != nil {
		return err
	}
	items, err := h.availability.MyAvailability(c.UserContext(), actor, query.Range(), query.Page())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, availabilityList(items))
}

// Update handles POST /api/availability/update.
func (h *AvailabilityHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AvailabilityRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	input, err := availabilityInput(req, "date")
	if err != nil {
		return err
	}
	item, err := h.availability.Declare(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewAvailabilityResponse(item))
}

// BulkUpdate handles POST /api/availability/bulk-update. Either every entry
// is stored or none is.
func (h *AvailabilityHandler) BulkUpdate(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.BulkAvailabilityRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	inputs := make([]service.AvailabilityInput, 0, len(req.Availabilities))
	for i, entry := range req.Availabilities {
		input, err := availabilityInput(entry, fmt.Sprintf("availabilities[%d].date", i))
		if err != nil {
			return err
		}
		inputs = append(inputs, input)
	}
	items, err := h.availability.BulkDeclare(c.UserContext(), actor, inputs)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, availabilityList(items))
}

// ListAll handles GET /api/availability/all.
func (h *AvailabilityHandler) ListAll(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var query dto.DateRangeQuery
	if err := bindQuery(c, &query); err != nil {
		return err
	}
	items, err := h.availability.ListAll(c.UserContext(), actor, query.Range(), c.QueryBool("availableOnly", false), query.Page())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, availabilityList(items))
}

func availabilityInput(req dto.AvailabilityRequest, field string) (service.AvailabilityInput, error) {
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return service.AvailabilityInput{}, apperrors.NewValidationError("validation failed", map[string]any{field: err.Error()})
	}
	input := service.AvailabilityInput{
		Date:      date,
		ShiftType: domain.ShiftType(req.ShiftType),
		Notes:     req.Notes,
	}
	if req.IsAvailable != nil {
		input.IsAvailable = *req.IsAvailable
	}
	return input, nil
}

func availabilityList(items []domain.Availability) []dto.AvailabilityResponse {
	resp := make([]dto.AvailabilityResponse, 0, len(items))
	for i := range items {
		resp = append(resp, dto.NewAvailabilityResponse(&items[i]))
	}
	return resp
}
