package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/rosterhq/shift-roster/internal/api/dto"
	"github.com/rosterhq/shift-roster/internal/domain"
	"github.com/rosterhq/shift-roster/internal/service"
)

// UsersHandler exposes profile and account management endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Profile handles GET /api/users/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.users.Profile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.UserContext(), actor, service.ProfileInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PreferredDays: req.PreferredDays,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// ListDoctors handles GET /api/users/doctors.
func (h *UsersHandler) ListDoctors(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var page dto.PageQuery
	if err := bindQuery(c, &page); err != nil {
		return err
	}
	doctors, err := h.users.ListDoctors(c.UserContext(), actor, c.QueryBool("includeInactive", false), page.Page())
	if err != nil {
		return err
	}
	resp := make([]dto.UserResponse, 0, len(doctors))
	for i := range doctors {
		resp = append(resp, dto.NewUserResponse(&doctors[i]))
	}
	return data(c, http.StatusOK, resp)
}

// UpdateStatus handles PUT /api/users/:id/status.
func (h *UsersHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	input := service.StatusInput{Active: req.IsActive}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}
	user, err := h.users.UpdateStatus(c.UserContext(), actor, id, input)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}
