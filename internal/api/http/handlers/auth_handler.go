package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/rosterhq/shift-roster/internal/api/dto"
	"github.com/rosterhq/shift-roster/internal/auth"
	"github.com/rosterhq/shift-roster/internal/domain"
	"github.com/rosterhq/shift-roster/internal/service"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

// AuthHandler exposes registration, login and credential endpoints.
type AuthHandler struct {
	auth             *service.AuthService
	exposeResetToken bool
}

// NewAuthHandler constructs handler. exposeResetToken returns reset tokens
// in the response body, for environments without outbound mail.
func NewAuthHandler(authService *service.AuthService, exposeResetToken bool) *AuthHandler {
	return &AuthHandler{auth: authService, exposeResetToken: exposeResetToken}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	user, token, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PreferredDays: req.PreferredDays,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, authPayload(user, token))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, authPayload(user, token))
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return data(c, http.StatusOK, fiber.Map{"status": "logged_out"})
}

// ChangePassword handles POST /api/auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.PasswordChangeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), user, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return data(c, http.StatusOK, fiber.Map{"status": "password_changed"})
}

// RequestPasswordReset handles POST /api/auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	token, err := h.auth.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	payload := fiber.Map{"status": "reset_requested"}
	if h.exposeResetToken && token != nil {
		payload["resetToken"] = token.Token
		payload["expiresAt"] = token.ExpiresAt
	}
	return data(c, http.StatusAccepted, payload)
}

// ConfirmPasswordReset handles POST /api/auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return data(c, http.StatusOK, fiber.Map{"status": "password_reset"})
}

func authPayload(user *domain.User, token *domain.Token) fiber.Map {
	return fiber.Map{
		"user": dto.NewUserResponse(user),
		"auth": dto.AuthResponse{Token: token.Value, ExpiresAt: token.ExpiresAt},
	}
}
