package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rosterhq/shift-roster/internal/api/http/handlers"
	"github.com/rosterhq/shift-roster/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Availability   *handlers.AvailabilityHandler
	Schedule       *handlers.ScheduleHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.Require(auth.CapManageOwnProfile), cfg.Auth.ChangePassword)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/profile", auth.Require(auth.CapManageOwnProfile), cfg.Users.Profile)
	users.Put("/profile", auth.Require(auth.CapManageOwnProfile), cfg.Users.UpdateProfile)
	users.Get("/doctors", auth.Require(auth.CapListDoctors), cfg.Users.ListDoctors)
	users.Put("/:id/status", auth.Require(auth.CapManageUsers), cfg.Users.UpdateStatus)

	availability := api.Group("/availability", cfg.AuthMiddleware.Handle)
	availability.Get("/my-availability", auth.Require(auth.CapDeclareAvailability), cfg.Availability.MyAvailability)
	availability.Post("/update", auth.Require(auth.CapDeclareAvailability), cfg.Availability.Update)
	availability.Post("/bulk-update", auth.Require(auth.CapDeclareAvailability), cfg.Availability.BulkUpdate)
	availability.Get("/all", auth.Require(auth.CapViewAllAvailability), cfg.Availability.ListAll)

	schedule := api.Group("/schedule", cfg.AuthMiddleware.Handle)
	schedule.Get("/my-schedule", auth.Require(auth.CapViewOwnSchedule), cfg.Schedule.MySchedule)
	schedule.Get("/all", auth.Require(auth.CapViewAllSchedules), cfg.Schedule.All)
	schedule.Post("/assign", auth.Require(auth.CapAssignShifts), cfg.Schedule.Assign)
	schedule.Get("/:id", auth.Require(auth.CapViewOwnSchedule), cfg.Schedule.Get)
	schedule.Put("/:id", auth.Require(auth.CapAssignShifts), cfg.Schedule.Update)
	schedule.Delete("/:id", auth.Require(auth.CapAssignShifts), cfg.Schedule.Delete)
	schedule.Post("/:id/cancel", auth.Require(auth.CapAssignShifts), cfg.Schedule.Cancel)
}
