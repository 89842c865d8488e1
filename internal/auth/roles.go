package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rosterhq/shift-roster/internal/domain"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

// Capability names an operation class gated at the access boundary.
type Capability string

const (
	CapManageOwnProfile    Capability = "profile:manage"
	CapViewOwnSchedule     Capability = "schedule:view-own"
	CapViewAllSchedules    Capability = "schedule:view-all"
	CapAssignShifts        Capability = "schedule:assign"
	CapDeclareAvailability Capability = "availability:declare"
	CapViewAllAvailability Capability = "availability:view-all"
	CapListDoctors         Capability = "users:list-doctors"
	CapManageUsers         Capability = "users:manage"
)

var roleCapabilities = map[domain.Role]map[Capability]struct{}{
	domain.RoleDoctor: capabilitySet(
		CapManageOwnProfile,
		CapViewOwnSchedule,
		CapDeclareAvailability,
	),
	domain.RoleAdmin: capabilitySet(
		CapManageOwnProfile,
		CapViewOwnSchedule,
		CapViewAllSchedules,
		CapAssignShifts,
		CapViewAllAvailability,
		CapListDoctors,
		CapManageUsers,
	),
}

func capabilitySet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Decision is the tagged result of an authorization check.
type Decision struct {
	UserID     string
	Role       domain.Role
	Capability Capability
	Allowed    bool
	Reason     string
}

// Err converts a denied decision into the caller-facing error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.UserID == "" {
		return apperrors.NewUnauthorized(d.Reason)
	}
	return apperrors.NewForbidden(d.Reason)
}

// Authorize decides whether user holds capability.
func Authorize(user *domain.User, capability Capability) Decision {
	if user == nil {
		return Decision{Capability: capability, Reason: "authentication required"}
	}
	d := Decision{UserID: user.ID, Role: user.Role, Capability: capability}
	if !user.Active {
		d.Reason = "account inactive"
		return d
	}
	if _, ok := roleCapabilities[user.Role][capability]; !ok {
		d.Reason = "access denied"
		return d
	}
	d.Allowed = true
	return d
}

// Require gates a route on capability for the authenticated principal.
func Require(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := Authorize(principal.User, capability).Err(); err != nil {
			return err
		}
		return c.Next()
	}
}
