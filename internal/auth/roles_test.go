package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rosterhq/shift-roster/internal/domain"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

func TestAuthorize(t *testing.T) {
	doctor := &domain.User{ID: "d", Role: domain.RoleDoctor, Active: true}
	admin := &domain.User{ID: "a", Role: domain.RoleAdmin, Active: true}
	inactive := &domain.User{ID: "x", Role: domain.RoleAdmin, Active: false}

	cases := []struct {
		name    string
		user    *domain.User
		cap     Capability
		allowed bool
		code    string
	}{
		{"doctor declares availability", doctor, CapDeclareAvailability, true, ""},
		{"doctor views own schedule", doctor, CapViewOwnSchedule, true, ""},
		{"doctor cannot assign", doctor, CapAssignShifts, false, apperrors.CodeForbidden},
		{"doctor cannot list all availability", doctor, CapViewAllAvailability, false, apperrors.CodeForbidden},
		{"admin assigns", admin, CapAssignShifts, true, ""},
		{"admin manages users", admin, CapManageUsers, true, ""},
		{"admin does not declare availability", admin, CapDeclareAvailability, false, apperrors.CodeForbidden},
		{"inactive admin denied", inactive, CapAssignShifts, false, apperrors.CodeForbidden},
		{"anonymous", nil, CapViewOwnSchedule, false, apperrors.CodeUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(tc.user, tc.cap)
			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.cap, d.Capability)
			if tc.allowed {
				assert.NoError(t, d.Err())
				return
			}
			assert.True(t, apperrors.HasCode(d.Err(), tc.code))
		})
	}
}
