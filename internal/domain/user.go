package domain

import "time"

// Role enumerates what a user may do in the roster.
type Role string

const (
	RoleDoctor Role = "doctor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RoleAdmin
}

// User is the identity record for doctors and administrators.
type User struct {
	ID            string
	Email         string
	FirstName     string
	LastName      string
	PasswordHash  string
	Role          Role
	Active        bool
	PreferredDays *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAssignableDoctor reports whether the user may hold a shift.
func (u *User) IsAssignableDoctor() bool {
	return u != nil && u.Role == RoleDoctor && u.Active
}
