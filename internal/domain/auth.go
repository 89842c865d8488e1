package domain

import "time"

// Token describes an issued access token.
type Token struct {
	ID        string
	Value     string
	UserID    string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// PasswordResetToken is a single-use credential reset grant.
type PasswordResetToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the reset token can still be redeemed at now.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t != nil && t.UsedAt == nil && now.Before(t.ExpiresAt)
}
