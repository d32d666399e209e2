package auth

import (
	"time"

	"admind/pkg/rbac"
)

// User represents an account. The credential hash never serializes; every
// response shape that embeds a User is safe by construction.
type User struct {
	ID           string     `json:"id"`
	FullName     string     `json:"full_name"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	Role         *rbac.Role `json:"role,omitempty"`
}

// Permissions returns the user's permission set, empty when no role is
// assigned or the role carries no grants
func (u *User) Permissions() []rbac.Permission {
	if u.Role == nil {
		return nil
	}
	return u.Role.Permissions
}
