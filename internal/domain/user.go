package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a stored role string onto the enumeration. Unknown
// values come back as RoleUser with ok=false so callers can reject them.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return RoleUser, false
	}
}

// Allows reports whether a holder of r satisfies the required role.
// Admins satisfy every requirement; users only the user requirement.
func (r Role) Allows(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

func (r Role) String() string {
	return string(r)
}

// User represents a registered account. PasswordHash is a bcrypt hash;
// the plaintext is never stored.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
