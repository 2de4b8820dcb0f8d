package auth

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// emailPattern is a pragmatic email format check. Deliverability is not
// verified; this only rejects obviously malformed input.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// maxEmailLength is the maximum allowed email length.
const maxEmailLength = 254

// IsValidEmail checks if an email address meets format requirements.
func IsValidEmail(email string) bool {
	return len(email) <= maxEmailLength && emailPattern.MatchString(email)
}

// NormalizeEmail lowercases and trims an email address. All lookups and
// stored values use the normalised form so logins are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleAdmin is a staff account that manages its own customer records.
	// Admins only see customers they created.
	RoleAdmin Role = "ADMIN"

	// RoleSuperAdmin has full visibility across all customers plus account
	// management: creating, updating, and deactivating staff accounts.
	RoleSuperAdmin Role = "SUPERADMIN"
)

// ValidRoles is the closed set of roles a user account can hold.
var ValidRoles = []Role{RoleAdmin, RoleSuperAdmin}

// IsValidRole returns true if the role is a recognised account role.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User represents a staff account that authenticates against the API.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"` // never serialised
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Principal is the resolved identity attached to an authenticated request.
// It is derived from the stored account row at validation time, never from
// token claims alone, so role changes and deactivations take effect on the
// next request.
type Principal struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsSuperAdmin returns true if the principal holds the SUPERADMIN role.
func (p *Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// Sentinel errors for auth operations.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountInactive is returned only after the password matched,
	// so it never leaks which emails exist.
	ErrAccountInactive = errors.New("account is deactivated")

	// ErrInvalidInput wraps field-level validation failures so transport
	// layers can map them to a 400 response.
	ErrInvalidInput = errors.New("invalid input")

	ErrUserNotFound      = errors.New("user not found")
	ErrEmailExists       = errors.New("email already registered")
	ErrTokenMalformed    = errors.New("malformed token")
	ErrTokenSignature    = errors.New("invalid token signature")
	ErrTokenExpired      = errors.New("token has expired")
	ErrForbidden         = errors.New("insufficient permissions")
	ErrSelfDeactivation  = errors.New("cannot deactivate own account")
	ErrRoleNotAssignable = errors.New("role cannot be assigned")
)
