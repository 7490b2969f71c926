package auth

import "errors"

// Role represents an authorisation tier for API callers.
type Role string

const (
	// RoleViewer can read controller status and the fault journal.
	RoleViewer Role = "viewer"

	// RoleDriver can additionally hold or release a manual beam override.
	RoleDriver Role = "driver"

	// RoleService is workshop tooling: everything a driver can do, plus
	// issuing tokens for other callers.
	RoleService Role = "service"
)

// ValidRoles is the set of roles a token may carry.
var ValidRoles = []Role{RoleViewer, RoleDriver, RoleService}

// IsValidRole returns true if r is one of ValidRoles.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Sentinel errors for auth operations.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrInvalidRole  = errors.New("invalid role")
	ErrNoSecret     = errors.New("jwt secret is not configured")
	ErrForbidden    = errors.New("insufficient permissions")
)
