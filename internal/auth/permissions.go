package auth

// Permission represents a named capability in the system.
type Permission string

// Permission constants.
const (
	PermStatusRead    Permission = "status:read"
	PermFaultsRead    Permission = "faults:read"
	PermOverrideWrite Permission = "override:write"
	PermTokenIssue    Permission = "token:issue"
)

// rolePermissions maps each role to its granted permissions.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermStatusRead,
		PermFaultsRead,
	},
	RoleDriver: {
		PermStatusRead,
		PermFaultsRead,
		PermOverrideWrite,
	},
	RoleService: {
		PermStatusRead,
		PermFaultsRead,
		PermOverrideWrite,
		PermTokenIssue,
	},
}

// HasPermission returns true if the given role has the specified permission.
func HasPermission(role Role, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns all permissions granted to a role.
// Returns nil for unknown roles.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	result := make([]Permission, len(perms))
	copy(result, perms)
	return result
}
