// Package policy centralizes the role/ownership rules that every
// service method applies, instead of re-deriving them per endpoint.
package policy

import "finance-tracker/internal/models"

// Principal is the authenticated actor making a request.
type Principal struct {
	ID   uint
	Role string
}

// FromUser builds a Principal from a loaded user record.
func FromUser(u *models.User) Principal {
	return Principal{ID: u.ID, Role: u.Role}
}

// IsAdmin reports whether the principal carries the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanAccess reports whether the principal may read or write data owned
// by ownerID: always for their own data, any user's for admins.
func CanAccess(p Principal, ownerID uint) bool {
	return p.ID == ownerID || p.IsAdmin()
}

// CanManageCategories reports whether the principal may create, update
// or delete categories. Categories have no owner; mutation is admin-only.
func CanManageCategories(p Principal) bool {
	return p.IsAdmin()
}

// CanManageUsers reports whether the principal may create, update or
// delete user accounts and change roles.
func CanManageUsers(p Principal) bool {
	return p.IsAdmin()
}

// CanDeleteUser additionally forbids an admin deleting their own
// account through user management.
func CanDeleteUser(p Principal, targetID uint) bool {
	return p.IsAdmin() && p.ID != targetID
}

// ScopeUser resolves the owner filter for list/summary queries.
// Admins may pass an explicit requested user id (0 meaning "all users");
// regular users are always pinned to their own id.
func ScopeUser(p Principal, requested uint) uint {
	if p.IsAdmin() {
		return requested
	}
	return p.ID
}
