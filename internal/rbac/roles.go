package rbac

import "commerce-platform/internal/users"

// Role semantics on top of the user role names:
// - Admin bypasses all role checks.
// - Guest is a restricted role for checkout-only sessions; it is denied
//   unless a route explicitly allows it.
func IsAdmin(u users.User) bool { return u.HasRole(users.RoleAdmin) }

func IsRestricted(role string) bool {
	return role == users.RoleGuest || role == users.RoleVisitor
}
