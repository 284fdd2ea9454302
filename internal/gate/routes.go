package gate

import "github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/domain"

// LoginPath is where unauthenticated navigation is sent.
const LoginPath = "/login"

// RoleHome resolves the canonical landing route for a role. The switch is
// exhaustive over the closed role set; anything else falls back to root.
func RoleHome(r domain.Role) string {
	switch r {
	case domain.RoleAdmin:
		return "/admin"
	case domain.RolePrincipal:
		return "/dashboard/principal"
	case domain.RoleAgent:
		return "/dashboard/agent"
	case domain.RoleCustomer:
		return "/dashboard/customer"
	default:
		return "/"
	}
}
