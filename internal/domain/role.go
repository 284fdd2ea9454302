package domain

import "fmt"

// Role is the closed set of roles a session can carry. Keeping it a distinct
// type forces route tables and the authorization gate to switch exhaustively
// instead of comparing loose strings.
type Role string

const (
	RoleAdmin     Role = "admin"
	RolePrincipal Role = "principal"
	RoleAgent     Role = "agent"
	RoleCustomer  Role = "customer"
)

// Roles returns all valid roles.
func Roles() []Role {
	return []Role{RoleAdmin, RolePrincipal, RoleAgent, RoleCustomer}
}

// Valid reports whether the role is a member of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePrincipal, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a raw string (e.g. from a JWT claim) into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
