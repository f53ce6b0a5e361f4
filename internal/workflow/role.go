package workflow

import (
	"fmt"
	"strings"
)

// Role identifies the acting user category for every workflow decision.
type Role string

const (
	RoleSystemAdmin Role = "SYSTEMADMIN"
	RoleAdmin       Role = "ADMIN"
	RoleFrontDesk   Role = "FRONTDESK"
	RoleMicro       Role = "MICRO"
	RoleChemistry   Role = "CHEMISTRY"
	RoleQA          Role = "QA"
	RoleClient      Role = "CLIENT"
)

// Roles lists every role in a stable order.
func Roles() []Role {
	return []Role{RoleSystemAdmin, RoleAdmin, RoleFrontDesk, RoleMicro, RoleChemistry, RoleQA, RoleClient}
}

// Valid reports whether r belongs to the enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleSystemAdmin, RoleAdmin, RoleFrontDesk, RoleMicro, RoleChemistry, RoleQA, RoleClient:
		return true
	default:
		return false
	}
}

// ParseRole normalises raw input into a Role.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return r, nil
}

func mustRole(r Role) {
	if !r.Valid() {
		panic(fmt.Sprintf("workflow: unknown role %q", r))
	}
}

type roleSet map[Role]struct{}

func newRoleSet(roles ...Role) roleSet {
	set := make(roleSet, len(roles))
	for _, r := range roles {
		mustRole(r)
		set[r] = struct{}{}
	}
	return set
}

func (s roleSet) has(r Role) bool {
	_, ok := s[r]
	return ok
}

// sorted returns members in enumeration order.
func (s roleSet) sorted() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range Roles() {
		if s.has(r) {
			out = append(out, r)
		}
	}
	return out
}
