package workflow

import "fmt"

// Wildcard grants every field of the active schema.
const Wildcard = "*"

// FieldAccess maps each role to the field keys it may ever write, regardless
// of status. The wildcard is kept unexpanded so the table stays
// schema-agnostic.
type FieldAccess struct {
	grants map[Role][]string
}

// NewFieldAccess copies grants into an immutable table. Only SYSTEMADMIN and
// ADMIN may hold the wildcard.
func NewFieldAccess(grants map[Role][]string) FieldAccess {
	copied := make(map[Role][]string, len(grants))
	for role, keys := range grants {
		mustRole(role)
		seen := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			if k == Wildcard && role != RoleSystemAdmin && role != RoleAdmin {
				panic(fmt.Sprintf("workflow: wildcard grant reserved for admins, found on %s", role))
			}
			if _, dup := seen[k]; dup {
				panic(fmt.Sprintf("workflow: %s granted %q twice", role, k))
			}
			seen[k] = struct{}{}
		}
		copied[role] = append([]string(nil), keys...)
	}
	return FieldAccess{grants: copied}
}

// Grants returns the raw entry for role, wildcard included.
func (a FieldAccess) Grants(role Role) []string {
	return append([]string(nil), a.grants[role]...)
}

// HasGrant reports whether role may write at least one field.
func (a FieldAccess) HasGrant(role Role) bool {
	return len(a.grants[role]) > 0
}

func (a FieldAccess) wildcard(role Role) bool {
	for _, k := range a.grants[role] {
		if k == Wildcard {
			return true
		}
	}
	return false
}

// WritableBy expands role's entry against the schema's field list.
func (a FieldAccess) WritableBy(role Role, fields []string) []string {
	if a.wildcard(role) {
		return append([]string(nil), fields...)
	}
	return a.Grants(role)
}

// Allows reports whether field is in role's entry. Wildcard holders are
// allowed any field contained in fields.
func (a FieldAccess) Allows(role Role, field string, fields []string) bool {
	for _, k := range a.WritableBy(role, fields) {
		if k == field {
			return true
		}
	}
	return false
}

// defaults returns role's entry without the wildcard marker.
func (a FieldAccess) defaults(role Role) []string {
	out := make([]string, 0, len(a.grants[role]))
	for _, k := range a.grants[role] {
		if k != Wildcard {
			out = append(out, k)
		}
	}
	return out
}
