package auth

// Permission is a named capability gating one mutating operation.
type Permission string

const (
	PermCanView         Permission = "Can View"
	PermCanAddConfig    Permission = "Can Add Config"
	PermCanEditConfig   Permission = "Can Edit Config"
	PermCanDeleteConfig Permission = "Can Delete Config"
	PermCanAddTeams     Permission = "Can Add Teams"
	PermCanEditTeams    Permission = "Can Edit Teams"
	PermCanDeleteTeams  Permission = "Can Delete Teams"
	PermCanEditPriority Permission = "Can Edit Priority"
	PermCanEditStatus   Permission = "Can Edit Status"
	PermCanAssign       Permission = "Can Assign"
	PermCanDelete       Permission = "Can Delete"
)

var knownPermissions = map[Permission]struct{}{
	PermCanView:         {},
	PermCanAddConfig:    {},
	PermCanEditConfig:   {},
	PermCanDeleteConfig: {},
	PermCanAddTeams:     {},
	PermCanEditTeams:    {},
	PermCanDeleteTeams:  {},
	PermCanEditPriority: {},
	PermCanEditStatus:   {},
	PermCanAssign:       {},
	PermCanDelete:       {},
}

// KnownPermission reports whether p is part of the closed enumeration.
func KnownPermission(p Permission) bool {
	_, ok := knownPermissions[p]
	return ok
}

// PermissionSet is the resolved capability set of a principal. The zero
// value is the empty set, which denies everything.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions. Any non-empty
// set implicitly contains Can View.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms)+1)
	for _, p := range perms {
		set[p] = struct{}{}
	}
	if len(set) > 0 {
		set[PermCanView] = struct{}{}
	}
	return set
}

// ParsePermissions converts stored role strings into a set. Unknown
// strings are returned separately so callers can log and drop them
// instead of granting capabilities that do not exist.
func ParsePermissions(roles []string) (PermissionSet, []string) {
	set := make(PermissionSet, len(roles)+1)
	var unknown []string
	for _, role := range roles {
		p := Permission(role)
		if !KnownPermission(p) {
			unknown = append(unknown, role)
			continue
		}
		set[p] = struct{}{}
	}
	if len(set) > 0 {
		set[PermCanView] = struct{}{}
	}
	return set, unknown
}

// Has reports whether the permission is granted.
func (s PermissionSet) Has(p Permission) bool {
	if s == nil {
		return false
	}
	_, ok := s[p]
	return ok
}

// Strings returns the set as role strings in a stable enumeration order.
func (s PermissionSet) Strings() []string {
	ordered := []Permission{
		PermCanView,
		PermCanAddConfig,
		PermCanEditConfig,
		PermCanDeleteConfig,
		PermCanAddTeams,
		PermCanEditTeams,
		PermCanDeleteTeams,
		PermCanEditPriority,
		PermCanEditStatus,
		PermCanAssign,
		PermCanDelete,
	}
	out := make([]string, 0, len(s))
	for _, p := range ordered {
		if s.Has(p) {
			out = append(out, string(p))
		}
	}
	return out
}
