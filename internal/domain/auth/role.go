package auth

import (
	"fmt"
	"strings"
)

// Role is a privilege level. Roles are totally ordered: RoleUser < RoleAdmin < RoleSuperAdmin.
// The zero value is not a valid role.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleAdmin
	RoleSuperAdmin
)

var roleNames = map[Role]string{
	RoleUser:       "User",
	RoleAdmin:      "Admin",
	RoleSuperAdmin: "SuperAdmin",
}

// Roles lists every valid role from least to most privileged.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleSuperAdmin}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// Satisfies reports whether r grants at least the privileges of required.
func (r Role) Satisfies(required Role) bool {
	return r.Valid() && required.Valid() && r >= required
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// ParseRole parses the canonical role name. Matching ignores case and surrounding space.
func ParseRole(s string) (Role, error) {
	v := strings.TrimSpace(s)
	for role, name := range roleNames {
		if strings.EqualFold(v, name) {
			return role, nil
		}
	}
	return 0, fmt.Errorf("invalid role %q (valid options: User, Admin, SuperAdmin)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid role %d", uint8(r))
	}
	return []byte(roleNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
