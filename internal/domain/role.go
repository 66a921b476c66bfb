// README: User role enumeration parsed at the store boundary.
package domain

import "strings"

type Role string

const (
	RoleNone      Role = "none"
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
	RoleAdmin     Role = "admin"
)

var Roles = []Role{RoleNone, RoleDriver, RolePassenger, RoleAdmin}

// ParseRole trims and lowercases raw. An empty value is the unset role.
func ParseRole(raw string) (Role, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch Role(v) {
	case "", RoleNone:
		return RoleNone, nil
	case RoleDriver, RolePassenger, RoleAdmin:
		return Role(v), nil
	default:
		return "", MalformedError{Field: "role", Value: raw}
	}
}

// Operational reports whether the role takes part in seat allocation.
func (r Role) Operational() bool {
	switch r {
	case RoleDriver, RolePassenger:
		return true
	case RoleNone, RoleAdmin:
		return false
	default:
		panic("unhandled role " + string(r))
	}
}

func (r Role) String() string {
	return string(r)
}
