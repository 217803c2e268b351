package enums

import "fmt"

// AttendantRole is the access level of a call-center attendant.
type AttendantRole string

const (
	AttendantRoleAdmin     AttendantRole = "admin"
	AttendantRoleAttendant AttendantRole = "attendant"
)

var validAttendantRoles = []AttendantRole{
	AttendantRoleAdmin,
	AttendantRoleAttendant,
}

// String implements fmt.Stringer.
func (a AttendantRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AttendantRole.
func (a AttendantRole) IsValid() bool {
	for _, candidate := range validAttendantRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAttendantRole converts raw input into an AttendantRole.
func ParseAttendantRole(value string) (AttendantRole, error) {
	for _, candidate := range validAttendantRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attendant role %q", value)
}
