package models

// Role defines the user role assigned through the profile record
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"

	// RoleUnknown marks a session whose profile row does not exist yet. It is
	// denied every mutating action until a role is chosen.
	RoleUnknown Role = ""
)

// Valid reports whether the role is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// DateLayout is the calendar-date format used at the store boundary.
const DateLayout = "2006-01-02"
