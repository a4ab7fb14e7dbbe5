package clinic

// UserRole is the role assigned to an identity at registration.
// Fixed for the lifetime of the record.
type UserRole string

const (
	// RolePatient is the subject of clinical records
	RolePatient UserRole = "patient"
	// RoleDoctor can author prescriptions
	RoleDoctor UserRole = "doctor"
	// RoleAdmin manages the registration approval queue
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r UserRole) String() string {
	return string(r)
}

// AllRoles returns the predefined roles
func AllRoles() []UserRole {
	return []UserRole{RolePatient, RoleDoctor, RoleAdmin}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
