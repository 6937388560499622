package model

// Role is the coarse access level of a signed-in visitor.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// ParseRole maps a stored role name onto a Role. Unknown or empty names
// fall back to RoleStudent, the least privileged level.
func ParseRole(name string) Role {
	if Role(name) == RoleAdmin {
		return RoleAdmin
	}
	return RoleStudent
}

// Label returns the Vietnamese display name of the role.
func (r Role) Label() string {
	if r == RoleAdmin {
		return "Quản trị viên"
	}
	return "Học viên"
}
