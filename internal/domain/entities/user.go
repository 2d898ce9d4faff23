package entities

// Role governs what an authenticated user may do.
type Role string

const (
	RoleLearner Role = "learner"
	RoleAdmin   Role = "admin"
)

// User is an already authenticated identity handed to the engine.
type User struct {
	ID   int64
	Role Role
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ParseRole maps a raw role to a Role, defaulting to learner.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleLearner
}
