package domain

// Role enumerates the account roles of the HR system.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleEmployee:
		return true
	}
	return false
}

// SystemActorID stamps documents written by the service itself (bootstrap, repair jobs).
const SystemActorID = "system"

// Actor is the principal performing a mutation.
type Actor struct {
	ID   string
	Role Role
}

// SystemActor returns the actor used for internal writes.
func SystemActor() Actor {
	return Actor{ID: SystemActorID, Role: RoleAdmin}
}
