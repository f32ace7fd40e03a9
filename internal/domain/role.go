package domain

// Role names carried in the JWT and stored on the user profile.
const (
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
	RoleEntrant   = "entrant"
)

// ValidRole reports whether name is a known role.
func ValidRole(name string) bool {
	switch name {
	case RoleAdmin, RoleOrganizer, RoleEntrant:
		return true
	}
	return false
}
