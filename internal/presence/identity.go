package presence

// Role is the authorization role resolved for a caller by the
// authentication layer.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// CallerIdentity is the already-validated identity of the party that
// issued a hub operation. It is produced by the authentication
// middleware before any hub call; this package performs no claim
// parsing of its own.
type CallerIdentity struct {
	UserID      string
	DisplayName string
	Role        Role
}

// IsAdmin reports whether the caller carries the administrator role.
func (ci CallerIdentity) IsAdmin() bool {
	return ci.Role == RoleAdmin
}
