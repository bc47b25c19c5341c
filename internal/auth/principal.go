package auth

type Role string

const (
	RoleClient Role = "client"
	RoleWasher Role = "washer"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleWasher || r == RoleAdmin
}

// Principal is the authenticated actor of a single request.
type Principal struct {
	Role Role
	ID   uint
}

func (p Principal) IsAdmin() bool  { return p.Role == RoleAdmin }
func (p Principal) IsClient() bool { return p.Role == RoleClient }
func (p Principal) IsWasher() bool { return p.Role == RoleWasher }

// System is used by tools that act outside of a request, such as the CLI.
var System = Principal{Role: RoleAdmin}
