package domain

// Role differentiates customers from administrators. The values travel in
// the token "role" claim.
type Role string

const (
	RoleCustomer Role = "ROLE_CLIENTE"
	RoleAdmin    Role = "ROLE_ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}
