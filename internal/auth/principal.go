package auth

import "github.com/dukaflow/dukaflow/internal/models"

// Principal is the authenticated caller, resolved once by the HTTP
// middleware and passed explicitly into service calls. Services never read
// session or transport state themselves.
type Principal struct {
	UserID int
	Email  string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}
