// Package access holds the role model and the single ownership rule every write path uses.
package access

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleAdvisor    Role = "asesor"
	RoleBackoffice Role = "backoffice"
)

var Roles = []Role{RoleAdmin, RoleSupervisor, RoleAdvisor, RoleBackoffice}

func ValidRole(s string) bool {
	for _, r := range Roles {
		if string(r) == s {
			return true
		}
	}
	return false
}

type RoleInfo struct {
	Label       string
	Description string
}

var roleInfo = map[Role]RoleInfo{
	RoleAdmin:      {Label: "Administrador", Description: "Acceso total al sistema"},
	RoleSupervisor: {Label: "Supervisor", Description: "Supervisa asesores y ventas"},
	RoleAdvisor:    {Label: "Asesor", Description: "Gestiona leads y ventas"},
	RoleBackoffice: {Label: "Backoffice", Description: "Procesa ventas en Winforce"},
}

func (r Role) Label() string {
	if info, ok := roleInfo[r]; ok {
		return info.Label
	}
	return string(r)
}

func (r Role) Description() string {
	return roleInfo[r].Description
}

// Session is the authenticated actor of a request.
type Session struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

func (s *Session) HasRole(roles ...Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// CanMutate is the ownership rule for leads and sales: admins may change any row,
// everyone else only rows they own.
func CanMutate(ownerID string, actor *Session) bool {
	if actor == nil || actor.UserID == "" {
		return false
	}
	if actor.Role == RoleAdmin {
		return true
	}
	return ownerID != "" && ownerID == actor.UserID
}

// HomeFor is where a role lands after login or when it opens a page it may not see.
func HomeFor(role Role) string {
	switch role {
	case RoleAdmin:
		return "/admin"
	case RoleSupervisor:
		return "/dashboard/supervisor"
	case RoleBackoffice:
		return "/dashboard/backoffice"
	default:
		return "/dashboard"
	}
}
