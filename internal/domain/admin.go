package domain

import "time"

// Role is an administrative role. The set is closed.
type Role string

const (
	RoleMaster   Role = "master"
	RoleVendedor Role = "vendedor"
	RoleEstoque  Role = "estoque"
)

// ParseRole accepts only the known roles, compared byte for byte.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleMaster:
		return RoleMaster, true
	case RoleVendedor:
		return RoleVendedor, true
	case RoleEstoque:
		return RoleEstoque, true
	}
	return "", false
}

// AdminRecord associates a uid with an administrative role.
type AdminRecord struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
