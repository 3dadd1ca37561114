package gate

import "omcis-store/internal/domain"

const (
	ViewDashboard  = "/admin"
	ViewProducts   = "/admin/produtos"
	ViewCategories = "/admin/categoria"
	ViewOrders     = "/admin/pedidos"
	ViewAdmins     = "/admin/newAdmins"
)

// LayoutRoles guard every admin view before the per-view rule.
var LayoutRoles = []domain.Role{domain.RoleMaster, domain.RoleVendedor, domain.RoleEstoque}

var viewRoles = map[string][]domain.Role{
	ViewDashboard:  {domain.RoleMaster},
	ViewProducts:   {domain.RoleMaster, domain.RoleVendedor},
	ViewCategories: {domain.RoleMaster, domain.RoleVendedor},
	ViewOrders:     {domain.RoleMaster, domain.RoleEstoque},
	ViewAdmins:     {domain.RoleMaster},
}

// AllowedRoles returns the roles allowed on an admin view.
func AllowedRoles(view string) ([]domain.Role, bool) {
	roles, ok := viewRoles[view]
	if !ok {
		return nil, false
	}
	out := make([]domain.Role, len(roles))
	copy(out, roles)
	return out, true
}

// DecideView applies the admin layout rule and then the view's own rule.
func DecideView(state State, allowed []domain.Role) Decision {
	if d := Decide(state, LayoutRoles); d.Outcome != OutcomeRender {
		return d
	}
	return Decide(state, allowed)
}
