// Package gate decides whether a principal may see an admin view.
package gate

import (
	"omcis-store/internal/domain"
)

// State is the resolved role state of a principal: Unauthenticated, NotAdmin or one of
// the admin roles.
type State string

const (
	Unauthenticated State = "unauthenticated"
	NotAdmin        State = "not_admin"
)

func RoleState(r domain.Role) State {
	return State(r)
}

type Outcome string

const (
	OutcomeLoading  Outcome = "loading"
	OutcomeRender   Outcome = "render"
	OutcomeRedirect Outcome = "redirect"
)

const (
	ViewHome = "/"
	ViewAuth = "/auth"
)

type Decision struct {
	Outcome  Outcome `json:"outcome"`
	State    State   `json:"state,omitempty"`
	Redirect string  `json:"redirect,omitempty"`
}

var Loading = Decision{Outcome: OutcomeLoading}

// Decide maps a role state to a decision for a view allowing the given roles. It is
// pure. Strings outside the role set count as NotAdmin.
func Decide(state State, allowed []domain.Role) Decision {
	switch state {
	case Unauthenticated:
		return Decision{Outcome: OutcomeRedirect, State: Unauthenticated, Redirect: ViewAuth}
	case NotAdmin:
		return Decision{Outcome: OutcomeRedirect, State: NotAdmin, Redirect: ViewHome}
	}
	role, ok := domain.ParseRole(string(state))
	if !ok {
		return Decision{Outcome: OutcomeRedirect, State: NotAdmin, Redirect: ViewHome}
	}
	for _, r := range allowed {
		if r == role {
			return Decision{Outcome: OutcomeRender, State: state}
		}
	}
	return Decision{Outcome: OutcomeRedirect, State: state, Redirect: Fallback(role)}
}

// Fallback is the landing view of a role that is refused a view.
func Fallback(r domain.Role) string {
	switch r {
	case domain.RoleVendedor:
		return ViewProducts
	case domain.RoleEstoque:
		return ViewOrders
	case domain.RoleMaster:
		return ViewHome
	}
	return ViewHome
}
