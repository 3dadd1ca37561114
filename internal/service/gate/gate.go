package gate

import (
	"context"
	"errors"
	"io"

	"omcis-store/internal/domain"

	"github.com/sirupsen/logrus"
)

// AdminLookup reads administrator records by uid.
type AdminLookup interface {
	GetByUID(ctx context.Context, uid string) (*domain.AdminRecord, error)
}

// AuthSource reports authentication state changes. It calls fn with the current
// state on subscribe.
type AuthSource interface {
	OnAuthStateChange(fn func(domain.AuthState)) (unsubscribe func())
}

type Gate struct {
	admins AdminLookup
	logger logrus.FieldLogger
}

func New(admins AdminLookup, logger logrus.FieldLogger) *Gate {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Gate{admins: admins, logger: logger.WithField("component", "gate")}
}

// ResolveState looks up the principal's role. Lookup failures and unknown role
// strings resolve to NotAdmin.
func (g *Gate) ResolveState(ctx context.Context, p *domain.Principal) State {
	if p == nil {
		return Unauthenticated
	}
	rec, err := g.admins.GetByUID(ctx, p.UID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && ctx.Err() == nil {
			g.logger.WithError(err).WithField("uid", p.UID).Warn("gate: role lookup failed")
		}
		return NotAdmin
	}
	role, ok := domain.ParseRole(string(rec.Role))
	if !ok {
		g.logger.WithFields(logrus.Fields{"uid": p.UID, "role": rec.Role}).Warn("gate: unknown role")
		return NotAdmin
	}
	return RoleState(role)
}

// Evaluate decides for a single auth state. Pending auth is always Loading.
func (g *Gate) Evaluate(ctx context.Context, auth domain.AuthState, allowed []domain.Role) Decision {
	if !auth.Resolved {
		return Loading
	}
	return DecideView(g.ResolveState(ctx, auth.Principal), allowed)
}

type lookupResult struct {
	gen   int
	state State
}

// Watch streams decisions as the auth state changes. Each principal change emits
// Loading until its role lookup finishes; a lookup overtaken by a newer auth state is
// discarded. Consecutive equal decisions are emitted once. The channel is closed and
// the auth subscription released when ctx ends.
func (g *Gate) Watch(ctx context.Context, src AuthSource, allowed []domain.Role) <-chan Decision {
	out := make(chan Decision)
	states := make(chan domain.AuthState, 1)
	unsubscribe := src.OnAuthStateChange(func(st domain.AuthState) {
		// Callbacks are serialised by the source; keep only the newest state.
		select {
		case <-states:
		default:
		}
		states <- st
	})

	go func() {
		defer close(out)
		defer unsubscribe()

		var (
			last         *Decision
			gen          int
			cancelLookup context.CancelFunc = func() {}
			results                         = make(chan lookupResult)
		)
		defer func() { cancelLookup() }()

		emit := func(d Decision) bool {
			if last != nil && *last == d {
				return true
			}
			select {
			case out <- d:
				last = &d
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case st := <-states:
				gen++
				cancelLookup()
				cancelLookup = func() {}
				switch {
				case !st.Resolved:
					if !emit(Loading) {
						return
					}
				case st.Principal == nil:
					if !emit(DecideView(Unauthenticated, allowed)) {
						return
					}
				default:
					if !emit(Loading) {
						return
					}
					var lookupCtx context.Context
					lookupCtx, cancelLookup = context.WithCancel(ctx)
					go func(gen int, p domain.Principal) {
						state := g.ResolveState(lookupCtx, &p)
						select {
						case results <- lookupResult{gen: gen, state: state}:
						case <-lookupCtx.Done():
						}
					}(gen, *st.Principal)
				}
			case r := <-results:
				if r.gen != gen {
					continue
				}
				if !emit(DecideView(r.state, allowed)) {
					return
				}
			}
		}
	}()
	return out
}
