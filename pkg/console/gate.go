package console

import (
	"context"
	"strings"

	"github.com/helios-energy/helios-admin/internal/shared"
)

// Status is the outcome of an access check.
type Status int

const (
	StatusChecking Status = iota
	StatusGranted
	StatusDenied
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusGranted:
		return "granted"
	case StatusDenied:
		return "denied"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "denied"
	}
}

// Requirement declares what a protected view or menu entry needs: acceptable
// roles, acceptable permissions (at least one of each present set), or
// neither, which means "any authenticated principal".
type Requirement struct {
	Roles       []string
	Permissions []string
}

// Empty reports whether the requirement only asks for an authenticated
// session.
func (r Requirement) Empty() bool {
	return len(r.Roles) == 0 && len(r.Permissions) == 0
}

// Evaluate applies a requirement to a principal. It is the single decision
// rule shared by the route guard and the menu filter, and it fails closed: a
// nil principal never satisfies anything.
func Evaluate(principal *shared.Principal, req Requirement) Status {
	if principal == nil {
		return StatusUnauthenticated
	}
	if req.Empty() {
		return StatusGranted
	}
	if len(req.Roles) > 0 {
		for _, want := range req.Roles {
			if strings.EqualFold(want, principal.Role.Slug) || strings.EqualFold(want, principal.Role.Name) {
				return StatusGranted
			}
		}
	}
	if len(req.Permissions) > 0 && principal.HasAnyPermission(req.Permissions...) {
		return StatusGranted
	}
	return StatusDenied
}

// Gate decides whether protected content may render for the current session.
type Gate struct {
	session *Session
}

// NewGate constructs a gate over the given session context.
func NewGate(session *Session) *Gate {
	return &Gate{session: session}
}

// Check resolves the access status for a requirement. When the session holds
// a token but the principal is not yet in memory it refreshes the principal
// first and evaluates the result; a failed refresh denies access rather than
// granting it.
func (g *Gate) Check(ctx context.Context, req Requirement) Status {
	switch g.session.State() {
	case StateAnonymous:
		return StatusUnauthenticated
	case StateUninitialized, StateLoading:
		g.session.Init()
		if g.session.State() != StateAuthenticated {
			return StatusUnauthenticated
		}
	}

	principal := g.session.Principal()
	if principal == nil {
		refreshed, err := g.session.Refresh(ctx)
		if err != nil {
			if err == ErrNoSession {
				return StatusUnauthenticated
			}
			return StatusDenied
		}
		principal = refreshed
	}
	return Evaluate(principal, req)
}

// Peek resolves the status without blocking on a refresh: it reports
// StatusChecking when the session is still loading or the principal has not
// arrived yet. Callers that can wait should use Check.
func (g *Gate) Peek(req Requirement) Status {
	switch g.session.State() {
	case StateAnonymous:
		return StatusUnauthenticated
	case StateUninitialized, StateLoading:
		return StatusChecking
	}
	principal := g.session.Principal()
	if principal == nil {
		return StatusChecking
	}
	return Evaluate(principal, req)
}

// CheckPage resolves access for a route through the page permission table.
// Unknown routes require only an authenticated session.
func (g *Gate) CheckPage(ctx context.Context, route string) Status {
	return g.Check(ctx, RequirementFor(route))
}
