package client

import (
	"strings"
	"sync"

	"civicdesk.org/internal/auth"
)

// RouteAction is the outcome of resolving a path against the session
// state.
type RouteAction int

const (
	// Wait means session restoration is still in flight; render nothing
	// yet rather than flashing a redirect.
	Wait RouteAction = iota
	// Render means the viewer may see the requested view.
	Render
	// RedirectLogin sends an unauthenticated viewer to the login view.
	RedirectLogin
	// RedirectHome sends an authenticated viewer away from a view
	// their role may not see: to the root for a disallowed view, or
	// to their own landing page for an unknown path.
	RedirectHome
)

func (a RouteAction) String() string {
	switch a {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Decision is a resolved route: the action plus the target path for
// redirects.
type Decision struct {
	Action RouteAction
	Target string
}

// Route guards one path prefix. An empty Roles list with Public false
// admits any authenticated user.
type Route struct {
	Prefix string
	Public bool
	Roles  []string
}

// DefaultRoutes is the portal's route table.
var DefaultRoutes = []Route{
	{Prefix: "/login", Public: true},
	{Prefix: "/register", Public: true},
	{Prefix: "/dashboard", Roles: []string{auth.RoleCitizen}},
	{Prefix: "/complaints", Roles: []string{auth.RoleCitizen}},
	{Prefix: "/agency", Roles: []string{auth.RoleAgency}},
	{Prefix: "/admin", Roles: []string{auth.RoleAdmin}},
	{Prefix: "/", Public: true},
}

type routerState int

const (
	stateLoading routerState = iota
	stateUnauthenticated
	stateAuthenticated
)

// Router gates views by session state and role. It starts in the
// loading state; the session store's Restore result moves it to
// unauthenticated or authenticated.
type Router struct {
	mu     sync.RWMutex
	state  routerState
	role   string
	routes []Route
}

// NewRouter returns a loading-state router over the given route table,
// or DefaultRoutes when none is supplied.
func NewRouter(routes []Route) *Router {
	if routes == nil {
		routes = DefaultRoutes
	}
	return &Router{routes: routes}
}

// SetLoading puts the router back into the restoring state.
func (r *Router) SetLoading() {
	r.mu.Lock()
	r.state = stateLoading
	r.role = ""
	r.mu.Unlock()
}

// SetSession records the restore/login outcome: a nil session means
// unauthenticated, otherwise the session's role gates protected views.
func (r *Router) SetSession(s *Session) {
	r.mu.Lock()
	if s == nil {
		r.state = stateUnauthenticated
		r.role = ""
	} else {
		r.state = stateAuthenticated
		r.role = s.User.Role
	}
	r.mu.Unlock()
}

// Resolve decides what happens when the viewer navigates to path.
// Public paths render in every state, including loading.
func (r *Router) Resolve(path string) Decision {
	route, known := r.match(path)
	if known && route.Public {
		return Decision{Action: Render}
	}

	r.mu.RLock()
	state, role := r.state, r.role
	r.mu.RUnlock()

	switch state {
	case stateLoading:
		return Decision{Action: Wait}
	case stateUnauthenticated:
		return Decision{Action: RedirectLogin, Target: "/login"}
	}

	if !known {
		// Unknown protected path: land the viewer somewhere valid.
		return Decision{Action: RedirectHome, Target: homeFor(role)}
	}
	if len(route.Roles) == 0 || containsRole(route.Roles, role) {
		return Decision{Action: Render}
	}
	// A role allowed in but not here goes to the root, which routes
	// to their own landing page.
	return Decision{Action: RedirectHome, Target: "/"}
}

func (r *Router) match(path string) (Route, bool) {
	for _, route := range r.routes {
		if path == route.Prefix || strings.HasPrefix(path, route.Prefix+"/") {
			return route, true
		}
	}
	return Route{}, false
}

func homeFor(role string) string {
	s := Session{User: auth.User{Role: role}}
	return s.RedirectPath()
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
