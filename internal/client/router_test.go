package client_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"civicdesk.org/internal/auth"
	"civicdesk.org/internal/client"
)

func session(role string) *client.Session {
	return &client.Session{User: auth.User{ID: "u-1", Role: role}}
}

func TestRouterWaitsWhileLoading(t *testing.T) {
	r := client.NewRouter(nil)

	d := r.Resolve("/dashboard")
	require.Equal(t, client.Wait, d.Action)
}

func TestRouterPublicPathsRenderInAnyState(t *testing.T) {
	r := client.NewRouter(nil)

	for _, path := range []string{"/login", "/register", "/"} {
		require.Equal(t, client.Render, r.Resolve(path).Action, "loading state, path %s", path)
	}

	r.SetSession(nil)
	require.Equal(t, client.Render, r.Resolve("/login").Action)

	r.SetSession(session(auth.RoleCitizen))
	require.Equal(t, client.Render, r.Resolve("/login").Action)
}

func TestRouterRedirectsUnauthenticated(t *testing.T) {
	r := client.NewRouter(nil)
	r.SetSession(nil)

	d := r.Resolve("/dashboard")
	require.Equal(t, client.RedirectLogin, d.Action)
	require.Equal(t, "/login", d.Target)
}

func TestRouterGatesByRole(t *testing.T) {
	r := client.NewRouter(nil)

	r.SetSession(session(auth.RoleCitizen))
	require.Equal(t, client.Render, r.Resolve("/dashboard").Action)
	require.Equal(t, client.Render, r.Resolve("/complaints/c-42").Action)

	d := r.Resolve("/admin/users")
	require.Equal(t, client.RedirectHome, d.Action)
	require.Equal(t, "/", d.Target)

	r.SetSession(session(auth.RoleAgency))
	require.Equal(t, client.Render, r.Resolve("/agency/cases").Action)
	d = r.Resolve("/dashboard")
	require.Equal(t, client.RedirectHome, d.Action)
	require.Equal(t, "/", d.Target)

	r.SetSession(session(auth.RoleAdmin))
	require.Equal(t, client.Render, r.Resolve("/admin").Action)
	d = r.Resolve("/agency/cases")
	require.Equal(t, client.RedirectHome, d.Action)
	require.Equal(t, "/", d.Target)
}

func TestRouterUnknownProtectedPathGoesHome(t *testing.T) {
	r := client.NewRouter(nil)
	r.SetSession(session(auth.RoleCitizen))

	d := r.Resolve("/nonsense")
	require.Equal(t, client.RedirectHome, d.Action)
	require.Equal(t, "/dashboard", d.Target)
}

func TestRouterSetLoadingResets(t *testing.T) {
	r := client.NewRouter(nil)
	r.SetSession(session(auth.RoleCitizen))
	require.Equal(t, client.Render, r.Resolve("/dashboard").Action)

	r.SetLoading()
	require.Equal(t, client.Wait, r.Resolve("/dashboard").Action)
}
