package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"civicdesk.org/internal/auth"
	"civicdesk.org/internal/complaint"
	"civicdesk.org/internal/httpapi"
	"civicdesk.org/internal/stream"
)

// portal bundles a running API with the seam needed to seed accounts.
type portal struct {
	baseURL  string
	auth     *auth.Service
	hub      *stream.Hub
	requests atomic.Int64
}

func newPortal(t *testing.T) *portal {
	t.Helper()

	t.Setenv("CIVICDESK_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()

	p := &portal{}
	p.auth = auth.NewService(auth.NewInMemory())
	p.hub = stream.NewHub()
	api := httpapi.New(httpapi.ReadyProbe{}, "test", p.auth, complaint.NewInMemory(), p.hub)
	api.SetUploadDir(t.TempDir())
	api.SetRateLimit(100, 100)

	counted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.requests.Add(1)
		api.Handler().ServeHTTP(w, r)
	})
	srv := httptest.NewServer(counted)
	t.Cleanup(srv.Close)
	p.baseURL = srv.URL
	return p
}

func (p *portal) seedUser(t *testing.T, name, email, role, agencyID string) *auth.User {
	t.Helper()
	user, err := p.auth.CreateUser(context.Background(), name, email, "password-1", role, agencyID)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func (p *portal) seedAgency(t *testing.T, name string) *auth.Agency {
	t.Helper()
	agency, err := p.auth.CreateAgency(context.Background(), name, []string{"general"}, "ops@example.com")
	if err != nil {
		t.Fatalf("seed agency %s: %v", name, err)
	}
	return agency
}
