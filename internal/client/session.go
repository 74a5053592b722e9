package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"civicdesk.org/internal/auth"
)

// Session is an authenticated user's profile merged with the bearer
// token that proves it.
type Session struct {
	User      auth.User `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RedirectPath is the landing page for the session's role.
func (s *Session) RedirectPath() string {
	switch s.User.Role {
	case auth.RoleAgency:
		return "/agency/cases"
	case auth.RoleAdmin:
		return "/admin"
	default:
		return "/dashboard"
	}
}

// sessionBody matches the flattened login response: profile fields next
// to the token.
type sessionBody struct {
	auth.User
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionStore owns the authentication lifecycle: restoring a persisted
// token on startup, login, logout, and the live update channel tied to
// the session. It is safe for concurrent use.
type SessionStore struct {
	client *Client
	tokens TokenStore

	mu      sync.Mutex
	session *Session
	live    *LiveChannel

	dialLive func(token string) (*LiveChannel, error)
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithLiveDialer makes the store open a live update channel whenever a
// session becomes active and close it on logout. Without it the store
// manages tokens only.
func WithLiveDialer(dial func(token string) (*LiveChannel, error)) SessionOption {
	return func(s *SessionStore) { s.dialLive = dial }
}

// NewSessionStore returns a store backed by the given client and token
// persistence.
func NewSessionStore(c *Client, tokens TokenStore, opts ...SessionOption) *SessionStore {
	s := &SessionStore{client: c, tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the active session, or nil when unauthenticated.
func (s *SessionStore) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Live returns the open live channel, or nil when none is active.
func (s *SessionStore) Live() *LiveChannel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Restore rebuilds the session from a persisted token. With no token on
// record it returns (nil, nil) without touching the network. Any verify
// failure, a rejected token or an unreachable server alike, clears the
// token and yields no session rather than an error: the portal boots
// logged out and the viewer signs in again.
func (s *SessionStore) Restore(ctx context.Context) (*Session, error) {
	token, err := s.tokens.Get()
	if err != nil {
		return nil, fmt.Errorf("read persisted token: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	s.client.SetToken(token)
	var user auth.User
	err = s.client.doJSON(ctx, http.MethodGet, "/api/auth/verify", nil, &user, "session verification failed")
	if err != nil {
		s.client.SetToken("")
		if clearErr := s.tokens.Clear(); clearErr != nil {
			return nil, fmt.Errorf("clear rejected token: %w", clearErr)
		}
		return nil, nil
	}

	session := &Session{User: user, Token: token}
	s.activate(session)
	return session, nil
}

// Login authenticates with credentials, persists the returned token,
// and activates the session.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var resp sessionBody
	err := s.client.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &resp, "login failed")
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &AuthError{Message: "login response missing token"}
	}

	if err := s.tokens.Set(resp.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	s.client.SetToken(resp.Token)

	session := &Session{User: resp.User, Token: resp.Token, ExpiresAt: resp.ExpiresAt}
	s.activate(session)
	return session, nil
}

// Register creates an account. It does not log the new user in; the
// caller follows up with Login.
func (s *SessionStore) Register(ctx context.Context, name, email, password string) (*auth.User, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var user auth.User
	err := s.client.doJSON(ctx, http.MethodPost, "/api/auth/register", body, &user, "registration failed")
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout tears the session down: best-effort server notification, then
// token disposal and live channel close. A failed logout call never
// blocks local cleanup.
func (s *SessionStore) Logout(ctx context.Context) error {
	_ = s.client.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil, "logout failed")

	s.client.SetToken("")
	clearErr := s.tokens.Clear()

	s.mu.Lock()
	s.session = nil
	live := s.live
	s.live = nil
	s.mu.Unlock()

	if live != nil {
		live.Close()
	}
	if clearErr != nil {
		return fmt.Errorf("clear token: %w", clearErr)
	}
	return nil
}

// activate installs the session and, when configured, replaces the live
// channel. Dial failures are swallowed: the session works without live
// updates, matching the channel's no-reconnect contract.
func (s *SessionStore) activate(session *Session) {
	var live *LiveChannel
	if s.dialLive != nil {
		live, _ = s.dialLive(session.Token)
	}

	s.mu.Lock()
	old := s.live
	s.session = session
	s.live = live
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
}
