package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"civicdesk.org/internal/ids"
)

const defaultTokenTTL = 12 * time.Hour

// Service provides account management and bearer token issuance.
type Service struct {
	store    Store
	now      func() time.Time
	tokenTTL time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithTokenTTL configures bearer token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service over the given store.
func NewService(store Store, opts ...ServiceOption) *Service {
	svc := &Service{
		store:    store,
		now:      time.Now,
		tokenTTL: defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Session is the result of a successful login or token verification:
// the user's profile plus the bearer token that authenticates them.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register creates a new account. Role defaults to citizen; an agency
// account must name the agency it operates for.
func (s *Service) Register(ctx context.Context, name, email, password, role, agencyID string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	role = strings.TrimSpace(strings.ToLower(role))
	if role == "" {
		role = RoleCitizen
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: unsupported role %s", ErrInvalidInput, role)
	}
	agencyID = strings.TrimSpace(agencyID)
	if role == RoleAgency {
		if agencyID == "" {
			return nil, fmt.Errorf("%w: agency accounts require agencyId", ErrInvalidInput)
		}
		if _, err := s.store.Agencies(ctx).Find(ctx, agencyID); err != nil {
			return nil, fmt.Errorf("%w: unknown agency %s", ErrInvalidInput, agencyID)
		}
	} else {
		agencyID = ""
	}

	if existing, err := s.store.Users(ctx).FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrAlreadyExists)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &User{
		ID:           ids.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		AgencyID:     agencyID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users(ctx).Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.store.Users(ctx).FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrUnauthorized
	}
	token, err := GenerateToken(user, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{
		User:      *user,
		Token:     token,
		ExpiresAt: s.now().UTC().Add(s.tokenTTL),
	}, nil
}

// Verify validates a bearer token and loads the current profile. The
// profile is read from the store rather than the claims so a deleted
// account invalidates outstanding tokens immediately.
func (s *Service) Verify(ctx context.Context, token string) (*User, error) {
	claims, err := ParseAndValidate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.store.Users(ctx).Find(ctx, claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// CreateUser is the administrative account creation path.
func (s *Service) CreateUser(ctx context.Context, name, email, password, role, agencyID string) (*User, error) {
	return s.Register(ctx, name, email, password, role, agencyID)
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.store.Users(ctx).List(ctx)
}

// UpdateUser applies the given field changes to an account.
func (s *Service) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
		}
		upd.Email = &email
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	if upd.Role != nil {
		role := strings.TrimSpace(strings.ToLower(*upd.Role))
		if !ValidRole(role) {
			return nil, fmt.Errorf("%w: unsupported role %s", ErrInvalidInput, role)
		}
		upd.Role = &role
	}
	if upd.Password != nil {
		pw := strings.TrimSpace(*upd.Password)
		if pw == "" {
			return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
		}
		hash, err := HashPassword(pw)
		if err != nil {
			return nil, err
		}
		upd.Password = &hash
	}
	return s.store.Users(ctx).Update(ctx, id, upd)
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.Users(ctx).Delete(ctx, id)
}

// CreateAgency registers a new agency.
func (s *Service) CreateAgency(ctx context.Context, name string, categories []string, contactEmail string) (*Agency, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: agency name is required", ErrInvalidInput)
	}
	contactEmail = normalizeEmail(contactEmail)
	now := s.now().UTC()
	agency := &Agency{
		ID:           ids.New(),
		Name:         name,
		Categories:   dedupeStrings(categories),
		ContactEmail: contactEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Agencies(ctx).Create(ctx, agency); err != nil {
		return nil, err
	}
	return agency, nil
}

// GetAgency loads one agency.
func (s *Service) GetAgency(ctx context.Context, id string) (*Agency, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: agency id is required", ErrInvalidInput)
	}
	return s.store.Agencies(ctx).Find(ctx, id)
}

// ListAgencies returns all agencies.
func (s *Service) ListAgencies(ctx context.Context) ([]*Agency, error) {
	return s.store.Agencies(ctx).List(ctx)
}

// UpdateAgency applies the given field changes to an agency.
func (s *Service) UpdateAgency(ctx context.Context, id string, upd AgencyUpdate) (*Agency, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: agency id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: agency name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	if upd.Categories != nil {
		upd.Categories = dedupeStrings(upd.Categories)
	}
	if upd.ContactEmail != nil {
		email := normalizeEmail(*upd.ContactEmail)
		upd.ContactEmail = &email
	}
	return s.store.Agencies(ctx).Update(ctx, id, upd)
}

// DeleteAgency removes an agency.
func (s *Service) DeleteAgency(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: agency id is required", ErrInvalidInput)
	}
	return s.store.Agencies(ctx).Delete(ctx, id)
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return ""
	}
	return email
}

func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
