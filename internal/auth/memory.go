package auth

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety. Used by
// tests and by dev mode when no PostgreSQL DSN is configured.
type InMemory struct {
	mu       sync.RWMutex
	users    map[string]*User
	byEmail  map[string]string
	agencies map[string]*Agency
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:    make(map[string]*User),
		byEmail:  make(map[string]string),
		agencies: make(map[string]*Agency),
	}
}

func (m *InMemory) Users(ctx context.Context) UserStore      { return (*memUsers)(m) }
func (m *InMemory) Agencies(ctx context.Context) AgencyStore { return (*memAgencies)(m) }

type memUsers InMemory

func (m *memUsers) Create(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return fmt.Errorf("%w: user %s", ErrAlreadyExists, u.ID)
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return fmt.Errorf("%w: email %s", ErrAlreadyExists, u.Email)
	}
	cp := *u
	m.users[u.ID] = &cp
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *memUsers) Find(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *memUsers) List(ctx context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Update(ctx context.Context, id string, upd UserUpdate) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil && *upd.Email != u.Email {
		if _, taken := m.byEmail[*upd.Email]; taken {
			return nil, fmt.Errorf("%w: email %s", ErrAlreadyExists, *upd.Email)
		}
		delete(m.byEmail, u.Email)
		u.Email = *upd.Email
		m.byEmail[u.Email] = id
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Password != nil {
		u.PasswordHash = *upd.Password
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.AgencyID != nil {
		u.AgencyID = *upd.AgencyID
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.byEmail, u.Email)
	delete(m.users, id)
	return nil
}

type memAgencies InMemory

func (m *memAgencies) Create(ctx context.Context, a *Agency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agencies[a.ID]; ok {
		return fmt.Errorf("%w: agency %s", ErrAlreadyExists, a.ID)
	}
	cp := *a
	cp.Categories = append([]string(nil), a.Categories...)
	m.agencies[a.ID] = &cp
	return nil
}

func (m *memAgencies) Find(ctx context.Context, id string) (*Agency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agencies[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	cp.Categories = append([]string(nil), a.Categories...)
	return &cp, nil
}

func (m *memAgencies) List(ctx context.Context) ([]*Agency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Agency, 0, len(m.agencies))
	for _, a := range m.agencies {
		cp := *a
		cp.Categories = append([]string(nil), a.Categories...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memAgencies) Update(ctx context.Context, id string, upd AgencyUpdate) (*Agency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agencies[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Categories != nil {
		a.Categories = append([]string(nil), upd.Categories...)
	}
	if upd.ContactEmail != nil {
		a.ContactEmail = *upd.ContactEmail
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	cp.Categories = append([]string(nil), a.Categories...)
	return &cp, nil
}

func (m *memAgencies) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agencies[id]; !ok {
		return ErrNotFound
	}
	delete(m.agencies, id)
	return nil
}
