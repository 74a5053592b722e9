package auth

import "context"

// Store describes persistence operations required by the auth subsystem.
type Store interface {
	Users(ctx context.Context) UserStore
	Agencies(ctx context.Context) AgencyStore
}

// UserStore manages user accounts.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)
	Delete(ctx context.Context, id string) error
}

// AgencyStore manages agencies.
type AgencyStore interface {
	Create(ctx context.Context, a *Agency) error
	Find(ctx context.Context, id string) (*Agency, error)
	List(ctx context.Context) ([]*Agency, error)
	Update(ctx context.Context, id string, upd AgencyUpdate) (*Agency, error)
	Delete(ctx context.Context, id string) error
}
