package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"civicdesk.org/internal/auth"
)

// Store backs both the auth subsystem and the complaint service with
// PostgreSQL via the pgx stdlib driver.
type Store struct {
	db *sql.DB
}

var _ auth.Store = (*Store)(nil)

// Open connects with tuned pool defaults; adjust under load tests.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection (tests use sqlmock here).
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users(ctx context.Context) auth.UserStore      { return (*userStore)(s) }
func (s *Store) Agencies(ctx context.Context) auth.AgencyStore { return (*agencyStore)(s) }

type userStore Store

func (s *userStore) Create(ctx context.Context, u *auth.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, name, email, password_hash, role, agency_id, created_at, updated_at)
		values ($1,$2,$3,$4,$5,nullif($6,''),$7,$8)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.AgencyID, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrAlreadyExists
	}
	return err
}

const userColumns = `id, name, email, password_hash, role, coalesce(agency_id,''), created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.AgencyID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *userStore) Find(ctx context.Context, id string) (*auth.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id))
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email=$1`, email))
}

func (s *userStore) List(ctx context.Context) ([]*auth.User, error) {
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *userStore) Update(ctx context.Context, id string, upd auth.UserUpdate) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		update users set
			name          = coalesce($2, name),
			email         = coalesce($3, email),
			password_hash = coalesce($4, password_hash),
			role          = coalesce($5, role),
			agency_id     = case when $6::text is null then agency_id else nullif($6,'') end,
			updated_at    = now()
		where id = $1
		returning `+userColumns,
		id, upd.Name, upd.Email, upd.Password, upd.Role, upd.AgencyID)
	return scanUser(row)
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrNotFound
	}
	return nil
}

type agencyStore Store

func (s *agencyStore) Create(ctx context.Context, a *auth.Agency) error {
	_, err := s.db.ExecContext(ctx, `
		insert into agencies(id, name, categories, contact_email, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6)
	`, a.ID, a.Name, joinCategories(a.Categories), a.ContactEmail, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrAlreadyExists
	}
	return err
}

const agencyColumns = `id, name, categories, contact_email, created_at, updated_at`

func scanAgency(row interface{ Scan(...any) error }) (*auth.Agency, error) {
	var a auth.Agency
	var cats string
	err := row.Scan(&a.ID, &a.Name, &cats, &a.ContactEmail, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Categories = splitCategories(cats)
	return &a, nil
}

func (s *agencyStore) Find(ctx context.Context, id string) (*auth.Agency, error) {
	return scanAgency(s.db.QueryRowContext(ctx, `select `+agencyColumns+` from agencies where id=$1`, id))
}

func (s *agencyStore) List(ctx context.Context) ([]*auth.Agency, error) {
	rows, err := s.db.QueryContext(ctx, `select `+agencyColumns+` from agencies order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*auth.Agency
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *agencyStore) Update(ctx context.Context, id string, upd auth.AgencyUpdate) (*auth.Agency, error) {
	var cats *string
	if upd.Categories != nil {
		joined := joinCategories(upd.Categories)
		cats = &joined
	}
	row := s.db.QueryRowContext(ctx, `
		update agencies set
			name          = coalesce($2, name),
			categories    = coalesce($3, categories),
			contact_email = coalesce($4, contact_email),
			updated_at    = now()
		where id = $1
		returning `+agencyColumns,
		id, upd.Name, cats, upd.ContactEmail)
	return scanAgency(row)
}

func (s *agencyStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from agencies where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrNotFound
	}
	return nil
}

// Categories are stored as a comma-joined text column; none of the
// category labels contain commas by validation.
func joinCategories(cats []string) string { return strings.Join(cats, ",") }

func splitCategories(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// 23505 = unique_violation; the stdlib driver surfaces it in the message.
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}
