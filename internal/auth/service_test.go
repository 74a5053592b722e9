package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	setSecret(t)
	return NewService(NewInMemory())
}

func TestRegisterDefaultsToCitizen(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(context.Background(), "Ayan Serik", "Ayan@Example.com ", "password-1", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != RoleCitizen {
		t.Fatalf("role = %s, want citizen", user.Role)
	}
	if user.Email != "ayan@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "password-1" {
		t.Fatal("password not hashed")
	}
	if user.ID == "" {
		t.Fatal("missing id")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "A", "dup@example.com", "password-1", "", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, "B", "DUP@example.com", "password-2", "", "")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRegisterAgencyRequiresExistingAgency(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Op", "op@example.com", "password-1", RoleAgency, "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without agencyId, got %v", err)
	}

	_, err = svc.Register(ctx, "Op", "op@example.com", "password-1", RoleAgency, "missing-agency")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown agency, got %v", err)
	}

	agency, err := svc.CreateAgency(ctx, "roads", []string{"infrastructure"}, "ops@roads.example.com")
	if err != nil {
		t.Fatalf("CreateAgency: %v", err)
	}
	user, err := svc.Register(ctx, "Op", "op@example.com", "password-1", RoleAgency, agency.ID)
	if err != nil {
		t.Fatalf("Register with agency: %v", err)
	}
	if user.AgencyID != agency.ID {
		t.Fatalf("agency = %s, want %s", user.AgencyID, agency.ID)
	}
}

func TestLoginAndVerify(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Ayan", "ayan@example.com", "password-1", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	session, err := svc.Login(ctx, "ayan@example.com", "password-1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token == "" {
		t.Fatal("empty token")
	}
	if session.User.ID != registered.ID {
		t.Fatalf("session user = %s, want %s", session.User.ID, registered.ID)
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Fatalf("expiry in the past: %v", session.ExpiresAt)
	}

	user, err := svc.Verify(ctx, session.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("verified user = %s, want %s", user.ID, registered.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ayan", "ayan@example.com", "password-1", "", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(ctx, "ayan@example.com", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong password: expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "password-1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown email: expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyRejectsDeletedAccount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ayan", "ayan@example.com", "password-1", "", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	session, err := svc.Login(ctx, "ayan@example.com", "password-1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.DeleteUser(ctx, session.User.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := svc.Verify(ctx, session.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after deletion, got %v", err)
	}
}

func TestUpdateUserNormalizesFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ayan", "ayan@example.com", "password-1", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	email := " NEW@Example.com "
	role := "ADMIN"
	updated, err := svc.UpdateUser(ctx, user.ID, UserUpdate{Email: &email, Role: &role})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Email != "new@example.com" {
		t.Fatalf("email = %s", updated.Email)
	}
	if updated.Role != RoleAdmin {
		t.Fatalf("role = %s", updated.Role)
	}
}

func TestCreateAgencyDedupesCategories(t *testing.T) {
	svc := newTestService(t)

	agency, err := svc.CreateAgency(context.Background(), "roads",
		[]string{"infrastructure", " infrastructure", "transport", ""}, "ops@roads.example.com")
	if err != nil {
		t.Fatalf("CreateAgency: %v", err)
	}
	if len(agency.Categories) != 2 {
		t.Fatalf("categories = %v, want 2 entries", agency.Categories)
	}
}
