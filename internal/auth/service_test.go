package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"commerce-platform/internal/users"

	"golang.org/x/crypto/bcrypt"
)

func seedPasswordUser(t *testing.T, repo *users.MemoryRepo, email, password string, roles []string) users.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u, err := repo.Create(context.Background(), users.User{
		ID:           "u-" + email,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        roles,
		CreatedAt:    guardBase,
		UpdatedAt:    guardBase,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestServiceLoginIssuesAndRotates(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)
	repo := users.NewMemoryRepo()
	u := seedPasswordUser(t, repo, "a@example.com", "Sup3rSecret", []string{users.RoleCustomer})
	svc := NewService(repo, codec, 32, nil)

	creds, got, err := svc.Login(context.Background(), "a@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("user = %q, want %q", got.ID, u.ID)
	}
	if creds.RefreshToken == "" || creds.SessionToken != u.ID {
		t.Errorf("unexpected credentials: %+v", creds)
	}
	if _, err := codec.Verify(creds.AccessToken, time.Now().UTC()); err != nil {
		t.Errorf("access token does not verify: %v", err)
	}

	stored, err := repo.FindActiveByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("FindActiveByID: %v", err)
	}
	if stored.RefreshToken != creds.RefreshToken {
		t.Errorf("stored refresh = %q, want %q", stored.RefreshToken, creds.RefreshToken)
	}

	// A second login invalidates the first session's refresh token.
	second, _, err := svc.Login(context.Background(), "a@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}
	if second.RefreshToken == creds.RefreshToken {
		t.Error("second login reused the refresh token")
	}
	if _, err := repo.FindActiveByRefreshToken(context.Background(), creds.RefreshToken); !errors.Is(err, users.ErrNotFound) {
		t.Errorf("stale refresh still resolves: %v", err)
	}
}

func TestServiceLoginFailuresAreIndistinguishable(t *testing.T) {
	codec := newTestCodec(t, time.Minute)
	repo := users.NewMemoryRepo()
	seedPasswordUser(t, repo, "a@example.com", "Sup3rSecret", []string{users.RoleCustomer})
	suspended := seedPasswordUser(t, repo, "s@example.com", "Sup3rSecret", []string{users.RoleCustomer})
	if err := repo.SetSuspended(context.Background(), suspended.ID, true); err != nil {
		t.Fatalf("SetSuspended: %v", err)
	}
	guest := seedPasswordUser(t, repo, "g@example.com", "Sup3rSecret", []string{users.RoleGuest})
	_ = guest
	svc := NewService(repo, codec, 32, nil)

	for name, attempt := range map[string][2]string{
		"wrong password": {"a@example.com", "wrong"},
		"unknown email":  {"nobody@example.com", "Sup3rSecret"},
		"suspended":      {"s@example.com", "Sup3rSecret"},
		"guest role":     {"g@example.com", "Sup3rSecret"},
	} {
		_, _, err := svc.Login(context.Background(), attempt[0], attempt[1])
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: err = %v, want ErrInvalidCredentials", name, err)
		}
	}
}

func TestServiceLogoutDisablesRotation(t *testing.T) {
	codec := newTestCodec(t, time.Second)
	repo := users.NewMemoryRepo()
	seedPasswordUser(t, repo, "a@example.com", "Sup3rSecret", []string{users.RoleCustomer})
	svc := NewService(repo, codec, 32, nil)

	creds, u, err := svc.Login(context.Background(), "a@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(context.Background(), u.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	g := newTestGuard(codec, repo, time.Now().UTC().Add(time.Hour))
	out := g.Authenticate(context.Background(), creds.AccessToken, creds.RefreshToken)
	if out.Accept {
		t.Fatal("rotation succeeded after logout")
	}
	if !errors.Is(out.Reason, ErrRefreshNotFound) {
		t.Errorf("reason = %v, want ErrRefreshNotFound", out.Reason)
	}

	// Logging out an already gone account is not an error.
	if err := svc.Logout(context.Background(), "missing"); err != nil {
		t.Errorf("Logout of missing user: %v", err)
	}
}

func TestServiceGuestLogin(t *testing.T) {
	codec := newTestCodec(t, time.Minute)
	repo := users.NewMemoryRepo()
	svc := NewService(repo, codec, 32, nil)

	access, u, err := svc.GuestLogin(context.Background(), "guest@example.com")
	if err != nil {
		t.Fatalf("GuestLogin: %v", err)
	}
	if !u.HasRole(users.RoleGuest) {
		t.Errorf("roles = %v, want guest", u.Roles)
	}
	if u.RefreshToken != "" {
		t.Error("guest accounts must not hold a refresh token")
	}
	claims, err := codec.Verify(access, time.Now().UTC())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID() != u.ID {
		t.Errorf("subject = %q, want %q", claims.UserID(), u.ID)
	}

	// Same email reuses the account instead of creating a second one.
	_, again, err := svc.GuestLogin(context.Background(), "guest@example.com")
	if err != nil {
		t.Fatalf("second GuestLogin: %v", err)
	}
	if again.ID != u.ID {
		t.Errorf("second guest login created a new account: %q vs %q", again.ID, u.ID)
	}
}
