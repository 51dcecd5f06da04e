package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"awareness-game/internal/model"
	"awareness-game/internal/store"
)

func newTestService(t *testing.T, ttl time.Duration) (*Service, *store.Gateway) {
	t.Helper()

	gateway, err := store.Open("sqlite:"+t.TempDir(), "identity")
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() {
		_ = gateway.Close()
	})

	service := NewService(gateway, ttl)
	service.hashCost = bcrypt.MinCost
	return service, gateway
}

func TestRegisterDistinctIDsAndDuplicateEmail(t *testing.T) {
	service, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	first, err := service.Register(ctx, "Alice", "alice@example.com", "pw1")
	if err != nil {
		t.Fatalf("Register alice failed: %v", err)
	}
	second, err := service.Register(ctx, "Bob", "bob@example.com", "pw2")
	if err != nil {
		t.Fatalf("Register bob failed: %v", err)
	}
	if first == "" || first == second {
		t.Fatalf("expected distinct ids, got %q and %q", first, second)
	}

	if _, err := service.Register(ctx, "Alice Again", "alice@example.com", "other"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("duplicate register err = %v, want ErrDuplicateEmail", err)
	}

	// Email match is exact, so a different case is a different account.
	if _, err := service.Register(ctx, "Alice Upper", "Alice@example.com", "pw"); err != nil {
		t.Fatalf("case-different email should register, got %v", err)
	}
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	service, gateway := newTestService(t, time.Hour)
	ctx := context.Background()

	userID, err := service.Register(ctx, "Alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	var user model.User
	if err := gateway.FindOne(ctx, model.CollectionUser, store.Filter{"id": userID}, &user); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if user.PasswordHash == "" || strings.Contains(user.PasswordHash, "s3cret") {
		t.Fatalf("password not hashed: %q", user.PasswordHash)
	}
	if user.Token != nil {
		t.Fatalf("new user should not have a token")
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	service, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{name: "empty name", userName: " ", email: "a@example.com", password: "pw"},
		{name: "bad email", userName: "A", email: "not-an-email", password: "pw"},
		{name: "display name email", userName: "A", email: "A <a@example.com>", password: "pw"},
		{name: "empty password", userName: "A", email: "a@example.com", password: ""},
		{name: "long password", userName: "A", email: "a@example.com", password: strings.Repeat("x", 80)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Register(ctx, tc.userName, tc.email, tc.password)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	service, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	userID, err := service.Register(ctx, "Alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, public, err := service.Login(ctx, "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("token length = %d, want 64", len(token))
	}
	if public.ID != userID || public.Name != "Alice" || public.Email != "alice@example.com" {
		t.Fatalf("unexpected public user: %+v", public)
	}

	user, err := service.ResolveToken(ctx, token)
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if user.ID != userID {
		t.Fatalf("resolved user = %q, want %q", user.ID, userID)
	}
}

func TestLoginWrongPasswordIssuesNoToken(t *testing.T) {
	service, gateway := newTestService(t, time.Hour)
	ctx := context.Background()

	userID, err := service.Register(ctx, "Alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, err := service.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := service.Login(ctx, "nobody@example.com", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v, want ErrInvalidCredentials", err)
	}

	var user model.User
	if err := gateway.FindOne(ctx, model.CollectionUser, store.Filter{"id": userID}, &user); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if user.Token != nil {
		t.Fatalf("failed login must not issue a token, got %q", *user.Token)
	}
}

func TestLoginRejectsMalformedEmail(t *testing.T) {
	service, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	for _, email := range []string{"", "not-an-email", "Alice <alice@example.com>"} {
		if _, _, err := service.Login(ctx, email, "pw"); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Login(%q) err = %v, want ErrInvalidInput", email, err)
		}
	}
}

func TestLoginOverwritesPreviousToken(t *testing.T) {
	service, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, err := service.Register(ctx, "Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	first, _, err := service.Login(ctx, "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("first Login failed: %v", err)
	}
	second, _, err := service.Login(ctx, "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected a fresh token on each login")
	}

	if _, err := service.ResolveToken(ctx, first); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("old token err = %v, want ErrUnauthorized", err)
	}
	if _, err := service.ResolveToken(ctx, second); err != nil {
		t.Fatalf("current token should resolve: %v", err)
	}
}

func TestResolveTokenRejectsEmptyAndExpired(t *testing.T) {
	service, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, err := service.ResolveToken(ctx, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("empty token err = %v, want ErrUnauthorized", err)
	}

	if _, err := service.Register(ctx, "Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token, _, err := service.Login(ctx, "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	base := time.Now().UTC()
	service.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := service.ResolveToken(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expired token err = %v, want ErrUnauthorized", err)
	}
}

func TestZeroTTLTokensDoNotExpire(t *testing.T) {
	service, _ := newTestService(t, 0)
	ctx := context.Background()

	if _, err := service.Register(ctx, "Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token, _, err := service.Login(ctx, "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	service.now = func() time.Time { return time.Now().UTC().Add(24 * 365 * time.Hour) }
	if _, err := service.ResolveToken(ctx, token); err != nil {
		t.Fatalf("token without expiry should resolve: %v", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	service, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, err := service.Register(ctx, "Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token, _, err := service.Login(ctx, "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := service.Logout(ctx, token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := service.ResolveToken(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("token after logout err = %v, want ErrUnauthorized", err)
	}
	if err := service.Logout(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("second logout err = %v, want ErrUnauthorized", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	service, gateway := newTestService(t, time.Hour)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, err := service.Register(ctx, "U", email, "pw"); err != nil {
			t.Fatalf("Register %s failed: %v", email, err)
		}
	}

	base := time.Now().UTC()
	service.now = func() time.Time { return base }
	if _, _, err := service.Login(ctx, "a@example.com", "pw"); err != nil {
		t.Fatalf("Login a failed: %v", err)
	}
	service.now = func() time.Time { return base.Add(3 * time.Hour) }
	fresh, _, err := service.Login(ctx, "b@example.com", "pw")
	if err != nil {
		t.Fatalf("Login b failed: %v", err)
	}

	service.now = func() time.Time { return base.Add(90 * time.Minute) }
	purged, err := service.PurgeExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("PurgeExpiredSessions failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}

	var user model.User
	if err := gateway.FindOne(ctx, model.CollectionUser, store.Filter{"email": "a@example.com"}, &user); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if user.Token != nil || user.TokenExpiresAt != nil {
		t.Fatalf("expected purged session, got token=%v expires=%v", user.Token, user.TokenExpiresAt)
	}
	if _, err := service.ResolveToken(ctx, fresh); err != nil {
		t.Fatalf("unexpired token should survive purge: %v", err)
	}
}

func TestUnconfiguredStoreIsUnavailable(t *testing.T) {
	var gateway *store.Gateway
	service := NewService(gateway, time.Hour)
	ctx := context.Background()

	if _, err := service.Register(ctx, "A", "a@example.com", "pw"); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("Register err = %v, want store.ErrUnavailable", err)
	}
	if _, _, err := service.Login(ctx, "a@example.com", "pw"); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("Login err = %v, want store.ErrUnavailable", err)
	}
	if _, err := service.ResolveToken(ctx, "abc"); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("ResolveToken err = %v, want store.ErrUnavailable", err)
	}
}
