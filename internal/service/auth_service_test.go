package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/article-publishing-api/internal/config"
	"github.com/article-publishing-api/internal/mocks"
	"github.com/article-publishing-api/internal/models"
	"github.com/article-publishing-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password123"

func newTestServices(t *testing.T) (*Services, *mocks.MockUserRepository, *mocks.MockTokenRepository, *mocks.MockArticleRepository) {
	t.Helper()
	repos, users, tokens, articles := mocks.NewMockRepositories()
	cfg := &config.Config{Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost}}
	return NewServices(repos, cfg, zerolog.Nop()), users, tokens, articles
}

func seedUser(t *testing.T, users *mocks.MockUserRepository, username string, admin bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword failed: %v", err)
	}
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      admin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create user failed: %v", err)
	}
	return user
}

func rawKey(t *testing.T, formatted string) string {
	t.Helper()
	if !strings.HasPrefix(formatted, "Token ") {
		t.Fatalf("Expected 'Token <key>' format, got %q", formatted)
	}
	return strings.TrimPrefix(formatted, "Token ")
}

func TestLoginIdempotentWhileTokenLive(t *testing.T) {
	svcs, users, _, _ := newTestServices(t)
	seedUser(t, users, "alice", false)
	ctx := context.Background()
	req := &models.LoginRequest{Username: "alice", Password: testPassword}

	first, err := svcs.Auth.Login(ctx, req)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	second, err := svcs.Auth.Login(ctx, req)
	if err != nil {
		t.Fatalf("Second login failed: %v", err)
	}
	if first != second {
		t.Errorf("Login not idempotent: %q vs %q", first, second)
	}
}

func TestRefreshAlwaysRotates(t *testing.T) {
	svcs, users, _, _ := newTestServices(t)
	seedUser(t, users, "alice", false)
	ctx := context.Background()
	req := &models.LoginRequest{Username: "alice", Password: testPassword}

	before, err := svcs.Auth.Login(ctx, req)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	after, err := svcs.Auth.Refresh(ctx, req)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if before == after {
		t.Error("Refresh returned the key it was supposed to rotate away")
	}

	// The old key must be dead
	if _, err := svcs.Auth.Authenticate(ctx, rawKey(t, before)); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for rotated key, got %v", err)
	}
	if _, err := svcs.Auth.Authenticate(ctx, rawKey(t, after)); err != nil {
		t.Errorf("New key should authenticate, got %v", err)
	}
}

func TestExpiredThenLoginIssuesNewKey(t *testing.T) {
	svcs, users, tokens, _ := newTestServices(t)
	seedUser(t, users, "alice", false)
	ctx := context.Background()
	req := &models.LoginRequest{Username: "alice", Password: testPassword}

	before, err := svcs.Auth.Login(ctx, req)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	tokens.Tokens[rawKey(t, before)].CreatedAt = time.Now().Add(-16 * time.Minute)

	after, err := svcs.Auth.Login(ctx, req)
	if err != nil {
		t.Fatalf("Login after expiry failed: %v", err)
	}
	if before == after {
		t.Error("Login returned the expired key instead of a new one")
	}
	if _, ok := tokens.Tokens[rawKey(t, before)]; ok {
		t.Error("Expired key should have been deleted during login")
	}
}

func TestAuthenticateErrorTaxonomy(t *testing.T) {
	svcs, users, tokens, _ := newTestServices(t)
	user := seedUser(t, users, "alice", false)
	ctx := context.Background()

	// Unknown key
	if _, err := svcs.Auth.Authenticate(ctx, "deadbeef"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown key, got %v", err)
	}

	// Expired key: distinct error, and authentication must not delete it
	expired := &models.Token{Key: "expiredkey", UserID: user.ID, CreatedAt: time.Now().Add(-time.Hour)}
	tokens.Create(ctx, expired)
	if _, err := svcs.Auth.Authenticate(ctx, "expiredkey"); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
	if _, ok := tokens.Tokens["expiredkey"]; !ok {
		t.Error("Authenticate must not delete an expired token")
	}

	// Live key resolves to the user
	formatted, err := svcs.Auth.Refresh(ctx, &models.LoginRequest{Username: "alice", Password: testPassword})
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	got, err := svcs.Auth.Authenticate(ctx, rawKey(t, formatted))
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Expected user %s, got %s", user.ID, got.ID)
	}
}

func TestLoginValidationAndCredentials(t *testing.T) {
	svcs, users, _, _ := newTestServices(t)
	seedUser(t, users, "alice", false)
	ctx := context.Background()

	// Missing fields are a validation error with per-field detail
	var vErr *ValidationError
	_, err := svcs.Auth.Login(ctx, &models.LoginRequest{})
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(vErr.Fields) != 2 {
		t.Errorf("Expected 2 field errors, got %v", vErr.Fields)
	}

	// Unknown user and wrong password must be the same error
	_, unknownErr := svcs.Auth.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "whatever"})
	_, wrongErr := svcs.Auth.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrong"})
	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for both cases, got %v and %v", unknownErr, wrongErr)
	}
}

// Simultaneous login and refresh is the known sharp edge: the
// one-token-per-user rule is application-level, so concurrent flows
// must at least never fail, and a subsequent rotation must converge to
// a working credential.
func TestConcurrentLoginRefresh(t *testing.T) {
	svcs, users, _, _ := newTestServices(t)
	seedUser(t, users, "alice", false)
	ctx := context.Background()
	req := &models.LoginRequest{Username: "alice", Password: testPassword}

	var wg sync.WaitGroup
	errCh := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := svcs.Auth.Login(ctx, req); err != nil {
				errCh <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svcs.Auth.Refresh(ctx, req); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("Concurrent login/refresh failed: %v", err)
	}

	formatted, err := svcs.Auth.Refresh(ctx, req)
	if err != nil {
		t.Fatalf("Final refresh failed: %v", err)
	}
	if _, err := svcs.Auth.Authenticate(ctx, rawKey(t, formatted)); err != nil {
		t.Errorf("Final key should authenticate, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	svcs, users, _, _ := newTestServices(t)
	ctx := context.Background()

	if err := svcs.Auth.EnsureAdmin(ctx, "root", "rootpass"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	admin, err := users.GetByUsername(ctx, "root")
	if err != nil {
		t.Fatalf("Admin not created: %v", err)
	}
	if !admin.IsAdmin {
		t.Error("Seeded user should be an administrator")
	}

	// Idempotent: a second call must not fail or duplicate
	if err := svcs.Auth.EnsureAdmin(ctx, "root", "rootpass"); err != nil {
		t.Fatalf("Second EnsureAdmin failed: %v", err)
	}
	if count, _ := users.Count(ctx); count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}

	// Blank username disables seeding
	if err := svcs.Auth.EnsureAdmin(ctx, "", ""); err != nil {
		t.Fatalf("EnsureAdmin with blank username failed: %v", err)
	}
	if count, _ := users.Count(ctx); count != 1 {
		t.Errorf("Expected 1 user after disabled seeding, got %d", count)
	}
}
