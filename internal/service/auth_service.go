package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/article-publishing-api/internal/config"
	"github.com/article-publishing-api/internal/models"
	"github.com/article-publishing-api/internal/repository"
	"github.com/article-publishing-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Auth failure sentinels. ErrInvalidCredentials covers both "no such
// user" and "wrong password" so the two are indistinguishable at the
// boundary. ErrTokenExpired is distinct from repository.ErrNotFound:
// an expired token surfaces as 401, an unknown one as 404.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenExpired       = errors.New("token is expired")
)

// tokenKeyBytes is the entropy of a token key; hex-encoded it yields a
// 40-character opaque string.
const tokenKeyBytes = 20

// AuthService owns the token lifecycle: login, refresh, and resolving
// bearer credentials to users
type AuthService struct {
	users      repository.UserRepository
	tokens     repository.TokenRepository
	validator  *validation.Validator
	bcryptCost int
	log        zerolog.Logger
	now        func() time.Time
}

func newAuthService(repos *repository.Repositories, cfg *config.Config, validator *validation.Validator, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:      repos.User,
		tokens:     repos.Token,
		validator:  validator,
		bcryptCost: cfg.Auth.BcryptCost,
		log:        log.With().Str("service", "auth").Logger(),
		now:        time.Now,
	}
}

// Login validates credentials and returns a bearer credential in the
// form "Token <key>". Login is idempotent while a token is live: an
// unexpired token is returned unchanged, an expired one is replaced.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.GetByUserID(ctx, user.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		token, err = s.issueToken(ctx, user.ID)
		if err != nil {
			return "", err
		}
	case err != nil:
		return "", err
	case token.IsExpired(s.now()):
		if err := s.tokens.DeleteByUserID(ctx, user.ID); err != nil {
			return "", err
		}
		token, err = s.issueToken(ctx, user.ID)
		if err != nil {
			return "", err
		}
	}

	return formatKey(token.Key), nil
}

// Refresh rotates the user's token unconditionally: whatever was live
// before is invalidated even if it had not expired.
func (s *AuthService) Refresh(ctx context.Context, req *models.LoginRequest) (string, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		return "", err
	}

	if err := s.tokens.DeleteByUserID(ctx, user.ID); err != nil {
		return "", err
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return "", err
	}
	return formatKey(token.Key), nil
}

// Authenticate resolves a raw token key to its user. An unknown key is
// repository.ErrNotFound; an expired one is ErrTokenExpired and is NOT
// deleted here, only login and refresh rotate tokens.
func (s *AuthService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	token, err := s.tokens.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if token.IsExpired(s.now()) {
		return nil, ErrTokenExpired
	}
	return s.users.GetByID(ctx, token.UserID)
}

// EnsureAdmin creates the bootstrap administrator account when the
// configured username does not exist yet. A blank username disables
// seeding.
func (s *AuthService) EnsureAdmin(ctx context.Context, username string, password string) error {
	if username == "" {
		return nil
	}

	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}

	s.log.Info().Str("username", username).Msg("Bootstrap admin created")
	return nil
}

// CountUsers returns the number of user accounts, for metrics
func (s *AuthService) CountUsers(ctx context.Context) (int, error) {
	return s.users.Count(ctx)
}

// CountTokens returns the number of stored token rows, for metrics
func (s *AuthService) CountTokens(ctx context.Context) (int, error) {
	return s.tokens.Count(ctx)
}

func (s *AuthService) checkCredentials(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if fieldErrs := s.validator.ValidateLogin(req); len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) issueToken(ctx context.Context, userID string) (*models.Token, error) {
	key, err := generateKey()
	if err != nil {
		return nil, err
	}

	token := &models.Token{
		Key:       key,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func generateKey() (string, error) {
	buf := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func formatKey(key string) string {
	return "Token " + key
}
