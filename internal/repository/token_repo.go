package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/article-publishing-api/internal/database"
	"github.com/article-publishing-api/internal/models"
)

// tokenRepo is the concrete implementation of TokenRepository
type tokenRepo struct {
	db *database.DB
}

// NewTokenRepo creates a new token repository
func NewTokenRepo(db *database.DB) TokenRepository {
	return &tokenRepo{db: db}
}

// Create inserts a new auth token
func (r *tokenRepo) Create(ctx context.Context, token *models.Token) error {
	query := `
		INSERT INTO auth_tokens (key, user_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, token.Key, token.UserID, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

// GetByKey retrieves a token by its opaque key. Expiry is not checked
// here; freshness is the expiry policy's concern.
func (r *tokenRepo) GetByKey(ctx context.Context, key string) (*models.Token, error) {
	return r.getOne(ctx, "key = $1", key)
}

// GetByUserID retrieves the token belonging to a user
func (r *tokenRepo) GetByUserID(ctx context.Context, userID string) (*models.Token, error) {
	return r.getOne(ctx, "user_id = $1", userID)
}

func (r *tokenRepo) getOne(ctx context.Context, where string, arg any) (*models.Token, error) {
	query := `
		SELECT key, user_id, created_at
		FROM auth_tokens WHERE ` + where

	var token models.Token
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&token.Key, &token.UserID, &token.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	return &token, nil
}

// DeleteByUserID removes all tokens belonging to a user
func (r *tokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}

// Count returns the total number of live token rows
func (r *tokenRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM auth_tokens").Scan(&count)
	return count, err
}
