package repository

import (
	"context"
	"time"

	"github.com/article-publishing-api/internal/database"
	"github.com/article-publishing-api/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

// TokenRepository defines the interface for auth token data operations
type TokenRepository interface {
	Create(ctx context.Context, token *models.Token) error
	GetByKey(ctx context.Context, key string) (*models.Token, error)
	GetByUserID(ctx context.Context, userID string) (*models.Token, error)
	DeleteByUserID(ctx context.Context, userID string) error
	Count(ctx context.Context) (int, error)
}

// ArticleRepository defines the interface for article data operations.
// Listings are ordered by pub_date descending.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) error
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	// GetOwnedBySlug returns ErrNotFound both when no article has the
	// slug and when it belongs to a different user; callers cannot
	// distinguish the two.
	GetOwnedBySlug(ctx context.Context, slug string, userID string) (*models.Article, error)
	ListPublished(ctx context.Context, now time.Time) ([]*models.Article, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Article, error)
	ListAll(ctx context.Context) ([]*models.Article, error)
	SetActive(ctx context.Context, slug string, active bool) error
	TitleExists(ctx context.Context, title string, excludeID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	Token   TokenRepository
	Article ArticleRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepo(db),
		Token:   NewTokenRepo(db),
		Article: NewArticleRepo(db),
	}
}
