package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/article-publishing-api/internal/database"
	"github.com/article-publishing-api/internal/models"
)

const articleColumns = "id, title, json_body, pub_date, is_active, slug, user_id, created_at, updated_at"

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (id, title, json_body, pub_date, is_active, slug, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Title, []byte(article.Body), article.PubDate,
		article.IsActive, article.Slug, article.UserID,
		article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "articles_title_key") {
			return ErrDuplicateTitle
		}
		if isUniqueViolation(err, "articles_slug_key") {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an article, slug included
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles
		SET title = $2, json_body = $3, pub_date = $4, is_active = $5, slug = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		article.ID, article.Title, []byte(article.Body), article.PubDate,
		article.IsActive, article.Slug, article.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "articles_title_key") {
			return ErrDuplicateTitle
		}
		if isUniqueViolation(err, "articles_slug_key") {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update article: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an article by ID
func (r *articleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBySlug retrieves an article by slug regardless of owner
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE slug = $1`, articleColumns)
	return r.getOne(ctx, query, slug)
}

// GetOwnedBySlug retrieves an article by slug scoped to its owner.
// A slug owned by someone else is indistinguishable from no slug at
// all: both return ErrNotFound.
func (r *articleRepo) GetOwnedBySlug(ctx context.Context, slug string, userID string) (*models.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE slug = $1 AND user_id = $2`, articleColumns)
	return r.getOne(ctx, query, slug, userID)
}

func (r *articleRepo) getOne(ctx context.Context, query string, args ...any) (*models.Article, error) {
	var article models.Article
	var body []byte
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&article.ID, &article.Title, &body, &article.PubDate,
		&article.IsActive, &article.Slug, &article.UserID,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	article.Body = body
	return &article, nil
}

// ListPublished returns publicly visible articles: active, with a
// publish timestamp at or before now, newest first
func (r *articleRepo) ListPublished(ctx context.Context, now time.Time) ([]*models.Article, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM articles
		WHERE is_active = TRUE AND pub_date <= $1
		ORDER BY pub_date DESC
	`, articleColumns)
	return r.list(ctx, query, now)
}

// ListByUserID returns all articles owned by a user, drafts included
func (r *articleRepo) ListByUserID(ctx context.Context, userID string) ([]*models.Article, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM articles
		WHERE user_id = $1
		ORDER BY pub_date DESC
	`, articleColumns)
	return r.list(ctx, query, userID)
}

// ListAll returns every article in the system
func (r *articleRepo) ListAll(ctx context.Context) ([]*models.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles ORDER BY pub_date DESC`, articleColumns)
	return r.list(ctx, query)
}

func (r *articleRepo) list(ctx context.Context, query string, args ...any) ([]*models.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		var article models.Article
		var body []byte
		err := rows.Scan(
			&article.ID, &article.Title, &body, &article.PubDate,
			&article.IsActive, &article.Slug, &article.UserID,
			&article.CreatedAt, &article.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		article.Body = body
		articles = append(articles, &article)
	}
	return articles, rows.Err()
}

// SetActive flips the is_active flag on an article by slug
func (r *articleRepo) SetActive(ctx context.Context, slug string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE articles SET is_active = $2, updated_at = $3 WHERE slug = $1`,
		slug, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set article active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set article active: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// TitleExists checks title uniqueness, optionally excluding one
// article (the one being updated)
func (r *articleRepo) TitleExists(ctx context.Context, title string, excludeID string) (bool, error) {
	query, args := titleExistsQuery(title, excludeID)
	var exists bool
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists)
	return exists, err
}

// titleExistsQuery builds the uniqueness check. The id column is a
// uuid, and an empty string is not a valid bind value for it, so the
// create path gets a query without the exclusion clause.
func titleExistsQuery(title, excludeID string) (string, []any) {
	if excludeID == "" {
		return "SELECT EXISTS(SELECT 1 FROM articles WHERE title = $1)", []any{title}
	}
	return "SELECT EXISTS(SELECT 1 FROM articles WHERE title = $1 AND id <> $2)", []any{title, excludeID}
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}
