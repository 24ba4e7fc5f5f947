package service

import (
	"context"
	"errors"
	"time"

	"github.com/article-publishing-api/internal/models"
	"github.com/article-publishing-api/internal/repository"
	"github.com/article-publishing-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ArticleService owns article lifecycle, ownership scoping, and the
// visibility policy
type ArticleService struct {
	articles  repository.ArticleRepository
	validator *validation.Validator
	log       zerolog.Logger
	now       func() time.Time
}

func newArticleService(repos *repository.Repositories, validator *validation.Validator, log zerolog.Logger) *ArticleService {
	return &ArticleService{
		articles:  repos.Article,
		validator: validator,
		log:       log.With().Str("service", "article").Logger(),
		now:       time.Now,
	}
}

// Create makes a new article owned by the given user. Clients never
// control is_active: every article starts as a draft.
func (s *ArticleService) Create(ctx context.Context, user *models.User, input *models.ArticleInput) (*models.Article, error) {
	if err := s.validate(ctx, input, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	pubDate := now
	if input.PubDate != nil {
		pubDate = input.PubDate.UTC()
	}

	article := &models.Article{
		ID:        uuid.New().String(),
		Title:     input.Title,
		Body:      input.Body,
		PubDate:   pubDate,
		IsActive:  false,
		Slug:      models.MakeSlug(input.Title, pubDate),
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, mapDuplicate(err)
	}

	s.log.Info().Str("slug", article.Slug).Str("user_id", user.ID).Msg("Article created")
	return article, nil
}

// ListPublished returns the publicly visible articles
func (s *ArticleService) ListPublished(ctx context.Context) ([]*models.Article, error) {
	return s.articles.ListPublished(ctx, s.now())
}

// GetPublished retrieves a publicly visible article by slug. An
// inactive or future-dated article is reported exactly like a missing
// one; visibility, not existence, gates the response.
func (s *ArticleService) GetPublished(ctx context.Context, slug string) (*models.Article, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished(s.now()) {
		return nil, repository.ErrNotFound
	}
	return article, nil
}

// ListOwned returns every article the user owns, drafts included
func (s *ArticleService) ListOwned(ctx context.Context, user *models.User) ([]*models.Article, error) {
	return s.articles.ListByUserID(ctx, user.ID)
}

// GetOwned retrieves one of the user's own articles by slug
func (s *ArticleService) GetOwned(ctx context.Context, user *models.User, slug string) (*models.Article, error) {
	return s.articles.GetOwnedBySlug(ctx, slug, user.ID)
}

// UpdateOwned replaces an owned article's content. Any edit forces
// is_active back to false; republication requires administrator
// action. The slug is recomputed from title and pub_date on every
// save.
func (s *ArticleService) UpdateOwned(ctx context.Context, user *models.User, slug string, input *models.ArticleInput) (*models.Article, error) {
	article, err := s.articles.GetOwnedBySlug(ctx, slug, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.validate(ctx, input, article.ID); err != nil {
		return nil, err
	}

	article.Title = input.Title
	article.Body = input.Body
	if input.PubDate != nil {
		article.PubDate = input.PubDate.UTC()
	}
	article.IsActive = false
	article.Slug = models.MakeSlug(article.Title, article.PubDate)
	article.UpdatedAt = s.now().UTC()

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, mapDuplicate(err)
	}

	s.log.Info().Str("slug", article.Slug).Str("user_id", user.ID).Msg("Article updated")
	return article, nil
}

// DeleteOwned removes one of the user's own articles. Irreversible.
func (s *ArticleService) DeleteOwned(ctx context.Context, user *models.User, slug string) error {
	article, err := s.articles.GetOwnedBySlug(ctx, slug, user.ID)
	if err != nil {
		return err
	}
	return s.articles.Delete(ctx, article.ID)
}

// ListAll returns every article system-wide, for administrators
func (s *ArticleService) ListAll(ctx context.Context) ([]*models.Article, error) {
	return s.articles.ListAll(ctx)
}

// SetActive toggles public visibility on any article by slug,
// regardless of owner. The flag must be supplied explicitly.
func (s *ArticleService) SetActive(ctx context.Context, slug string, req *models.ActivationRequest) error {
	if fieldErrs := s.validator.ValidateActivation(req); len(fieldErrs) > 0 {
		return &ValidationError{Fields: fieldErrs}
	}

	if err := s.articles.SetActive(ctx, slug, *req.IsActive); err != nil {
		return err
	}

	s.log.Info().Str("slug", slug).Bool("is_active", *req.IsActive).Msg("Article visibility toggled")
	return nil
}

// Count returns the number of articles, for metrics
func (s *ArticleService) Count(ctx context.Context) (int, error) {
	return s.articles.Count(ctx)
}

func (s *ArticleService) validate(ctx context.Context, input *models.ArticleInput, excludeID string) error {
	fieldErrs := s.validator.ValidateArticle(input)

	if input.Title != "" {
		exists, err := s.articles.TitleExists(ctx, input.Title, excludeID)
		if err != nil {
			return err
		}
		if exists {
			fieldErrs = append(fieldErrs, models.FieldError{Field: "title", Message: "title already exists"})
		}
	}

	if len(fieldErrs) > 0 {
		return &ValidationError{Fields: fieldErrs}
	}
	return nil
}

// mapDuplicate converts storage-level uniqueness violations (the race
// window TitleExists cannot close) into field-level validation errors.
func mapDuplicate(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateTitle):
		return &ValidationError{Fields: []models.FieldError{{Field: "title", Message: "title already exists"}}}
	case errors.Is(err, repository.ErrDuplicateSlug):
		return &ValidationError{Fields: []models.FieldError{{Field: "slug", Message: "slug already exists"}}}
	}
	return err
}
