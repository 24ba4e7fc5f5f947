package service

import (
	"fmt"
	"strings"

	"github.com/article-publishing-api/internal/config"
	"github.com/article-publishing-api/internal/models"
	"github.com/article-publishing-api/internal/repository"
	"github.com/article-publishing-api/internal/validation"
	"github.com/rs/zerolog"
)

// Services holds all application services
type Services struct {
	Auth    *AuthService
	Article *ArticleService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	validator := validation.NewValidator()

	return &Services{
		Auth:    newAuthService(repos, cfg, validator, log),
		Article: newArticleService(repos, validator, log),
	}
}

// ValidationError carries field-level problems with a request payload.
// Handlers surface it as a 400 with per-field messages.
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
