package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/article-publishing-api/internal/models"
	"github.com/article-publishing-api/internal/repository"
	"github.com/article-publishing-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ownerArticle is the article representation for public and owner
// endpoints. is_active is deliberately omitted: publication state is
// only visible through the admin surface.
type ownerArticle struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Body    json.RawMessage `json:"json_body"`
	PubDate time.Time       `json:"pub_date"`
	Slug    string          `json:"slug"`
	UserID  string          `json:"user_id"`
}

// adminArticle is the trimmed representation for administrators
type adminArticle struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"is_active"`
	UserID   string `json:"user_id"`
}

func toOwnerArticle(a *models.Article) ownerArticle {
	return ownerArticle{
		ID:      a.ID,
		Title:   a.Title,
		Body:    a.Body,
		PubDate: a.PubDate,
		Slug:    a.Slug,
		UserID:  a.UserID,
	}
}

func toOwnerArticles(articles []*models.Article) []ownerArticle {
	out := make([]ownerArticle, 0, len(articles))
	for _, a := range articles {
		out = append(out, toOwnerArticle(a))
	}
	return out
}

func toAdminArticles(articles []*models.Article) []adminArticle {
	out := make([]adminArticle, 0, len(articles))
	for _, a := range articles {
		out = append(out, adminArticle{
			Title:    a.Title,
			Slug:     a.Slug,
			IsActive: a.IsActive,
			UserID:   a.UserID,
		})
	}
	return out
}

// writeError maps service and repository errors onto the response
// taxonomy: field-level 400s, an opaque 404 for both invalid
// credentials and missing records, 401 for expired tokens, and 500 for
// everything else. Unrecognized errors are never collapsed into 404.
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": models.FieldErrorMap(vErr.Fields)})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid username or password"})
	case errors.Is(err, service.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is expired"})
	case errors.Is(err, repository.ErrNotFound):
		c.Status(http.StatusNotFound)
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
