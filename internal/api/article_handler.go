package api

import (
	"net/http"

	"github.com/article-publishing-api/internal/models"
	"github.com/article-publishing-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ArticleHandler handles the public read-only endpoints and the
// owner-scoped article management endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// ListPublished handles GET /articles
func (h *ArticleHandler) ListPublished(c *gin.Context) {
	articles, err := h.services.Article.ListPublished(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toOwnerArticles(articles))
}

// GetPublished handles GET /articles/:slug. Inactive and future-dated
// articles 404 even when the slug exists.
func (h *ArticleHandler) GetPublished(c *gin.Context) {
	article, err := h.services.Article.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toOwnerArticle(article))
}

// ListOwned handles GET /user-article
func (h *ArticleHandler) ListOwned(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	articles, err := h.services.Article.ListOwned(c.Request.Context(), user)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toOwnerArticles(articles))
}

// Create handles POST /user-article
func (h *ArticleHandler) Create(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	input, ok := h.bindArticle(c)
	if !ok {
		return
	}

	article, err := h.services.Article.Create(c.Request.Context(), user, input)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toOwnerArticle(article))
}

// GetOwned handles GET /user-article/:slug. Another user's article is
// a 404, never a 403.
func (h *ArticleHandler) GetOwned(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	article, err := h.services.Article.GetOwned(c.Request.Context(), user, c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toOwnerArticle(article))
}

// UpdateOwned handles PUT /user-article/:slug. Every edit un-publishes
// the article.
func (h *ArticleHandler) UpdateOwned(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	input, ok := h.bindArticle(c)
	if !ok {
		return
	}

	article, err := h.services.Article.UpdateOwned(c.Request.Context(), user, c.Param("slug"), input)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusAccepted, toOwnerArticle(article))
}

// DeleteOwned handles DELETE /user-article/:slug
func (h *ArticleHandler) DeleteOwned(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.services.Article.DeleteOwned(c.Request.Context(), user, c.Param("slug")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArticleHandler) bindArticle(c *gin.Context) (*models.ArticleInput, bool) {
	var input models.ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return nil, false
	}
	return &input, true
}
