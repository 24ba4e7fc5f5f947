package api

import (
	"net/http"

	"github.com/article-publishing-api/internal/models"
	"github.com/article-publishing-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AdminHandler handles the role-gated administrative endpoints
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// ListArticles handles GET /admin-article/articles: every article in
// the system, not just the caller's.
func (h *AdminHandler) ListArticles(c *gin.Context) {
	articles, err := h.services.Article.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toAdminArticles(articles))
}

// ActivateArticle handles POST /admin-article/:slug/active_article.
// The sole mechanism by which a deactivated article becomes publicly
// visible again.
func (h *AdminHandler) ActivateArticle(c *gin.Context) {
	var req models.ActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	if err := h.services.Article.SetActive(c.Request.Context(), c.Param("slug"), &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusAccepted)
}
