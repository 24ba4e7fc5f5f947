package api

import (
	"net/http"

	"github.com/article-publishing-api/internal/models"
	"github.com/article-publishing-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles login and token refresh endpoints
type AuthHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /token/login.
// Issues a token if the user has none or the existing one has expired;
// a still-live token is returned unchanged.
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	key, err := h.services.Auth.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": key})
}

// Refresh handles PUT /token/refresh.
// Unconditionally rotates the token, invalidating whatever was live.
func (h *AuthHandler) Refresh(c *gin.Context) {
	req, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	key, err := h.services.Auth.Refresh(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": key})
}

func (h *AuthHandler) bindCredentials(c *gin.Context) (*models.LoginRequest, bool) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return nil, false
	}
	return &req, true
}
