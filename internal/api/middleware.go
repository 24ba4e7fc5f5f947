package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/article-publishing-api/internal/models"
	"github.com/article-publishing-api/internal/repository"
	"github.com/article-publishing-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const userContextKey = "auth_user"

// tokenPrefix is the required authorization scheme; the header value
// must be exactly "Token <key>".
const tokenPrefix = "Token "

// TokenAuth authenticates requests by the bearer token in the
// Authorization header. A missing or malformed header and an unknown
// key both abort with an opaque 404; an expired key aborts with 401.
func TokenAuth(auth *service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, tokenPrefix) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		key := strings.TrimPrefix(header, tokenPrefix)
		if key == "" || strings.ContainsRune(key, ' ') {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is expired"})
				return
			}
			if errors.Is(err, repository.ErrNotFound) {
				c.AbortWithStatus(http.StatusNotFound)
				return
			}
			log.Error().Err(err).Msg("Token authentication failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the authenticated user holds the
// administrator role. Unlike the ownership boundary, admin gating is
// allowed to be visible.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userFromContext(c)
		if !ok || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func userFromContext(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
