package api

import (
	"net/http"
	"time"

	"github.com/article-publishing-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	authHandler := NewAuthHandler(services, log)
	articleHandler := NewArticleHandler(services, log)
	adminHandler := NewAdminHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services, log))

	// Token lifecycle
	token := router.Group("/token")
	{
		token.POST("/login", authHandler.Login)
		token.PUT("/refresh", authHandler.Refresh)
	}

	// Public read-only articles
	router.GET("/articles", articleHandler.ListPublished)
	router.GET("/articles/:slug", articleHandler.GetPublished)

	// Owner-scoped article management
	owner := router.Group("/user-article")
	owner.Use(TokenAuth(services.Auth, log))
	{
		owner.GET("", articleHandler.ListOwned)
		owner.POST("", articleHandler.Create)
		owner.GET("/:slug", articleHandler.GetOwned)
		owner.PUT("/:slug", articleHandler.UpdateOwned)
		owner.DELETE("/:slug", articleHandler.DeleteOwned)
	}

	// Role-gated administrative endpoints
	admin := router.Group("/admin-article")
	admin.Use(TokenAuth(services.Auth, log), RequireAdmin())
	{
		admin.GET("/articles", adminHandler.ListArticles)
		admin.POST("/:slug/active_article", adminHandler.ActivateArticle)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "article-publishing-api",
	})
}

// metricsHandler returns store counts
func metricsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCount, err := services.Auth.CountUsers(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to count users")
		}
		tokensCount, err := services.Auth.CountTokens(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to count tokens")
		}
		articlesCount, err := services.Article.Count(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to count articles")
		}

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"users":    usersCount,
				"tokens":   tokensCount,
				"articles": articlesCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
