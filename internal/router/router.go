package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dishly/backend/internal/api"
	"github.com/dishly/backend/internal/service"
)

// Setup configures the application routes
func Setup(
	recipes *service.RecipeService,
	generator service.RecipeGenerator,
	videos service.VideoSearcher,
	auth service.TokenValidator,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.Default())

	recipeHandler := api.NewRecipeHandler(recipes, generator, auth, logger)
	videoHandler := api.NewVideoHandler(recipes, videos, generator, logger)

	root := router.Group("/api")
	root.GET("/health", api.HealthCheck)
	recipeHandler.RegisterRoutes(root)
	videoHandler.RegisterRoutes(root)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})

	return router
}

// requestLogger logs each request with method, path, status and latency
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
