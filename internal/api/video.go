package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dishly/backend/internal/service"
)

// VideoHandler serves companion-video discovery and analysis
type VideoHandler struct {
	recipes   *service.RecipeService
	videos    service.VideoSearcher
	generator service.RecipeGenerator
	logger    *zap.Logger
}

// NewVideoHandler creates a new VideoHandler instance
func NewVideoHandler(recipes *service.RecipeService, videos service.VideoSearcher, generator service.RecipeGenerator, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{
		recipes:   recipes,
		videos:    videos,
		generator: generator,
		logger:    logger,
	}
}

// RegisterRoutes registers the video routes
func (h *VideoHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipe := router.Group("/recipe")
	{
		recipe.GET("/:recipeId/videos", h.SearchVideos)
		recipe.POST("/:recipeId/analyze-video", h.AnalyzeVideo)
	}
}

// SearchVideos returns tutorial videos for a recipe, split into regular
// videos and shorts. Provider failures return empty sets, not errors.
func (h *VideoHandler) SearchVideos(c *gin.Context) {
	recipeID := c.Param("recipeId")

	recipe, err := h.recipes.Get(c.Request.Context(), recipeID)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.logger.Error("recipe fetch failed", zap.String("recipe_id", recipeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe videos"})
		return
	}

	result := h.videos.SearchVideos(c.Request.Context(), recipe.DisplayName)

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"recipeId":           recipeID,
		"recipeName":         recipe.DisplayName,
		"regularVideos":      result.RegularVideos,
		"shorts":             result.Shorts,
		"totalRegularVideos": len(result.RegularVideos),
		"totalShorts":        len(result.Shorts),
		"message":            "Videos fetched successfully",
	})
}

// AnalyzeVideo enhances a recipe's instructions with insights from one
// of its tutorial videos. Analysis failure degrades to the original
// steps inside the response.
func (h *VideoHandler) AnalyzeVideo(c *gin.Context) {
	recipeID := c.Param("recipeId")

	var video service.VideoInfo
	if err := c.ShouldBindJSON(&video); err != nil || video.VideoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipe ID and video ID are required"})
		return
	}
	if video.Title == "" {
		video.Title = "Unknown Video"
	}
	if video.ChannelTitle == "" {
		video.ChannelTitle = "Unknown Channel"
	}

	recipe, err := h.recipes.Get(c.Request.Context(), recipeID)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.logger.Error("recipe fetch failed", zap.String("recipe_id", recipeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze video tutorial"})
		return
	}

	analysis := h.generator.AnalyzeVideo(c.Request.Context(), recipe, video)

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"recipeId":       recipeID,
		"videoId":        video.VideoID,
		"enhancedRecipe": analysis,
		"message":        "Video tutorial analyzed successfully",
	})
}
