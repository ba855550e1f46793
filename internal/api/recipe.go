package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dishly/backend/internal/middleware"
	"github.com/dishly/backend/internal/service"
)

const minSuggestionQueryLen = 3

// RecipeHandler serves the recipe discovery endpoints
type RecipeHandler struct {
	recipes   *service.RecipeService
	generator service.RecipeGenerator
	auth      service.TokenValidator
	logger    *zap.Logger
}

// NewRecipeHandler creates a new RecipeHandler instance
func NewRecipeHandler(recipes *service.RecipeService, generator service.RecipeGenerator, auth service.TokenValidator, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		generator: generator,
		auth:      auth,
		logger:    logger,
	}
}

// RegisterRoutes registers the recipe routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipe := router.Group("/recipe")
	{
		recipe.POST("/suggestions", h.Suggestions)
		recipe.POST("/generate", h.Generate)
		recipe.GET("/:recipeId", h.GetRecipe)
		recipe.POST("/like", middleware.AuthMiddleware(h.auth), h.ToggleLike)
	}

	router.GET("/user/liked-recipes", middleware.AuthMiddleware(h.auth), h.LikedRecipes)
	router.GET("/recipes/popular", h.Popular)
}

// Suggestions returns up to five recipe titles for a partial query.
// Queries under three characters yield an empty list rather than an
// error.
func (h *RecipeHandler) Suggestions(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required and must be a string"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if len(query) < minSuggestionQueryLen {
		c.JSON(http.StatusOK, gin.H{"suggestions": []string{}})
		return
	}

	suggestions := h.generator.Suggest(c.Request.Context(), query)
	c.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
		"query":       query,
	})
}

// Generate resolves a recipe name to a full recipe, from cache or by
// generating one.
func (h *RecipeHandler) Generate(c *gin.Context) {
	var req struct {
		RecipeName string `json:"recipeName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipe name is required and must be a string"})
		return
	}

	recipe, cached, err := h.recipes.Resolve(c.Request.Context(), req.RecipeName)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRecipeName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe name provided"})
			return
		}
		h.logger.Error("recipe resolution failed", zap.String("name", req.RecipeName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error while generating recipe"})
		return
	}

	c.JSON(http.StatusOK, recipeResponse(recipe, gin.H{"cached": cached}))
}

// GetRecipe returns a stored recipe by id
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.Get(c.Request.Context(), c.Param("recipeId"))
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.logger.Error("recipe fetch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error while fetching recipe"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// ToggleLike likes or unlikes a recipe for the authenticated user
func (h *RecipeHandler) ToggleLike(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		RecipeID string `json:"recipeId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RecipeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipe ID is required"})
		return
	}

	isLiked, likes, err := h.recipes.ToggleLike(c.Request.Context(), userID, req.RecipeID)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.logger.Error("like toggle failed", zap.String("recipe_id", req.RecipeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error while toggling like"})
		return
	}

	message := "Recipe unliked successfully"
	if isLiked {
		message = "Recipe liked successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"isLiked": isLiked,
		"likes":   likes,
		"message": message,
	})
}

// LikedRecipes returns the authenticated user's liked recipes, most
// recently liked first
func (h *RecipeHandler) LikedRecipes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	recipes, err := h.recipes.LikedRecipes(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("liked recipes fetch failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error while fetching liked recipes"})
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// Popular returns recipes ordered by like count
func (h *RecipeHandler) Popular(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	recipes, err := h.recipes.Popular(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("popular recipes fetch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error while fetching popular recipes"})
		return
	}

	c.JSON(http.StatusOK, recipes)
}
