package service

import (
	"context"

	"github.com/dishly/backend/internal/model"
)

// RecipeGenerator is the generation adapter consumed by the resolution
// flow and handlers. Implementations never fail GenerateRecipe; they
// degrade to a fallback draft instead.
type RecipeGenerator interface {
	GenerateRecipe(ctx context.Context, name string) *RecipeDraft
	Suggest(ctx context.Context, query string) []string
	AnalyzeVideo(ctx context.Context, recipe *model.Recipe, video VideoInfo) *VideoAnalysis
}

// VideoSearcher finds companion videos for a recipe. Implementations
// degrade to empty result sets on provider failure.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, recipeName string) *VideoSearchResult
}

// TokenValidator verifies bearer tokens against the external identity
// provider.
type TokenValidator interface {
	ValidateToken(token string) (*TokenClaims, error)
}
