package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dishly/backend/internal/model"
)

var (
	// ErrInvalidRecipeName is returned when a name normalizes to nothing.
	ErrInvalidRecipeName = errors.New("invalid recipe name")
	// ErrRecipeNotFound is returned for lookups of unknown recipe ids.
	ErrRecipeNotFound = errors.New("recipe not found")
)

// RecipeService owns the recipe store and the cache-or-generate
// resolution flow. freshnessWindow of zero means cached recipes are
// always served without regeneration.
type RecipeService struct {
	db              *gorm.DB
	generator       RecipeGenerator
	freshnessWindow time.Duration
	logger          *zap.Logger
	now             func() time.Time
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, generator RecipeGenerator, freshnessWindow time.Duration, logger *zap.Logger) *RecipeService {
	return &RecipeService{
		db:              db,
		generator:       generator,
		freshnessWindow: freshnessWindow,
		logger:          logger,
		now:             time.Now,
	}
}

// Resolve is the cache-or-generate decision procedure: normalize the
// name, derive the content-addressed id, serve the cached row when it
// is fresh, otherwise generate, persist and return. The bool result
// reports whether the response came from cache.
func (s *RecipeService) Resolve(ctx context.Context, rawName string) (*model.Recipe, bool, error) {
	normalized := NormalizeRecipeName(rawName)
	if normalized == "" {
		return nil, false, ErrInvalidRecipeName
	}
	id := DeriveRecipeID(normalized)

	var existing model.Recipe
	err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error
	switch {
	case err == nil:
		if IsRecipeFresh(existing.LastSearched, s.freshnessWindow, s.now()) {
			updated, err := s.touchOnHit(ctx, &existing)
			if err != nil {
				return nil, false, err
			}
			return updated, true, nil
		}
		// Stale: fall through to regeneration.
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Miss: fall through to generation.
	default:
		return nil, false, fmt.Errorf("failed to look up recipe: %w", err)
	}

	s.logger.Info("generating recipe", zap.String("name", rawName), zap.String("id", id))
	draft := s.generator.GenerateRecipe(ctx, rawName)
	if draft.Error != "" {
		s.logger.Warn("serving fallback recipe content",
			zap.String("id", id), zap.String("generation_error", draft.Error))
	}

	recipe, err := s.CreateFromDraft(ctx, id, normalized, rawName, draft)
	if err != nil {
		return nil, false, err
	}
	return recipe, false, nil
}

// CreateFromDraft persists a generated draft as the canonical recipe
// row. Writing an id that already exists replaces the row wholesale,
// matching document-store set() semantics: counters restart with the
// regenerated content.
func (s *RecipeService) CreateFromDraft(ctx context.Context, id, normalizedName, displayName string, draft *RecipeDraft) (*model.Recipe, error) {
	now := s.now()
	recipe := model.Recipe{
		ID:             id,
		NormalizedName: normalizedName,
		DisplayName:    displayName,
		Ingredients:    draft.Ingredients,
		Steps:          draft.Steps,
		Difficulty:     draft.Difficulty,
		EstimatedTime:  draft.EstimatedTime,
		Servings:       draft.Servings,
		Likes:          0,
		SearchCount:    1,
		YoutubeURL:     YouTubeSearchURL(displayName),
		CreatedAt:      now,
		LastSearched:   now,
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}
	return &recipe, nil
}

// touchOnHit bumps searchCount and lastSearched, backfilling the
// youtubeUrl of older rows. Deliberately a read-modify-write: losing a
// searchCount increment under concurrent hits is accepted telemetry
// noise, unlike the likes counter.
func (s *RecipeService) touchOnHit(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	now := s.now()
	updates := map[string]interface{}{
		"search_count":  recipe.SearchCount + 1,
		"last_searched": now,
	}
	if recipe.YoutubeURL == "" {
		updates["youtube_url"] = YouTubeSearchURL(recipe.DisplayName)
	}

	if err := s.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Where("id = ?", recipe.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update recipe counters: %w", err)
	}

	updated := *recipe
	updated.SearchCount = recipe.SearchCount + 1
	updated.LastSearched = now
	if updated.YoutubeURL == "" {
		updated.YoutubeURL = YouTubeSearchURL(recipe.DisplayName)
	}
	return &updated, nil
}

// Get retrieves a recipe by id
func (s *RecipeService) Get(ctx context.Context, id string) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to fetch recipe: %w", err)
	}
	backfillYouTubeURL(&recipe)
	return &recipe, nil
}

// ToggleLike flips a user's like on a recipe. Membership of the like
// row is the liked state; the counter moves by an atomic SQL increment
// so concurrent likes never lose updates. The check-then-act on the
// membership row itself is a known, accepted race under double-clicks.
func (s *RecipeService) ToggleLike(ctx context.Context, userID, recipeID string) (bool, int64, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, ErrRecipeNotFound
		}
		return false, 0, fmt.Errorf("failed to fetch recipe: %w", err)
	}

	var existing model.RecipeLike
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&existing).Error

	var delta int64
	var isLiked bool
	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return false, 0, fmt.Errorf("failed to remove like: %w", err)
		}
		delta, isLiked = -1, false
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := model.RecipeLike{
			ID:       uuid.New(),
			UserID:   userID,
			RecipeID: recipeID,
			LikedAt:  s.now(),
		}
		if err := s.db.WithContext(ctx).Create(&like).Error; err != nil {
			return false, 0, fmt.Errorf("failed to create like: %w", err)
		}
		delta, isLiked = 1, true
	default:
		return false, 0, fmt.Errorf("failed to check like state: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Where("id = ?", recipeID).
		UpdateColumn("likes", gorm.Expr("likes + ?", delta)).Error; err != nil {
		return false, 0, fmt.Errorf("failed to update like counter: %w", err)
	}

	var updated model.Recipe
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", recipeID).Error; err != nil {
		return false, 0, fmt.Errorf("failed to fetch updated recipe: %w", err)
	}
	return isLiked, updated.Likes, nil
}

// LikedRecipes returns a user's liked recipes, most recently liked
// first.
func (s *RecipeService) LikedRecipes(ctx context.Context, userID string) ([]model.Recipe, error) {
	var likes []model.RecipeLike
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("liked_at DESC").
		Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch likes: %w", err)
	}

	recipes := make([]model.Recipe, 0, len(likes))
	for _, like := range likes {
		var recipe model.Recipe
		if err := s.db.WithContext(ctx).First(&recipe, "id = ?", like.RecipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to fetch liked recipe: %w", err)
		}
		backfillYouTubeURL(&recipe)
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// Popular returns recipes ordered by like count descending.
func (s *RecipeService) Popular(ctx context.Context, limit int) ([]model.Recipe, error) {
	if limit <= 0 {
		limit = 10
	}

	var recipes []model.Recipe
	if err := s.db.WithContext(ctx).
		Order("likes DESC").
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch popular recipes: %w", err)
	}

	for i := range recipes {
		backfillYouTubeURL(&recipes[i])
	}
	return recipes, nil
}

// backfillYouTubeURL fills the derived link on rows written before the
// field existed. Read paths present it without persisting; the hit
// path persists it.
func backfillYouTubeURL(recipe *model.Recipe) {
	if recipe.YoutubeURL == "" {
		recipe.YoutubeURL = YouTubeSearchURL(recipe.DisplayName)
	}
}
