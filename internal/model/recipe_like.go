package model

import (
	"time"

	"github.com/google/uuid"
)

// RecipeLike records that a user has liked a recipe. Existence of the
// row is the liked state; unliking deletes it.
type RecipeLike struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   string    `gorm:"size:128;not null;uniqueIndex:idx_recipe_likes_user_recipe" json:"user_id"`
	RecipeID string    `gorm:"size:32;not null;uniqueIndex:idx_recipe_likes_user_recipe;index" json:"recipe_id"`
	LikedAt  time.Time `gorm:"not null;index" json:"liked_at"`
}

func (RecipeLike) TableName() string {
	return "recipe_likes"
}
