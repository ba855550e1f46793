package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Ingredient is a single entry in a recipe's ingredient list. Order is
// meaningful and duplicate names are allowed.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// Step is a single instruction. TimeMinutes is set only for steps with
// an active wait or cook duration (baking, simmering, resting).
type Step struct {
	Description string `json:"description"`
	TimeMinutes int    `json:"timeMinutes,omitempty"`
}

// IngredientList is a custom type for handling ingredient arrays in JSONB
type IngredientList []Ingredient

// Value implements the driver.Valuer interface
func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *IngredientList) Scan(value interface{}) error {
	if value == nil {
		*l = IngredientList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// StepList is a custom type for handling step arrays in JSONB
type StepList []Step

// Value implements the driver.Valuer interface
func (l StepList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *StepList) Scan(value interface{}) error {
	if value == nil {
		*l = StepList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Recipe is the canonical persisted entity. The primary key is derived
// from the normalized name, so different spellings of the same dish map
// to one row and share its counters.
type Recipe struct {
	ID             string         `gorm:"size:32;primaryKey" json:"recipeId"`
	NormalizedName string         `gorm:"size:255;not null;index" json:"recipeName"`
	DisplayName    string         `gorm:"size:255;not null" json:"displayName"`
	Ingredients    IngredientList `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Steps          StepList       `gorm:"type:jsonb;not null;default:'[]'" json:"steps"`
	Difficulty     string         `gorm:"size:50" json:"difficulty"`
	EstimatedTime  int            `json:"estimatedTime"`
	Servings       int            `json:"servings"`
	Likes          int64          `gorm:"not null;default:0" json:"likes"`
	SearchCount    int64          `gorm:"not null;default:0" json:"searchCount"`
	YoutubeURL     string         `gorm:"size:512" json:"youtubeUrl"`
	CreatedAt      time.Time      `json:"createdAt"`
	LastSearched   time.Time      `gorm:"index" json:"lastSearched"`
}
