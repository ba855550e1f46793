package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/dishly/backend/internal/model"
)

// recipeResponse flattens a recipe into a JSON object and merges in
// extra response fields such as the cached flag.
func recipeResponse(recipe *model.Recipe, extra gin.H) gin.H {
	data, err := json.Marshal(recipe)
	if err != nil {
		return extra
	}

	out := gin.H{}
	if err := json.Unmarshal(data, &out); err != nil {
		return extra
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
