package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dishly/backend/config"
	"github.com/dishly/backend/internal/model"
)

// newChatTestServer returns a chat completions endpoint that always
// replies with the given assistant content.
func newChatTestServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
}

func newTestLLMService(url string) *LLMService {
	return NewLLMService(config.OpenAIConfig{
		APIKey:    "test-key",
		APIURL:    url,
		Model:     "gpt-3.5-turbo",
		MaxTokens: 1500,
		Timeout:   5 * time.Second,
	}, nil, zap.NewNop())
}

func TestGenerateRecipe(t *testing.T) {
	server := newChatTestServer(t, `{
		"ingredients": [{"name": "chicken", "quantity": "500", "unit": "g"}],
		"steps": [{"description": "Grill the chicken", "timeMinutes": 20}],
		"difficulty": "Easy",
		"estimatedTime": 30,
		"servings": 2
	}`)
	defer server.Close()

	svc := newTestLLMService(server.URL)
	draft := svc.GenerateRecipe(context.Background(), "Grilled Chicken")

	require.NotNil(t, draft)
	assert.Empty(t, draft.Error)
	assert.Equal(t, "Easy", draft.Difficulty)
	assert.Equal(t, 30, draft.EstimatedTime)
	assert.Equal(t, 2, draft.Servings)
	assert.Equal(t, []model.Ingredient{{Name: "chicken", Quantity: "500", Unit: "g"}}, draft.Ingredients)
}

func TestGenerateRecipeUnparseableReplyYieldsFallback(t *testing.T) {
	server := newChatTestServer(t, "Sure! Here is a recipe: first you take the chicken...")
	defer server.Close()

	svc := newTestLLMService(server.URL)
	draft := svc.GenerateRecipe(context.Background(), "Grilled Chicken")

	require.NotNil(t, draft)
	assert.NotEmpty(t, draft.Error)
	assert.Equal(t, "Unknown", draft.Difficulty)
	assert.Equal(t, 0, draft.EstimatedTime)
	assert.Equal(t, 1, draft.Servings)
	require.Len(t, draft.Ingredients, 1)
	require.Len(t, draft.Steps, 1)
}

func TestGenerateRecipeProviderErrorYieldsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestLLMService(server.URL)
	draft := svc.GenerateRecipe(context.Background(), "Grilled Chicken")

	require.NotNil(t, draft)
	assert.NotEmpty(t, draft.Error)
	assert.Equal(t, "Unknown", draft.Difficulty)
}

func TestGenerateRecipeWithoutAPIKey(t *testing.T) {
	svc := NewLLMService(config.OpenAIConfig{APIURL: "http://localhost:1"}, nil, zap.NewNop())
	draft := svc.GenerateRecipe(context.Background(), "Grilled Chicken")

	require.NotNil(t, draft)
	assert.NotEmpty(t, draft.Error)
	assert.Equal(t, "Unknown", draft.Difficulty)
}

func TestSuggestBareArray(t *testing.T) {
	server := newChatTestServer(t, `["Chicken Curry", "Chicken Tikka Masala", "Butter Chicken"]`)
	defer server.Close()

	svc := newTestLLMService(server.URL)
	suggestions := svc.Suggest(context.Background(), "chiken")

	assert.Equal(t, []string{"Chicken Curry", "Chicken Tikka Masala", "Butter Chicken"}, suggestions)
}

func TestSuggestWrappedArray(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"suggestions field", `{"suggestions": ["Pad Thai", "Pad See Ew"]}`},
		{"recipes field", `{"recipes": ["Pad Thai", "Pad See Ew"]}`},
		{"titles field", `{"titles": ["Pad Thai", "Pad See Ew"]}`},
		{"results field", `{"results": ["Pad Thai", "Pad See Ew"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newChatTestServer(t, tt.payload)
			defer server.Close()

			svc := newTestLLMService(server.URL)
			suggestions := svc.Suggest(context.Background(), "pad")
			assert.Equal(t, []string{"Pad Thai", "Pad See Ew"}, suggestions)
		})
	}
}

func TestSuggestCapsAtFive(t *testing.T) {
	server := newChatTestServer(t, `["a", "b", "c", "d", "e", "f", "g"]`)
	defer server.Close()

	svc := newTestLLMService(server.URL)
	suggestions := svc.Suggest(context.Background(), "alphabet soup")
	assert.Len(t, suggestions, 5)
}

func TestSuggestDropsBlankEntries(t *testing.T) {
	server := newChatTestServer(t, `["Pad Thai", "", "   ", "Pad See Ew"]`)
	defer server.Close()

	svc := newTestLLMService(server.URL)
	suggestions := svc.Suggest(context.Background(), "pad")
	assert.Equal(t, []string{"Pad Thai", "Pad See Ew"}, suggestions)
}

func TestSuggestUnknownShapeYieldsEmpty(t *testing.T) {
	server := newChatTestServer(t, `{"unexpected": "shape"}`)
	defer server.Close()

	svc := newTestLLMService(server.URL)
	suggestions := svc.Suggest(context.Background(), "pad")
	assert.Empty(t, suggestions)
}

func TestSuggestProviderErrorYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := newTestLLMService(server.URL)
	suggestions := svc.Suggest(context.Background(), "pad")
	assert.Empty(t, suggestions)
}

func analyzedRecipe() *model.Recipe {
	return &model.Recipe{
		ID:             DeriveRecipeID("chicken tikka masala"),
		NormalizedName: "chicken tikka masala",
		DisplayName:    "Chicken Tikka Masala",
		Ingredients: model.IngredientList{
			{Name: "chicken", Quantity: "500", Unit: "g"},
		},
		Steps: model.StepList{
			{Description: "Marinate the chicken", TimeMinutes: 30},
			{Description: "Simmer in sauce", TimeMinutes: 20},
		},
	}
}

func TestAnalyzeVideo(t *testing.T) {
	server := newChatTestServer(t, `{
		"enhancedSteps": [
			{"description": "Marinate overnight for deeper flavor", "timeMinutes": 30, "videoTip": "Use full-fat yogurt"}
		],
		"videoInsights": ["Char the chicken under a broiler"],
		"enhancedBy": "Best Tikka Masala"
	}`)
	defer server.Close()

	svc := newTestLLMService(server.URL)
	analysis := svc.AnalyzeVideo(context.Background(), analyzedRecipe(), VideoInfo{
		VideoID: "abc123", Title: "Best Tikka Masala", ChannelTitle: "Test Kitchen",
	})

	require.NotNil(t, analysis)
	assert.Empty(t, analysis.Error)
	assert.Equal(t, "Best Tikka Masala", analysis.EnhancedBy)
	require.Len(t, analysis.EnhancedSteps, 1)
	assert.Equal(t, "Use full-fat yogurt", analysis.EnhancedSteps[0].VideoTip)
	assert.Equal(t, []string{"Char the chicken under a broiler"}, analysis.VideoInsights)
}

func TestAnalyzeVideoFallbackPreservesSteps(t *testing.T) {
	server := newChatTestServer(t, "not json at all")
	defer server.Close()

	recipe := analyzedRecipe()
	svc := newTestLLMService(server.URL)
	analysis := svc.AnalyzeVideo(context.Background(), recipe, VideoInfo{
		VideoID: "abc123", Title: "Best Tikka Masala",
	})

	require.NotNil(t, analysis)
	assert.NotEmpty(t, analysis.Error)
	assert.Equal(t, "Best Tikka Masala", analysis.EnhancedBy)
	require.Len(t, analysis.EnhancedSteps, len(recipe.Steps))
	for i, st := range recipe.Steps {
		assert.Equal(t, st.Description, analysis.EnhancedSteps[i].Description)
		assert.Equal(t, st.TimeMinutes, analysis.EnhancedSteps[i].TimeMinutes)
	}
}
