package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dishly/backend/config"
	"github.com/dishly/backend/internal/model"
)

const (
	maxSuggestions      = 5
	suggestionCacheTTL  = time.Hour
	suggestionMaxTokens = 200
)

// suggestionKeys are the wrapper-object field names observed across
// provider revisions, tried in priority order. A match on anything but
// the first is logged so upstream schema drift stays visible.
var suggestionKeys = []string{"suggestions", "recipes", "titles", "results"}

// LLMService generates recipes, suggestions and video analyses through
// an OpenAI-compatible chat completions API. Redis, when present,
// caches suggestion lists; a nil client disables that.
type LLMService struct {
	cfg    config.OpenAIConfig
	client *http.Client
	redis  *redis.Client
	logger *zap.Logger
}

// NewLLMService creates a new LLMService instance
func NewLLMService(cfg config.OpenAIConfig, redisClient *redis.Client, logger *zap.Logger) *LLMService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LLMService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		redis:  redisClient,
		logger: logger,
	}
}

// chatMessage represents a message in the chat
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest represents a request to the chat completions API
type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
}

// chatResponse represents a response from the chat completions API
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete sends one chat exchange and returns the assistant text.
func (s *LLMService) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if s.cfg.APIKey == "" {
		return "", fmt.Errorf("LLM API key not configured")
	}

	temperature := s.cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}

	reqBody := chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    temperature,
		MaxTokens:      maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call LLM API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read LLM response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM API returned status %d: %s", resp.StatusCode, string(body))
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to unmarshal LLM response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("LLM response contained no choices")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

const recipeSystemPrompt = "You are a professional chef assistant that creates detailed, accurate recipes in JSON format."

func recipePrompt(name string) string {
	return fmt.Sprintf(`Return the recipe for %q with these fields in JSON format:
- ingredients (array of { name, quantity, unit })
- steps (array of { description, timeMinutes (optional for cooking/waiting steps) })
- difficulty (string: "Easy", "Medium", or "Hard")
- estimatedTime (total time in minutes)
- servings (number of servings)

Highlight steps with 'timeMinutes' for cooking/waiting steps like baking, simmering, etc.

Example format:
{
  "ingredients": [
    {"name": "flour", "quantity": "2", "unit": "cups"},
    {"name": "eggs", "quantity": "3", "unit": "pieces"}
  ],
  "steps": [
    {"description": "Preheat oven to 350°F", "timeMinutes": 10},
    {"description": "Mix flour and eggs in a bowl"},
    {"description": "Bake for 25 minutes", "timeMinutes": 25}
  ],
  "difficulty": "Easy",
  "estimatedTime": 45,
  "servings": 4
}

Return only valid JSON, no additional text.`, name)
}

// GenerateRecipe asks the provider for a recipe and repairs the reply
// into the canonical draft shape. It never returns an error: every
// failure mode, from transport errors to unrepairable payloads, yields
// the fallback draft with its Error field set, so callers can always
// store and serve something.
func (s *LLMService) GenerateRecipe(ctx context.Context, name string) *RecipeDraft {
	payload, err := s.complete(ctx, recipeSystemPrompt, recipePrompt(name), s.cfg.MaxTokens)
	if err != nil {
		s.logger.Error("recipe generation failed", zap.String("recipe", name), zap.Error(err))
		return fallbackDraft(err)
	}

	draft, err := parseDraft(payload)
	if err != nil {
		s.logger.Error("recipe repair failed", zap.String("recipe", name), zap.Error(err))
		return fallbackDraft(err)
	}

	return draft
}

const suggestSystemPrompt = "You are a helpful cooking assistant that suggests recipe names based on user queries. Always return valid JSON arrays of recipe titles."

func suggestPrompt(query string) string {
	return fmt.Sprintf(`Based on the user's search query %q, provide up to 5 recipe title suggestions that are most likely what they're looking for.

Rules:
- Correct any obvious typos or misspellings
- If the query is very general (like "chicken"), suggest popular variations
- Return realistic, popular recipe names
- Prioritize common and well-known recipes
- Return only the recipe titles, nothing else
- Return as a JSON array of strings

Return only a JSON array of strings, no additional text.`, query)
}

// Suggest returns up to five display-ready recipe titles for a query.
// Suggestion failure is non-fatal by design: any provider or parse
// problem yields an empty slice.
func (s *LLMService) Suggest(ctx context.Context, query string) []string {
	cacheKey := "suggest:" + NormalizeRecipeName(query)

	if s.redis != nil {
		if data, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []string
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached
			}
		}
	}

	payload, err := s.complete(ctx, suggestSystemPrompt, suggestPrompt(query), suggestionMaxTokens)
	if err != nil {
		s.logger.Warn("suggestion generation failed", zap.String("query", query), zap.Error(err))
		return []string{}
	}

	suggestions := s.parseSuggestions(payload)

	if s.redis != nil && len(suggestions) > 0 {
		if data, err := json.Marshal(suggestions); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, suggestionCacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache suggestions", zap.Error(err))
			}
		}
	}

	return suggestions
}

// parseSuggestions accepts the response shapes seen across provider
// revisions: a bare JSON array, or an object wrapping the array under
// one of a small set of known field names.
func (s *LLMService) parseSuggestions(payload string) []string {
	var titles []string
	if err := json.Unmarshal([]byte(payload), &titles); err == nil {
		return capSuggestions(titles)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
		s.logger.Warn("suggestions were not valid JSON", zap.String("payload", payload))
		return []string{}
	}

	for i, key := range suggestionKeys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &titles); err != nil {
			continue
		}
		if i > 0 {
			s.logger.Warn("suggestions arrived under non-primary field",
				zap.String("field", key))
		}
		return capSuggestions(titles)
	}

	s.logger.Warn("suggestions matched no known shape", zap.String("payload", payload))
	return []string{}
}

func capSuggestions(titles []string) []string {
	out := make([]string, 0, maxSuggestions)
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// VideoInfo carries the metadata of a tutorial video under analysis.
type VideoInfo struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	Description  string `json:"description"`
}

// EnhancedStep is an instruction augmented with insights drawn from a
// video tutorial.
type EnhancedStep struct {
	Description string `json:"description"`
	TimeMinutes int    `json:"timeMinutes,omitempty"`
	VideoTip    string `json:"videoTip,omitempty"`
}

// VideoAnalysis is the result of analyzing a tutorial against a recipe.
type VideoAnalysis struct {
	EnhancedSteps []EnhancedStep `json:"enhancedSteps"`
	VideoInsights []string       `json:"videoInsights"`
	EnhancedBy    string         `json:"enhancedBy"`
	Error         string         `json:"error,omitempty"`
}

const analyzeSystemPrompt = "You are a professional chef assistant that analyzes cooking videos to enhance recipes with practical cooking insights and techniques."

func analyzePrompt(recipe *model.Recipe, video VideoInfo) string {
	ingredients := make([]string, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		ingredients = append(ingredients, fmt.Sprintf("%s %s %s", ing.Quantity, ing.Unit, ing.Name))
	}
	steps := make([]string, 0, len(recipe.Steps))
	for i, st := range recipe.Steps {
		steps = append(steps, fmt.Sprintf("%d. %s", i+1, st.Description))
	}

	description := video.Description
	if description == "" {
		description = "No description available"
	}

	return fmt.Sprintf(`You are analyzing a cooking video tutorial to enhance a recipe. Here's the original recipe and video information:

ORIGINAL RECIPE:
Title: %s
Ingredients: %s
Instructions: %s

VIDEO INFORMATION:
Title: %s
Channel: %s
Description: %s

Please analyze this video tutorial and enhance the original recipe instructions with insights that would likely come from watching the video. Focus on cooking tips, temperature and timing adjustments, visual cues, common mistakes and professional techniques.

Return a JSON object:
{
  "enhancedSteps": [
    {"description": "enhanced instruction", "timeMinutes": 10, "videoTip": "specific tip from video analysis"}
  ],
  "videoInsights": ["Key insight 1", "Key insight 2"],
  "enhancedBy": %q
}

Return only valid JSON.`,
		recipe.DisplayName,
		strings.Join(ingredients, ", "),
		strings.Join(steps, "\n"),
		video.Title, video.ChannelTitle, description, video.Title)
}

// AnalyzeVideo enhances a recipe's instructions with insights from a
// tutorial video. Failure degrades to the original steps rather than
// surfacing an error.
func (s *LLMService) AnalyzeVideo(ctx context.Context, recipe *model.Recipe, video VideoInfo) *VideoAnalysis {
	payload, err := s.complete(ctx, analyzeSystemPrompt, analyzePrompt(recipe, video), s.cfg.MaxTokens)
	if err != nil {
		s.logger.Error("video analysis failed",
			zap.String("recipe_id", recipe.ID), zap.String("video_id", video.VideoID), zap.Error(err))
		return fallbackAnalysis(recipe, video, err)
	}

	var analysis VideoAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		s.logger.Error("video analysis returned invalid JSON",
			zap.String("recipe_id", recipe.ID), zap.Error(err))
		return fallbackAnalysis(recipe, video, fmt.Errorf("failed to parse video analysis"))
	}

	if analysis.EnhancedBy == "" {
		analysis.EnhancedBy = video.Title
	}
	return &analysis
}

// fallbackAnalysis preserves the original steps when analysis fails.
func fallbackAnalysis(recipe *model.Recipe, video VideoInfo, err error) *VideoAnalysis {
	steps := make([]EnhancedStep, 0, len(recipe.Steps))
	for _, st := range recipe.Steps {
		steps = append(steps, EnhancedStep{Description: st.Description, TimeMinutes: st.TimeMinutes})
	}
	return &VideoAnalysis{
		EnhancedSteps: steps,
		VideoInsights: []string{"Video analysis temporarily unavailable. Original recipe instructions preserved."},
		EnhancedBy:    video.Title,
		Error:         err.Error(),
	}
}
