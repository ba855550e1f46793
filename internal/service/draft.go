package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dishly/backend/internal/model"
)

// Sentinel defaults used when the generator omits ingredient fields.
const (
	defaultIngredientName = "Unknown ingredient"
	defaultQuantity       = "1"
	defaultUnit           = "piece"
	defaultServings       = 4
)

var (
	errNoIngredients = errors.New("recipe has no ingredients")
	errNoSteps       = errors.New("recipe has no steps")
	errNoDifficulty  = errors.New("recipe has no difficulty")
	errBadStep       = errors.New("step has no description")
	errBadTime       = errors.New("recipe has no estimated time")
)

// RecipeDraft is the canonical post-repair generation payload. A draft
// carrying a non-empty Error is the fallback substituted when the
// provider failed; it is still valid to store and return.
type RecipeDraft struct {
	Ingredients   []model.Ingredient `json:"ingredients"`
	Steps         []model.Step       `json:"steps"`
	Difficulty    string             `json:"difficulty"`
	EstimatedTime int                `json:"estimatedTime"`
	Servings      int                `json:"servings"`
	Error         string             `json:"error,omitempty"`
}

// flexString accepts both string and numeric JSON values. Generators
// routinely send quantities as bare numbers.
type flexString struct {
	Value string
}

func (s *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Value = str
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if num == float64(int64(num)) {
			s.Value = strconv.FormatInt(int64(num), 10)
		} else {
			s.Value = strconv.FormatFloat(num, 'f', -1, 64)
		}
		return nil
	}

	// Anything else (object, null) is treated as absent
	s.Value = ""
	return nil
}

// flexInt accepts a number, or a string with leading digits such as
// "45" or "45 minutes". Anything else decodes to zero.
type flexInt struct {
	Value int
}

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		i.Value = int(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		fields := strings.Fields(strings.TrimSpace(str))
		if len(fields) > 0 {
			if n, err := strconv.Atoi(fields[0]); err == nil {
				i.Value = n
				return nil
			}
		}
	}

	i.Value = 0
	return nil
}

// ingredientDraft is the loose wire form of an ingredient: either a
// bare string ("2 cups flour") or an object with any subset of the
// canonical fields.
type ingredientDraft struct {
	text   string
	isText bool
	obj    struct {
		Name     flexString `json:"name"`
		Quantity flexString `json:"quantity"`
		Unit     flexString `json:"unit"`
	}
}

func (d *ingredientDraft) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &d.text); err == nil {
		d.isText = true
		return nil
	}
	d.isText = false
	return json.Unmarshal(data, &d.obj)
}

// coerce turns the loose form into a fully-populated triple. String
// forms with at least three tokens split into quantity, unit and name;
// shorter ones keep the whole text as the name. Object forms get
// sentinel defaults for missing fields instead of rejecting the draft.
func (d *ingredientDraft) coerce() model.Ingredient {
	if d.isText {
		tokens := strings.Fields(d.text)
		if len(tokens) >= 3 {
			return model.Ingredient{
				Quantity: tokens[0],
				Unit:     tokens[1],
				Name:     strings.Join(tokens[2:], " "),
			}
		}
		name := strings.TrimSpace(d.text)
		if name == "" {
			name = defaultIngredientName
		}
		return model.Ingredient{Name: name, Quantity: defaultQuantity, Unit: defaultUnit}
	}

	ing := model.Ingredient{
		Name:     d.obj.Name.Value,
		Quantity: d.obj.Quantity.Value,
		Unit:     d.obj.Unit.Value,
	}
	if ing.Name == "" {
		ing.Name = defaultIngredientName
	}
	if ing.Quantity == "" {
		ing.Quantity = defaultQuantity
	}
	if ing.Unit == "" {
		ing.Unit = defaultUnit
	}
	return ing
}

// stepDraft is the loose wire form of a step: a bare string or an
// object carrying description and optional timeMinutes.
type stepDraft struct {
	text   string
	isText bool
	obj    struct {
		Description flexString `json:"description"`
		TimeMinutes flexInt    `json:"timeMinutes"`
	}
}

func (d *stepDraft) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &d.text); err == nil {
		d.isText = true
		return nil
	}
	d.isText = false
	return json.Unmarshal(data, &d.obj)
}

func (d *stepDraft) coerce() model.Step {
	if d.isText {
		return model.Step{Description: strings.TrimSpace(d.text)}
	}
	return model.Step{
		Description: strings.TrimSpace(d.obj.Description.Value),
		TimeMinutes: d.obj.TimeMinutes.Value,
	}
}

// rawDraft mirrors the generator's JSON with every field in its loose
// form, before repair.
type rawDraft struct {
	Ingredients   []ingredientDraft `json:"ingredients"`
	Steps         []stepDraft       `json:"steps"`
	Difficulty    flexString        `json:"difficulty"`
	EstimatedTime flexInt           `json:"estimatedTime"`
	Servings      flexInt           `json:"servings"`
}

// parseDraft decodes and repairs generator output into the canonical
// draft shape. The returned draft satisfies the post-repair contract:
// non-empty fully-populated ingredients, non-empty steps each with a
// description, a non-empty difficulty and a positive estimated time.
// Violations that repair cannot fix return an error; the caller
// substitutes the fallback draft.
func parseDraft(payload string) (*RecipeDraft, error) {
	var raw rawDraft
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("generator returned invalid JSON: %w", err)
	}
	return repairDraft(&raw)
}

func repairDraft(raw *rawDraft) (*RecipeDraft, error) {
	if len(raw.Ingredients) == 0 {
		return nil, errNoIngredients
	}
	if len(raw.Steps) == 0 {
		return nil, errNoSteps
	}

	draft := &RecipeDraft{
		Ingredients:   make([]model.Ingredient, 0, len(raw.Ingredients)),
		Steps:         make([]model.Step, 0, len(raw.Steps)),
		Difficulty:    strings.TrimSpace(raw.Difficulty.Value),
		EstimatedTime: raw.EstimatedTime.Value,
		Servings:      raw.Servings.Value,
	}

	for _, ing := range raw.Ingredients {
		draft.Ingredients = append(draft.Ingredients, ing.coerce())
	}

	for _, st := range raw.Steps {
		step := st.coerce()
		if step.Description == "" {
			// Not repairable: a step without a description makes the
			// whole recipe unusable.
			return nil, errBadStep
		}
		draft.Steps = append(draft.Steps, step)
	}

	if draft.Difficulty == "" {
		return nil, errNoDifficulty
	}
	if draft.EstimatedTime <= 0 {
		return nil, errBadTime
	}
	if draft.Servings <= 0 {
		draft.Servings = defaultServings
	}

	return draft, nil
}

// fallbackDraft is the fixed placeholder payload substituted when
// generation or repair fails irrecoverably. It always validates, so a
// request never fails outright on a generation error.
func fallbackDraft(err error) *RecipeDraft {
	return &RecipeDraft{
		Ingredients: []model.Ingredient{
			{Name: "Recipe service error", Quantity: "1", Unit: "error"},
		},
		Steps: []model.Step{
			{Description: "There was an error generating the recipe. Please try again later."},
		},
		Difficulty:    "Unknown",
		EstimatedTime: 0,
		Servings:      1,
		Error:         err.Error(),
	}
}
