package service

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/dishly/backend/internal/model"
)

var (
	nonWordRE    = regexp.MustCompile(`[^\w\s]`)
	multiSpaceRE = regexp.MustCompile(`\s+`)
)

// NormalizeRecipeName cleans a raw recipe name into the canonical lookup
// form: trimmed, lowercased, stripped of punctuation, with internal
// whitespace runs collapsed to a single space. Returns "" for input that
// has no usable content; callers must treat "" as a validation failure,
// never as a key.
func NormalizeRecipeName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = nonWordRE.ReplaceAllString(s, "")
	s = multiSpaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// DeriveRecipeID derives the content-addressed recipe id from a
// normalized name. MD5 keeps ids stable against data written by earlier
// deployments of the service.
func DeriveRecipeID(normalizedName string) string {
	sum := md5.Sum([]byte(normalizedName))
	return hex.EncodeToString(sum[:])
}

// IsRecipeFresh reports whether a cached recipe is still inside the
// freshness window. A window of zero or less means cached entries never
// go stale.
func IsRecipeFresh(lastSearched time.Time, window time.Duration, now time.Time) bool {
	if window <= 0 {
		return true
	}
	if lastSearched.IsZero() {
		return false
	}
	return now.Sub(lastSearched) < window
}

// ActiveCookingMinutes sums the timed steps of a recipe, giving the
// total active cook/wait time in minutes.
func ActiveCookingMinutes(steps []model.Step) int {
	total := 0
	for _, s := range steps {
		total += s.TimeMinutes
	}
	return total
}
