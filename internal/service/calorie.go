package service

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sakif/calorie-log/internal/nutrition"
)

// DefaultFallbackCalories is the estimate stored when a food cannot be resolved.
const DefaultFallbackCalories = 100

// MaxCalories bounds a scaled result. Anything larger means the weight was
// nonsense and the fallback is used instead.
const MaxCalories = math.MaxInt32

// weightPattern matches an embedded gram weight such as "200g", "200 gr" or
// "150 grams". The trailing \b keeps "2 grapefruit" from reading as 2g.
var weightPattern = regexp.MustCompile(`(\d+)\s*g(?:rams?|r)?\b`)

// categoryHints are the food categories preferred for single-word queries, so
// "apple" resolves to the raw fruit rather than "apple pie".
var categoryHints = []string{"fruit", "meat"}

// Resolution describes how a calorie value was obtained.
type Resolution struct {
	Calories     int     `json:"calories"`
	Query        string  `json:"query"`
	Grams        int     `json:"grams,omitempty"`
	HasWeight    bool    `json:"hasWeight"`
	Matched      string  `json:"matched,omitempty"`      // description of the chosen candidate
	BaseCalories float64 `json:"baseCalories,omitempty"` // kcal per 100g of the chosen candidate
	Fallback     bool    `json:"fallback"`
}

// CalorieResolver turns a free-text food description into an approximate
// calorie count using a nutrition.Searcher.
//
// It never returns an error: any lookup failure is logged and resolved to the
// fallback value.
type CalorieResolver struct {
	search   nutrition.Searcher
	fallback int
	logger   *slog.Logger
}

// NewCalorieResolver creates a resolver. A negative fallback is replaced by
// DefaultFallbackCalories.
func NewCalorieResolver(search nutrition.Searcher, fallback int, logger *slog.Logger) *CalorieResolver {
	if fallback < 0 {
		fallback = DefaultFallbackCalories
	}
	return &CalorieResolver{
		search:   search,
		fallback: fallback,
		logger:   logger,
	}
}

// Fallback returns the value used when resolution fails.
func (r *CalorieResolver) Fallback() int {
	return r.fallback
}

// Resolve returns the calorie estimate for foodName.
func (r *CalorieResolver) Resolve(ctx context.Context, foodName string) int {
	return r.ResolveDetail(ctx, foodName).Calories
}

// ResolveDetail resolves foodName and reports which candidate was used.
func (r *CalorieResolver) ResolveDetail(ctx context.Context, foodName string) Resolution {
	query, grams, hasWeight := ParseQuery(foodName)
	res := Resolution{Query: query, Grams: grams, HasWeight: hasWeight}

	if query == "" {
		return r.fallbackFor(res, "empty query")
	}

	candidates, err := r.search.Search(ctx, query)
	if err != nil {
		r.logger.Warn("nutrition lookup failed, using fallback",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return r.fallbackFor(res, "lookup failed")
	}
	if len(candidates) == 0 {
		return r.fallbackFor(res, "no candidates")
	}

	chosen := pickCandidate(query, candidates)
	res.Matched = chosen.Description

	base, ok := energyKcal(chosen)
	if !ok {
		return r.fallbackFor(res, "no energy value")
	}
	res.BaseCalories = base

	scaled := base
	if hasWeight {
		scaled = base * float64(grams) / 100
	}
	scaled = math.Round(scaled)
	if scaled > MaxCalories {
		return r.fallbackFor(res, "weight out of range")
	}
	res.Calories = int(scaled)

	r.logger.Debug("calories resolved",
		slog.String("query", query),
		slog.String("matched", res.Matched),
		slog.Int("calories", res.Calories),
	)
	return res
}

func (r *CalorieResolver) fallbackFor(res Resolution, reason string) Resolution {
	r.logger.Debug("calorie fallback",
		slog.String("query", res.Query),
		slog.String("reason", reason),
	)
	res.Calories = r.fallback
	res.Fallback = true
	return res
}

// ParseQuery lowercases raw and extracts the first gram weight in it.
// It returns the remaining text as the search query, and the weight when one
// was present.
//
//	ParseQuery("200g Banana")  → "banana", 200, true
//	ParseQuery("chicken")      → "chicken", 0, false
func ParseQuery(raw string) (query string, grams int, ok bool) {
	lower := strings.ToLower(raw)

	loc := weightPattern.FindStringSubmatchIndex(lower)
	if loc == nil {
		return normalizeSpace(lower), 0, false
	}

	query = normalizeSpace(lower[:loc[0]] + " " + lower[loc[1]:])

	n, err := strconv.Atoi(lower[loc[2]:loc[3]])
	if err != nil {
		// Too many digits to be a weight; drop it but search unscaled.
		return query, 0, false
	}
	return query, n, true
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// pickCandidate chooses which search result to use.
//
// For single-word queries the first candidate in a fruit or meat category
// wins. Otherwise the first candidate whose description contains the query is
// used, falling back to the top-ranked result.
func pickCandidate(query string, candidates []nutrition.Candidate) nutrition.Candidate {
	if len(strings.Fields(query)) == 1 {
		for _, c := range candidates {
			if matchesCategory(c.Category) {
				return c
			}
		}
	}

	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Description), query) {
			return c
		}
	}

	return candidates[0]
}

func matchesCategory(category string) bool {
	category = strings.ToLower(category)
	for _, hint := range categoryHints {
		if strings.Contains(category, hint) {
			return true
		}
	}
	return false
}

// energyKcal returns the candidate's energy value in kilocalories per 100g.
// Zero, negative and kJ-only values count as unresolved.
func energyKcal(c nutrition.Candidate) (float64, bool) {
	for _, n := range c.Nutrients {
		if strings.Contains(strings.ToLower(n.Name), "energy") && strings.EqualFold(n.Unit, "kcal") {
			if n.Value <= 0 || math.IsNaN(n.Value) {
				return 0, false
			}
			return n.Value, true
		}
	}
	return 0, false
}
