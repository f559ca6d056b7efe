// Package nutrition defines the types shared by nutrition database clients.
package nutrition

import "context"

// Nutrient is one nutrient amount reported for a candidate food.
// Values from FoodData Central are per 100g of the food.
type Nutrient struct {
	Name  string  `json:"name"`
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
}

// Candidate is a food record returned by a search.
// Category is empty when the source does not classify the food.
type Candidate struct {
	Description string     `json:"description"`
	Category    string     `json:"category,omitempty"`
	Nutrients   []Nutrient `json:"nutrients"`
}

// Searcher looks up candidate foods for a free-text query.
// Results are returned in the order the source ranks them.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}
