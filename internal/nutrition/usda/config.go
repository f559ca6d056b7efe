package usda

import (
	"time"
)

// Config holds the configuration for the FoodData Central client.
type Config struct {
	// APIKey is the api.data.gov key sent as the api_key query parameter.
	APIKey string
	// BaseURL is the FoodData Central API root, without a trailing slash.
	BaseURL string
	// PageSize is the number of candidates requested per search.
	PageSize int
	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration
}

// DefaultBaseURL is the public FoodData Central v1 endpoint.
const DefaultBaseURL = "https://api.nal.usda.gov/fdc/v1"

// DefaultConfig provides sensible defaults. APIKey is left empty.
func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		PageSize: 25,
		Timeout:  10 * time.Second,
	}
}
