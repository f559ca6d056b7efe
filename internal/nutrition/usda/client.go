// Package usda implements nutrition.Searcher against the USDA FoodData Central API.
//
// Only the search endpoint is used:
//
//	GET {BaseURL}/foods/search?query=banana&api_key=KEY&pageSize=25
//
// The response carries a foods[] array; each food has a description, an
// optional foodCategory, and foodNutrients[] with nutrientName, unitName and
// value (per 100g).
package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sakif/calorie-log/internal/apperror"
	"github.com/sakif/calorie-log/internal/nutrition"
)

var _ nutrition.Searcher = (*Client)(nil)

// maxErrorBody caps how much of a failed response body we log.
const maxErrorBody = 512

// Client is a FoodData Central search client.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a Client. An empty APIKey is accepted; the API will reject the
// request and the caller sees an upstream error.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type searchResponse struct {
	Foods []food `json:"foods"`
}

type food struct {
	Description   string         `json:"description"`
	FoodCategory  string         `json:"foodCategory"`
	FoodNutrients []foodNutrient `json:"foodNutrients"`
}

type foodNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

// Search runs a foods/search query and returns the candidates in API order.
func (c *Client) Search(ctx context.Context, query string) ([]nutrition.Candidate, error) {
	reqURL, err := url.Parse(c.config.BaseURL + "/foods/search")
	if err != nil {
		return nil, fmt.Errorf("usda: parsing base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("query", query)
	params.Set("api_key", c.config.APIKey)
	if c.config.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(c.config.PageSize))
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("usda: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usda: searching foods: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("usda search rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, fmt.Errorf("usda: searching foods: %w", apperror.Upstream("usda", resp.StatusCode))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("usda: decoding search response: %w", err)
	}

	candidates := make([]nutrition.Candidate, 0, len(sr.Foods))
	for _, f := range sr.Foods {
		nutrients := make([]nutrition.Nutrient, 0, len(f.FoodNutrients))
		for _, n := range f.FoodNutrients {
			nutrients = append(nutrients, nutrition.Nutrient{
				Name:  n.NutrientName,
				Unit:  n.UnitName,
				Value: n.Value,
			})
		}
		candidates = append(candidates, nutrition.Candidate{
			Description: f.Description,
			Category:    f.FoodCategory,
			Nutrients:   nutrients,
		})
	}

	return candidates, nil
}
