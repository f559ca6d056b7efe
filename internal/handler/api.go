package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/calorie-log/internal/apperror"
	"github.com/sakif/calorie-log/internal/service"
)

// Resolver previews calorie resolution without storing anything.
type Resolver interface {
	ResolveDetail(ctx context.Context, foodName string) service.Resolution
}

// APIHandler serves the JSON endpoints.
type APIHandler struct {
	foods    FoodService
	resolver Resolver
	ping     func() error
	logger   *slog.Logger
}

// NewAPIHandler creates an APIHandler. ping checks the database for /healthz
// and may be nil.
func NewAPIHandler(foods FoodService, resolver Resolver, ping func() error, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		foods:    foods,
		resolver: resolver,
		ping:     ping,
		logger:   logger,
	}
}

// HandleDay returns one day's entries and total.
//
// HTTP: GET /api/day?date=YYYY-MM-DD
func (h *APIHandler) HandleDay(w http.ResponseWriter, r *http.Request) {
	summary, err := h.foods.Day(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleResolve reports what calories a food name would be logged with.
//
// HTTP: GET /api/resolve?food=200g+banana
func (h *APIHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	food := strings.TrimSpace(r.URL.Query().Get("food"))
	if food == "" {
		writeError(w, apperror.ValidationFailed("food", "food is required"))
		return
	}

	writeJSON(w, http.StatusOK, h.resolver.ResolveDetail(r.Context(), food))
}

// HandleHealth reports whether the server and its database are up.
//
// HTTP: GET /healthz
func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(); err != nil {
			h.logger.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
