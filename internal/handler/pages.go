// Package handler contains HTTP request handlers for the calorie log.
//
// Handlers are the glue between HTTP and the service layer: they parse the
// request, call a service, and render a template or JSON. They hold no
// business rules.
package handler

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sakif/calorie-log/internal/model"
)

// FoodService is the part of service.FoodService the handlers use.
type FoodService interface {
	Add(ctx context.Context, foodName string) (*model.FoodEntry, error)
	Today(ctx context.Context) (*model.DaySummary, error)
	Day(ctx context.Context, date string) (*model.DaySummary, error)
	Search(ctx context.Context, q string) ([]model.FoodEntry, error)
	Range(ctx context.Context, from, to string) ([]model.FoodEntry, error)
}

// page names, each backed by web/templates/<name>.html
var pageNames = []string{"index", "about", "add", "search", "day", "notfound"}

// PageHandler serves the server-rendered HTML pages.
//
// Each page is parsed together with base.html into its own template set,
// because every page defines a "content" block and one set can hold only one.
type PageHandler struct {
	pages  map[string]*template.Template
	foods  FoodService
	loc    *time.Location
	logger *slog.Logger
}

// NewPageHandler parses the page templates in templateDir.
// Times are rendered in loc.
func NewPageHandler(templateDir string, foods FoodService, loc *time.Location, logger *slog.Logger) (*PageHandler, error) {
	if loc == nil {
		loc = time.Local
	}

	funcs := template.FuncMap{
		"clock": func(t time.Time) string { return t.In(loc).Format("15:04") },
		"stamp": func(t time.Time) string { return t.In(loc).Format("2006-01-02 15:04") },
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, name+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &PageHandler{
		pages:  pages,
		foods:  foods,
		loc:    loc,
		logger: logger,
	}, nil
}

// render executes page into a buffer first, so a template error can still
// produce a clean 500 instead of half a page.
func (h *PageHandler) render(w http.ResponseWriter, status int, page string, data map[string]any) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// HandleHome shows today's entries and total.
//
// HTTP: GET /
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	summary, err := h.foods.Today(r.Context())
	if err != nil {
		h.logger.Error("failed to load home page", slog.String("error", err.Error()))
		http.Error(w, "Error loading home page", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, "index", map[string]any{
		"Title":         "Today",
		"Date":          summary.Date,
		"Foods":         summary.Entries,
		"TotalCalories": summary.TotalCalories,
	})
}

// HandleAbout serves the static about page.
//
// HTTP: GET /about
func (h *PageHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "about", map[string]any{"Title": "About"})
}

// HandleAddForm shows the empty add form.
//
// HTTP: GET /add
func (h *PageHandler) HandleAddForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "add", map[string]any{"Title": "Add food"})
}

// HandleAdd logs a food and redirects home.
//
// HTTP: POST /add  (form field food_name)
//
// An empty name re-renders the form with an inline error and a 200 status;
// nothing is written. The redirect uses 303 so a browser refresh on the home
// page does not resubmit the form.
func (h *PageHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "add", map[string]any{
			"Title": "Add food",
			"Error": "Could not read the form.",
		})
		return
	}
	foodName := r.PostForm.Get("food_name")

	if _, err := h.foods.Add(r.Context(), foodName); err != nil {
		if msg, ok := validationMessage(err); ok {
			h.render(w, http.StatusOK, "add", map[string]any{
				"Title":    "Add food",
				"Error":    msg,
				"FoodName": foodName,
			})
			return
		}
		h.logger.Error("failed to add food", slog.String("error", err.Error()))
		http.Error(w, "Error adding food", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSearch lists entries whose name contains q.
//
// HTTP: GET /search?q=
func (h *PageHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	results, err := h.foods.Search(r.Context(), q)
	if err != nil {
		h.logger.Error("failed to search", slog.String("q", q), slog.String("error", err.Error()))
		http.Error(w, "Error performing search", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, "search", map[string]any{
		"Title":   "Search",
		"Query":   q,
		"Results": results,
	})
}

// HandleDay shows the entries and total for one date; today when date is absent.
//
// HTTP: GET /day?date=YYYY-MM-DD
func (h *PageHandler) HandleDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	summary, err := h.foods.Day(r.Context(), date)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			h.render(w, http.StatusBadRequest, "day", map[string]any{
				"Title": "Day",
				"Date":  date,
				"Error": msg,
			})
			return
		}
		h.logger.Error("failed to load day view", slog.String("date", date), slog.String("error", err.Error()))
		http.Error(w, "Error loading day view", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, "day", map[string]any{
		"Title":         summary.Date,
		"Date":          summary.Date,
		"Foods":         summary.Entries,
		"TotalCalories": summary.TotalCalories,
	})
}

// HandleNotFound renders the 404 page for unknown routes.
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "notfound", map[string]any{"Title": "Page not found"})
}
