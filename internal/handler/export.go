package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/calorie-log/internal/export"
)

// ExportHandler serves spreadsheet downloads of the log.
type ExportHandler struct {
	foods  FoodService
	loc    *time.Location
	logger *slog.Logger
}

// NewExportHandler creates an ExportHandler that renders times in loc.
func NewExportHandler(foods FoodService, loc *time.Location, logger *slog.Logger) *ExportHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ExportHandler{foods: foods, loc: loc, logger: logger}
}

// HandleExport downloads entries between two dates (inclusive) as .xlsx.
// Both dates default to today.
//
// HTTP: GET /export?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	entries, err := h.foods.Range(r.Context(), from, to)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to load export range", slog.String("error", err.Error()))
		http.Error(w, "Error exporting entries", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, entries, h.loc); err != nil {
		h.logger.Error("failed to build workbook", slog.String("error", err.Error()))
		http.Error(w, "Error exporting entries", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("calories_%s.xlsx", time.Now().In(h.loc).Format("20060102"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	buf.WriteTo(w)

	h.logger.Info("entries exported", slog.Int("count", len(entries)))
}
