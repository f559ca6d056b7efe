package repository

import (
	"context"
	"time"

	"github.com/sakif/calorie-log/internal/model"
)

// FoodRepository persists logged food entries.
// Every list method is scoped to one user and returns entries newest first.
type FoodRepository interface {
	Create(ctx context.Context, entry *model.FoodEntry) error
	// ListBetween returns entries created in the half-open range [from, to).
	ListBetween(ctx context.Context, userID int64, from, to time.Time) ([]model.FoodEntry, error)
	// Search returns entries whose food name contains q, ignoring case.
	Search(ctx context.Context, userID int64, q string) ([]model.FoodEntry, error)
}
