// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and render; repositories talk SQL; the service sits in
// between and owns validation, calorie resolution and day arithmetic. It only
// sees the repository through repository.FoodRepository, so tests inject an
// in-memory fake.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/calorie-log/internal/apperror"
	"github.com/sakif/calorie-log/internal/model"
	"github.com/sakif/calorie-log/internal/repository"
)

const (
	DateLayout        = "2006-01-02"
	MaxFoodNameLength = 200
	DefaultUserID     = 1
	// MaxRangeDays bounds export requests.
	MaxRangeDays = 366
)

// CalorieEstimator resolves a food description to calories. *CalorieResolver
// satisfies it.
type CalorieEstimator interface {
	Resolve(ctx context.Context, foodName string) int
	// Fallback is stored in place of an unusable estimate.
	Fallback() int
}

// FoodOptions configures a FoodService.
type FoodOptions struct {
	// UserID owns every entry. The app is single-user; this is the one user.
	UserID int64
	// Location defines where calendar days start and end.
	Location *time.Location
}

// FoodService handles logging food and building the day views.
type FoodService struct {
	repo      repository.FoodRepository
	estimator CalorieEstimator
	userID    int64
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewFoodService creates a FoodService. Zero-valued options fall back to
// DefaultUserID and time.Local.
func NewFoodService(repo repository.FoodRepository, estimator CalorieEstimator, opts FoodOptions, logger *slog.Logger) *FoodService {
	if opts.UserID <= 0 {
		opts.UserID = DefaultUserID
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &FoodService{
		repo:      repo,
		estimator: estimator,
		userID:    opts.UserID,
		loc:       opts.Location,
		now:       time.Now,
		logger:    logger,
	}
}

// Add validates foodName, resolves its calories and stores the entry.
// Resolution always finishes before the write; it cannot fail, only fall back.
func (s *FoodService) Add(ctx context.Context, foodName string) (*model.FoodEntry, error) {
	foodName = strings.TrimSpace(foodName)

	if foodName == "" {
		return nil, apperror.ValidationFailed("food_name", "Please enter a food name.")
	}
	if utf8.RuneCountInString(foodName) > MaxFoodNameLength {
		return nil, apperror.ValidationFailed("food_name",
			fmt.Sprintf("Food name must be %d characters or less.", MaxFoodNameLength))
	}

	calories := s.estimator.Resolve(ctx, foodName)
	if calories < 0 {
		calories = s.estimator.Fallback()
	}

	entry := &model.FoodEntry{
		UserID:    s.userID,
		FoodName:  foodName,
		Calories:  calories,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to store food entry",
			slog.String("food_name", foodName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding food: %w", err)
	}

	s.logger.Info("food logged",
		slog.String("id", entry.ID),
		slog.String("food_name", entry.FoodName),
		slog.Int("calories", entry.Calories),
	)

	return entry, nil
}

// Today returns today's entries and total.
func (s *FoodService) Today(ctx context.Context) (*model.DaySummary, error) {
	return s.Day(ctx, "")
}

// Day returns the entries and total for date (YYYY-MM-DD). An empty date
// means today.
func (s *FoodService) Day(ctx context.Context, date string) (*model.DaySummary, error) {
	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListBetween(ctx, s.userID, day, day.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error("failed to list day", slog.String("date", day.Format(DateLayout)), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing day %s: %w", day.Format(DateLayout), err)
	}

	return &model.DaySummary{
		Date:          day.Format(DateLayout),
		Entries:       entries,
		TotalCalories: TotalCalories(entries),
	}, nil
}

// Search returns entries whose name contains q. A blank q returns nothing
// without querying the store.
func (s *FoodService) Search(ctx context.Context, q string) ([]model.FoodEntry, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []model.FoodEntry{}, nil
	}

	entries, err := s.repo.Search(ctx, s.userID, q)
	if err != nil {
		s.logger.Error("failed to search entries", slog.String("q", q), slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching entries: %w", err)
	}
	return entries, nil
}

// Range returns entries from the start of from's day through the end of to's
// day. Empty bounds default to today.
func (s *FoodService) Range(ctx context.Context, from, to string) ([]model.FoodEntry, error) {
	start, err := s.parseDay(from)
	if err != nil {
		return nil, err
	}
	end, err := s.parseDay(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, apperror.ValidationFailed("to", "End date must not be before start date.")
	}
	if end.Sub(start) > MaxRangeDays*24*time.Hour {
		return nil, apperror.ValidationFailed("to",
			fmt.Sprintf("Date range must be %d days or less.", MaxRangeDays))
	}

	entries, err := s.repo.ListBetween(ctx, s.userID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("listing range: %w", err)
	}
	return entries, nil
}

// TodayDate returns today's date in the service's location as YYYY-MM-DD.
func (s *FoodService) TodayDate() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// parseDay returns local midnight of date, or of today when date is empty.
func (s *FoodService) parseDay(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = s.TodayDate()
	}

	day, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed("date", "Date must be in YYYY-MM-DD format.")
	}
	return day, nil
}

// TotalCalories sums the calories of entries.
func TotalCalories(entries []model.FoodEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Calories
	}
	return total
}
