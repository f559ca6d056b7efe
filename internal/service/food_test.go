package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sakif/calorie-log/internal/apperror"
	"github.com/sakif/calorie-log/internal/model"
	"github.com/sakif/calorie-log/internal/nutrition"
	"github.com/sakif/calorie-log/internal/repository"
)

// =========================================================================
// MOCKS
// =========================================================================

// mockFoodRepo is an in-memory repository.FoodRepository.
type mockFoodRepo struct {
	entries   []model.FoodEntry
	nextID    int
	failWith  error
	lastFrom  time.Time
	lastTo    time.Time
	createHit int
}

var _ repository.FoodRepository = (*mockFoodRepo)(nil)

func (m *mockFoodRepo) Create(_ context.Context, entry *model.FoodEntry) error {
	m.createHit++
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	entry.ID = fmt.Sprintf("mock-%d", m.nextID)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockFoodRepo) ListBetween(_ context.Context, userID int64, from, to time.Time) ([]model.FoodEntry, error) {
	m.lastFrom, m.lastTo = from, to
	if m.failWith != nil {
		return nil, m.failWith
	}
	result := []model.FoodEntry{}
	for _, e := range m.entries {
		if e.UserID == userID && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockFoodRepo) Search(_ context.Context, userID int64, q string) ([]model.FoodEntry, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	result := []model.FoodEntry{}
	for _, e := range m.entries {
		if e.UserID == userID && strings.Contains(strings.ToLower(e.FoodName), strings.ToLower(q)) {
			result = append(result, e)
		}
	}
	return result, nil
}

// fixedEstimator returns the same calories for every food and counts calls.
type fixedEstimator struct {
	calories int
	calls    []string
}

func (f *fixedEstimator) Resolve(_ context.Context, foodName string) int {
	f.calls = append(f.calls, foodName)
	return f.calories
}

func (f *fixedEstimator) Fallback() int { return DefaultFallbackCalories }

// =========================================================================
// TEST HELPER
// =========================================================================

var testNow = time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

func newTestFoodService(t *testing.T, calories int) (*FoodService, *mockFoodRepo, *fixedEstimator) {
	t.Helper()
	repo := &mockFoodRepo{}
	est := &fixedEstimator{calories: calories}
	svc := NewFoodService(repo, est, FoodOptions{UserID: 7, Location: time.UTC}, testLogger())
	svc.now = func() time.Time { return testNow }
	return svc, repo, est
}

// =========================================================================
// ADD TESTS
// =========================================================================

func TestAdd_Success(t *testing.T) {
	svc, repo, est := newTestFoodService(t, 165)

	entry, err := svc.Add(context.Background(), "  100g chicken breast ")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if entry.ID == "" {
		t.Error("expected entry to have an ID")
	}
	if entry.FoodName != "100g chicken breast" {
		t.Errorf("FoodName = %q, want trimmed", entry.FoodName)
	}
	if entry.Calories != 165 {
		t.Errorf("Calories = %d, want 165", entry.Calories)
	}
	if entry.UserID != 7 {
		t.Errorf("UserID = %d, want configured 7", entry.UserID)
	}
	if !entry.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", entry.CreatedAt, testNow)
	}
	if len(est.calls) != 1 || est.calls[0] != "100g chicken breast" {
		t.Errorf("estimator calls = %v, want one trimmed call", est.calls)
	}
	if len(repo.entries) != 1 {
		t.Errorf("stored %d entries, want 1", len(repo.entries))
	}
}

func TestAdd_EmptyNameDoesNotWrite(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		t.Run(fmt.Sprintf("%q", name), func(t *testing.T) {
			svc, repo, est := newTestFoodService(t, 100)

			_, err := svc.Add(context.Background(), name)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Message != "Please enter a food name." {
				t.Errorf("Message = %q", appErr.Message)
			}
			if repo.createHit != 0 {
				t.Error("repository Create should not be called")
			}
			if len(est.calls) != 0 {
				t.Error("estimator should not be called")
			}
		})
	}
}

func TestAdd_NameTooLong(t *testing.T) {
	svc, repo, _ := newTestFoodService(t, 100)

	_, err := svc.Add(context.Background(), strings.Repeat("a", MaxFoodNameLength+1))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	if repo.createHit != 0 {
		t.Error("repository Create should not be called")
	}
}

func TestAdd_StoreFailure(t *testing.T) {
	svc, repo, _ := newTestFoodService(t, 100)
	dbErr := errors.New("disk full")
	repo.failWith = dbErr

	_, err := svc.Add(context.Background(), "banana")
	if !errors.Is(err, dbErr) {
		t.Errorf("error = %v, want wrapped %v", err, dbErr)
	}
	if errors.Is(err, apperror.ErrValidation) {
		t.Error("store failure must not look like a validation error")
	}
}

func TestAdd_FallbackValueIsStored(t *testing.T) {
	// The resolver returns the fallback on lookup failure; the entry is still stored.
	r := NewCalorieResolver(&fakeSearcher{err: errors.New("timeout")}, DefaultFallbackCalories, testLogger())
	repo := &mockFoodRepo{}
	svc := NewFoodService(repo, r, FoodOptions{}, testLogger())

	entry, err := svc.Add(context.Background(), "banana")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if entry.Calories != 100 {
		t.Errorf("Calories = %d, want fallback 100", entry.Calories)
	}
	if entry.UserID != DefaultUserID {
		t.Errorf("UserID = %d, want default %d", entry.UserID, DefaultUserID)
	}
}

func TestAdd_NegativeEstimateStoresFallback(t *testing.T) {
	svc, repo, _ := newTestFoodService(t, -5)

	entry, err := svc.Add(context.Background(), "mystery")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if entry.Calories != DefaultFallbackCalories {
		t.Errorf("Calories = %d, want fallback %d", entry.Calories, DefaultFallbackCalories)
	}
	if repo.entries[0].Calories != DefaultFallbackCalories {
		t.Errorf("stored Calories = %d, want fallback %d", repo.entries[0].Calories, DefaultFallbackCalories)
	}
}

func TestAdd_HugeWeightStoresFallback(t *testing.T) {
	r := NewCalorieResolver(&fakeSearcher{results: []nutrition.Candidate{
		{Description: "Butter, salted", Nutrients: kcal(717)},
	}}, DefaultFallbackCalories, testLogger())
	repo := &mockFoodRepo{}
	svc := NewFoodService(repo, r, FoodOptions{}, testLogger())

	entry, err := svc.Add(context.Background(), "9000000000000000000g butter")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if entry.Calories != DefaultFallbackCalories {
		t.Errorf("Calories = %d, want fallback %d", entry.Calories, DefaultFallbackCalories)
	}
}

// =========================================================================
// DAY TESTS
// =========================================================================

func seed(repo *mockFoodRepo, userID int64, name string, calories int, at time.Time) {
	repo.nextID++
	repo.entries = append(repo.entries, model.FoodEntry{
		ID: fmt.Sprintf("seed-%d", repo.nextID), UserID: userID, FoodName: name, Calories: calories, CreatedAt: at,
	})
}

func TestToday_TotalsMatchRows(t *testing.T) {
	svc, repo, _ := newTestFoodService(t, 0)
	seed(repo, 7, "oats", 150, testNow.Add(-4*time.Hour))
	seed(repo, 7, "banana", 89, testNow.Add(-1*time.Hour))
	seed(repo, 7, "yesterday", 999, testNow.Add(-24*time.Hour))
	seed(repo, 8, "other user", 500, testNow)

	got, err := svc.Today(context.Background())
	if err != nil {
		t.Fatalf("Today() error = %v", err)
	}

	if got.Date != "2025-03-14" {
		t.Errorf("Date = %q, want 2025-03-14", got.Date)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(got.Entries))
	}
	if got.TotalCalories != 239 {
		t.Errorf("TotalCalories = %d, want 239", got.TotalCalories)
	}
	if got.TotalCalories != TotalCalories(got.Entries) {
		t.Error("total must equal the sum over returned rows")
	}
}

func TestDay_SpecificDate(t *testing.T) {
	svc, repo, _ := newTestFoodService(t, 0)
	seed(repo, 7, "pizza", 800, time.Date(2025, 1, 2, 19, 0, 0, 0, time.UTC))

	got, err := svc.Day(context.Background(), "2025-01-02")
	if err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	if got.TotalCalories != 800 || len(got.Entries) != 1 {
		t.Errorf("Day() = %+v, want one pizza entry", got)
	}
	if !repo.lastFrom.Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v, want midnight", repo.lastFrom)
	}
	if !repo.lastTo.Equal(time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("to = %v, want next midnight", repo.lastTo)
	}
}

func TestDay_UsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	repo := &mockFoodRepo{}
	svc := NewFoodService(repo, &fixedEstimator{}, FoodOptions{Location: loc}, testLogger())

	if _, err := svc.Day(context.Background(), "2025-06-01"); err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	want := time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)
	if !repo.lastFrom.Equal(want) {
		t.Errorf("from = %v, want %v", repo.lastFrom.UTC(), want)
	}
}

func TestDay_InvalidDate(t *testing.T) {
	svc, _, _ := newTestFoodService(t, 0)

	for _, date := range []string{"14/03/2025", "2025-13-01", "yesterday"} {
		_, err := svc.Day(context.Background(), date)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Day(%q) error = %v, want ErrValidation", date, err)
		}
	}
}

func TestDay_StoreFailure(t *testing.T) {
	svc, repo, _ := newTestFoodService(t, 0)
	repo.failWith = errors.New("locked")

	if _, err := svc.Day(context.Background(), ""); err == nil {
		t.Fatal("Day() should return the store error")
	}
}

// =========================================================================
// SEARCH / RANGE TESTS
// =========================================================================

func TestSearch_BlankQuerySkipsStore(t *testing.T) {
	svc, repo, _ := newTestFoodService(t, 0)
	repo.failWith = errors.New("should not be called")

	got, err := svc.Search(context.Background(), "  ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Search() = %v, want empty", got)
	}
}

func TestSearch_Matches(t *testing.T) {
	svc, repo, _ := newTestFoodService(t, 0)
	seed(repo, 7, "Apple", 52, testNow)
	seed(repo, 7, "banana", 89, testNow)

	got, err := svc.Search(context.Background(), "app")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].FoodName != "Apple" {
		t.Errorf("Search() = %+v, want Apple", got)
	}
}

func TestRange(t *testing.T) {
	svc, repo, _ := newTestFoodService(t, 0)
	seed(repo, 7, "a", 1, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	seed(repo, 7, "b", 2, time.Date(2025, 3, 3, 23, 59, 0, 0, time.UTC))
	seed(repo, 7, "c", 4, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))

	got, err := svc.Range(context.Background(), "2025-03-01", "2025-03-03")
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Range() returned %d entries, want 2 (end day inclusive)", len(got))
	}
}

func TestRange_Validation(t *testing.T) {
	svc, _, _ := newTestFoodService(t, 0)

	tests := []struct {
		name     string
		from, to string
	}{
		{"reversed", "2025-03-05", "2025-03-01"},
		{"bad from", "March", "2025-03-01"},
		{"too long", "2020-01-01", "2025-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Range(context.Background(), tt.from, tt.to)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRange_DefaultsToToday(t *testing.T) {
	svc, repo, _ := newTestFoodService(t, 0)

	if _, err := svc.Range(context.Background(), "", ""); err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if !repo.lastFrom.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v, want today's midnight", repo.lastFrom)
	}
}
