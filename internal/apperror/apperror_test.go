package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("food_name", "Please enter a food name."),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Upstream wraps ErrUpstream",
			err:       Upstream("usda", 503),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "wrapped Upstream still matches",
			err:       fmt.Errorf("usda: searching foods: %w", Upstream("usda", 403)),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "Upstream does NOT match ErrValidation",
			err:       Upstream("usda", 500),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "ValidationFailed does NOT match ErrUpstream",
			err:       ValidationFailed("date", "bad date"),
			target:    ErrUpstream,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("food_name", "Please enter a food name."),
			wantMessage: "Please enter a food name.",
		},
		{
			name:        "Upstream message includes service and status",
			err:         Upstream("usda", 429),
			wantMessage: "usda responded with status 429",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := Upstream("usda", 500)
	if unwrapped := err.Unwrap(); unwrapped != ErrUpstream {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrUpstream)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("date", "date must be YYYY-MM-DD")

	if err.Field != "date" {
		t.Errorf("Field = %q, want %q", err.Field, "date")
	}
}
