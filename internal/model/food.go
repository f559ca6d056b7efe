// Package model defines the data structures used throughout the application.
package model

import "time"

// FoodEntry is one logged food. Entries are created from the add form and never
// modified afterwards.
//
// Calories is always a non-negative whole number: either the value resolved
// from the nutrition database, scaled by weight, or the fallback estimate.
type FoodEntry struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	FoodName  string    `json:"foodName"`
	Calories  int       `json:"calories"`
	CreatedAt time.Time `json:"createdAt"`
}

// DaySummary groups the entries of one calendar day with their total.
type DaySummary struct {
	Date          string      `json:"date"` // YYYY-MM-DD
	Entries       []FoodEntry `json:"entries"`
	TotalCalories int         `json:"totalCalories"`
}
