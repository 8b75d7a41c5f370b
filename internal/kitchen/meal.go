// Package kitchen defines the meal catalog domain model shared by the
// battle engine, the storage layer, and the HTTP API.
package kitchen

import (
	"fmt"
	"time"
)

// Difficulty is the preparation difficulty of a meal.
type Difficulty string

// The three recognized difficulty levels.
const (
	DifficultyLow  Difficulty = "LOW"
	DifficultyMed  Difficulty = "MED"
	DifficultyHigh Difficulty = "HIGH"
)

// ParseDifficulty validates and normalizes a difficulty string.
//
// Postcondition: Returns one of the three Difficulty constants or a non-nil error.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyLow, DifficultyMed, DifficultyHigh:
		return Difficulty(s), nil
	default:
		return "", fmt.Errorf("invalid difficulty level: %s, must be 'LOW', 'MED', or 'HIGH'", s)
	}
}

// Valid reports whether d is one of the three recognized levels.
func (d Difficulty) Valid() bool {
	return d == DifficultyLow || d == DifficultyMed || d == DifficultyHigh
}

// Penalty returns the battle score penalty for the difficulty.
// Harder meals carry a smaller penalty, so a higher net score.
//
// Precondition: d must be a valid Difficulty.
// Postcondition: Returns 1 for HIGH, 2 for MED, 3 for LOW.
func (d Difficulty) Penalty() float64 {
	switch d {
	case DifficultyHigh:
		return 1
	case DifficultyMed:
		return 2
	default:
		return 3
	}
}

// Meal is a catalog entry. Battles read Name, Cuisine, Price, and Difficulty;
// Battles and Wins are maintained by the storage layer.
type Meal struct {
	ID         int64
	Name       string
	Cuisine    string
	Price      float64
	Difficulty Difficulty
	Battles    int
	Wins       int
	Deleted    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the catalog invariants for a new meal.
//
// Postcondition: Returns nil only if Name and Cuisine are non-empty,
// Price is strictly positive, and Difficulty is a recognized level.
func (m Meal) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("meal name must not be empty")
	}
	if m.Cuisine == "" {
		return fmt.Errorf("meal cuisine must not be empty")
	}
	if m.Price <= 0 {
		return fmt.Errorf("invalid price: %v, price must be a positive number", m.Price)
	}
	if !m.Difficulty.Valid() {
		return fmt.Errorf("invalid difficulty level: %s, must be 'LOW', 'MED', or 'HIGH'", m.Difficulty)
	}
	return nil
}

// LeaderboardEntry is a meal with battle statistics as exposed on the
// leaderboard. WinPct is a percentage rounded to one decimal place.
type LeaderboardEntry struct {
	ID         int64      `json:"id"`
	Name       string     `json:"meal"`
	Cuisine    string     `json:"cuisine"`
	Price      float64    `json:"price"`
	Difficulty Difficulty `json:"difficulty"`
	Battles    int        `json:"battles"`
	Wins       int        `json:"wins"`
	WinPct     float64    `json:"win_pct"`
}
