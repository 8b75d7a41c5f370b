// Package battle implements the pairwise meal battle: a staging area for
// up to two combatants, a deterministic score function, and a resolution
// algorithm that weighs score separation against an injected random draw.
package battle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mealmax/internal/kitchen"
)

// Outcome tags a battle result as reported to the stats recorder.
type Outcome string

// The two reportable outcomes.
const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// ErrCombatantsFull is returned by Prep when two combatants are already staged.
var ErrCombatantsFull = errors.New("combatant list is full, cannot add more combatants")

// ErrTwoCombatantsRequired is returned by Battle with fewer than two combatants staged.
var ErrTwoCombatantsRequired = errors.New("two combatants must be prepped for a battle")

// ErrNonPositivePrice is returned by Score for a combatant with price <= 0.
var ErrNonPositivePrice = errors.New("price must be a positive value")

// maxCombatants is the staging area capacity.
const maxCombatants = 2

// deltaScale normalizes the score separation before comparing it against
// the random draw. The value is not clamped afterward, so a very large
// score gap makes the higher-scored combatant win effectively always.
const deltaScale = 100

// Source is the randomness provider for battle resolution.
type Source interface {
	// Draw returns a fresh value in [0, 1).
	Draw(ctx context.Context) (float64, error)
}

// Recorder persists battle outcomes.
type Recorder interface {
	// RecordOutcome tags mealID with a win or a loss.
	RecordOutcome(ctx context.Context, mealID int64, outcome Outcome) error
}

// Score computes the battle score for a single combatant:
// price * cuisine length - difficulty penalty (HIGH=1, MED=2, LOW=3).
//
// Precondition: meal.Price must be strictly positive.
// Postcondition: Pure; no I/O, no mutation, deterministic given its input.
func Score(meal kitchen.Meal) (float64, error) {
	if meal.Price <= 0 {
		return 0, ErrNonPositivePrice
	}
	return meal.Price*float64(utf8.RuneCountInString(meal.Cuisine)) - meal.Difficulty.Penalty(), nil
}

// Model stages up to two combatants and resolves battles between them.
//
// A Model owns its staging area exclusively and is not safe for concurrent
// use; run concurrent battles on separate Model instances.
type Model struct {
	combatants []kitchen.Meal
	source     Source
	recorder   Recorder
	logger     *zap.Logger
}

// NewModel creates a Model with an empty staging area.
//
// Precondition: source, recorder, and logger must be non-nil.
func NewModel(source Source, recorder Recorder, logger *zap.Logger) *Model {
	return &Model{
		combatants: make([]kitchen.Meal, 0, maxCombatants),
		source:     source,
		recorder:   recorder,
		logger:     logger,
	}
}

// Prep appends a combatant to the staging area.
//
// Postcondition: Returns ErrCombatantsFull when two combatants are already
// staged; otherwise the combatant is appended and nil is returned.
func (m *Model) Prep(meal kitchen.Meal) error {
	if len(m.combatants) >= maxCombatants {
		return ErrCombatantsFull
	}
	m.combatants = append(m.combatants, meal)
	m.logger.Debug("combatant prepped",
		zap.Int64("meal_id", meal.ID),
		zap.String("meal", meal.Name),
		zap.Int("staged", len(m.combatants)),
	)
	return nil
}

// Clear empties the staging area. Idempotent; clearing an empty area is a no-op.
func (m *Model) Clear() {
	m.combatants = m.combatants[:0]
}

// Combatants returns a copy of the staging area in staging order.
//
// Postcondition: Returns an empty slice, never nil, when nothing is staged.
func (m *Model) Combatants() []kitchen.Meal {
	out := make([]kitchen.Meal, len(m.combatants))
	copy(out, m.combatants)
	return out
}

// Battle resolves a battle between the two staged combatants and returns
// the winner's name.
//
// The combatant staged first wins exactly when (scoreA > scoreB) matches
// (delta >= r), where delta = |scoreA - scoreB| / 100 and r is a fresh
// draw from the Source. Small score gaps therefore leave room for upsets,
// with upset probability shrinking as the gap grows.
//
// Precondition: Exactly two combatants must be staged.
// Postcondition: On success the loser is removed and only the winner
// remains staged. If scoring, the random draw, or outcome recording fails,
// the staging area is left unmodified so the caller can retry or clear.
func (m *Model) Battle(ctx context.Context) (string, error) {
	if len(m.combatants) < maxCombatants {
		return "", ErrTwoCombatantsRequired
	}

	first, second := m.combatants[0], m.combatants[1]

	scoreA, err := Score(first)
	if err != nil {
		return "", fmt.Errorf("scoring %s: %w", first.Name, err)
	}
	scoreB, err := Score(second)
	if err != nil {
		return "", fmt.Errorf("scoring %s: %w", second.Name, err)
	}

	delta := math.Abs(scoreA-scoreB) / deltaScale

	draw, err := m.source.Draw(ctx)
	if err != nil {
		return "", fmt.Errorf("drawing random value: %w", err)
	}

	firstWins := (scoreA > scoreB) == (delta >= draw)
	winner, loser := first, second
	if !firstWins {
		winner, loser = second, first
	}

	m.logger.Info("battle resolved",
		zap.String("first", first.Name),
		zap.String("second", second.Name),
		zap.Float64("score_first", scoreA),
		zap.Float64("score_second", scoreB),
		zap.Float64("delta", delta),
		zap.Float64("draw", draw),
		zap.String("winner", winner.Name),
	)

	if err := m.recorder.RecordOutcome(ctx, winner.ID, OutcomeWin); err != nil {
		return "", fmt.Errorf("recording win for meal %d: %w", winner.ID, err)
	}
	if err := m.recorder.RecordOutcome(ctx, loser.ID, OutcomeLoss); err != nil {
		return "", fmt.Errorf("recording loss for meal %d: %w", loser.ID, err)
	}

	m.combatants = m.combatants[:0]
	m.combatants = append(m.combatants, winner)

	return winner.Name, nil
}
