package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/mealmax/internal/battle"
	"github.com/cory-johannsen/mealmax/internal/kitchen"
)

// ErrMealNotFound is returned when a meal lookup yields no results.
var ErrMealNotFound = errors.New("meal not found")

// ErrMealDeleted is returned when the referenced meal has been soft-deleted.
var ErrMealDeleted = errors.New("meal has been deleted")

// ErrMealNameTaken is returned when creating a meal with a name already in the catalog.
var ErrMealNameTaken = errors.New("meal name already taken")

// ErrInvalidSortKey is returned for an unrecognized leaderboard sort key.
var ErrInvalidSortKey = errors.New("sort key must be 'wins' or 'win_pct'")

const mealColumns = `id, name, cuisine, price, difficulty, battles, wins, deleted, created_at, updated_at`

// MealRepository provides meal catalog persistence operations.
type MealRepository struct {
	db *pgxpool.Pool
}

// NewMealRepository creates a MealRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMealRepository(db *pgxpool.Pool) *MealRepository {
	return &MealRepository{db: db}
}

// Create inserts a new meal and returns it with ID and timestamps set.
//
// Precondition: m must pass kitchen.Meal validation.
// Postcondition: Returns the created meal with ID set, or ErrMealNameTaken on duplicate.
func (r *MealRepository) Create(ctx context.Context, m kitchen.Meal) (*kitchen.Meal, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var out kitchen.Meal
	err := r.db.QueryRow(ctx, `
		INSERT INTO meals (name, cuisine, price, difficulty)
		VALUES ($1, $2, $3, $4)
		RETURNING `+mealColumns,
		m.Name, m.Cuisine, m.Price, m.Difficulty,
	).Scan(
		&out.ID, &out.Name, &out.Cuisine, &out.Price, &out.Difficulty,
		&out.Battles, &out.Wins, &out.Deleted, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrMealNameTaken
		}
		return nil, fmt.Errorf("inserting meal: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a meal by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the meal, ErrMealNotFound, or ErrMealDeleted for
// a soft-deleted row.
func (r *MealRepository) GetByID(ctx context.Context, id int64) (*kitchen.Meal, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

// GetByName retrieves a meal by its unique name.
//
// Precondition: name must be non-empty.
// Postcondition: Returns the meal, ErrMealNotFound, or ErrMealDeleted for
// a soft-deleted row.
func (r *MealRepository) GetByName(ctx context.Context, name string) (*kitchen.Meal, error) {
	return r.getBy(ctx, `WHERE name = $1`, name)
}

func (r *MealRepository) getBy(ctx context.Context, where string, arg any) (*kitchen.Meal, error) {
	var m kitchen.Meal
	err := r.db.QueryRow(ctx, `SELECT `+mealColumns+` FROM meals `+where, arg).Scan(
		&m.ID, &m.Name, &m.Cuisine, &m.Price, &m.Difficulty,
		&m.Battles, &m.Wins, &m.Deleted, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMealNotFound
		}
		return nil, fmt.Errorf("querying meal: %w", err)
	}
	if m.Deleted {
		return nil, ErrMealDeleted
	}
	return &m, nil
}

// SoftDelete marks a meal as deleted without removing the row, preserving
// its battle history. The deleted guard is part of the UPDATE itself, so a
// concurrent delete cannot slip in between a check and the write.
//
// Precondition: id must be > 0.
// Postcondition: Returns nil on success, ErrMealNotFound for an unknown id,
// or ErrMealDeleted when the meal was already deleted.
func (r *MealRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE meals SET deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting meal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrDeleted(ctx, id)
	}
	return nil
}

// Leaderboard returns non-deleted meals that have fought at least one battle,
// ordered by the given sort key.
//
// Precondition: sortBy must be "wins" or "win_pct".
// Postcondition: Returns a slice (may be empty) with WinPct as a percentage
// rounded to one decimal, or ErrInvalidSortKey.
func (r *MealRepository) Leaderboard(ctx context.Context, sortBy string) ([]kitchen.LeaderboardEntry, error) {
	var order string
	switch sortBy {
	case "wins":
		order = "wins DESC"
	case "win_pct":
		order = "win_pct DESC"
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidSortKey, sortBy)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, cuisine, price, difficulty, battles, wins,
		       wins::float / battles AS win_pct
		FROM meals
		WHERE deleted = FALSE AND battles > 0
		ORDER BY `+order,
	)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]kitchen.LeaderboardEntry, 0)
	for rows.Next() {
		var e kitchen.LeaderboardEntry
		var winPct float64
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Cuisine, &e.Price, &e.Difficulty,
			&e.Battles, &e.Wins, &winPct,
		); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		e.WinPct = math.Round(winPct*1000) / 10
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordOutcome updates battle statistics for a meal. A win increments both
// battles and wins; a loss increments battles only. The deleted guard rides
// on the UPDATE, so stats on a concurrently deleted meal are never touched.
// Satisfies battle.Recorder.
//
// Precondition: outcome must be battle.OutcomeWin or battle.OutcomeLoss.
// Postcondition: Returns nil on success, ErrMealNotFound for an unknown id,
// or ErrMealDeleted for a soft-deleted meal.
func (r *MealRepository) RecordOutcome(ctx context.Context, mealID int64, outcome battle.Outcome) error {
	var stmt string
	switch outcome {
	case battle.OutcomeWin:
		stmt = `UPDATE meals SET battles = battles + 1, wins = wins + 1, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`
	case battle.OutcomeLoss:
		stmt = `UPDATE meals SET battles = battles + 1, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`
	default:
		return fmt.Errorf("invalid outcome: %q, must be 'win' or 'loss'", outcome)
	}

	tag, err := r.db.Exec(ctx, stmt, mealID)
	if err != nil {
		return fmt.Errorf("updating meal stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrDeleted(ctx, mealID)
	}
	return nil
}

// ClearAll removes every meal from the catalog and resets the id sequence.
// Intended for administrative resets and test isolation.
func (r *MealRepository) ClearAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `TRUNCATE meals RESTART IDENTITY`); err != nil {
		return fmt.Errorf("clearing meals: %w", err)
	}
	return nil
}

// missingOrDeleted diagnoses a zero-row guarded update: the meal is either
// absent or already soft-deleted.
func (r *MealRepository) missingOrDeleted(ctx context.Context, id int64) error {
	var deleted bool
	err := r.db.QueryRow(ctx, `SELECT deleted FROM meals WHERE id = $1`, id).Scan(&deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMealNotFound
		}
		return fmt.Errorf("querying meal: %w", err)
	}
	if deleted {
		return ErrMealDeleted
	}
	return fmt.Errorf("meal %d exists but was not updated", id)
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
