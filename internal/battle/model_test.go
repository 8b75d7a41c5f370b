package battle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mealmax/internal/battle"
	"github.com/cory-johannsen/mealmax/internal/kitchen"
)

// fixedSource returns a predetermined value on every draw.
type fixedSource struct {
	value float64
	err   error
	draws int
}

func (f *fixedSource) Draw(context.Context) (float64, error) {
	f.draws++
	if f.err != nil {
		return 0, f.err
	}
	return f.value, nil
}

// recordedOutcome captures a single RecordOutcome call.
type recordedOutcome struct {
	mealID  int64
	outcome battle.Outcome
}

// fakeRecorder captures outcome reports and optionally fails.
type fakeRecorder struct {
	calls []recordedOutcome
	err   error
}

func (f *fakeRecorder) RecordOutcome(_ context.Context, mealID int64, outcome battle.Outcome) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, recordedOutcome{mealID: mealID, outcome: outcome})
	return nil
}

func newTestModel(t *testing.T, src battle.Source, rec battle.Recorder) *battle.Model {
	t.Helper()
	return battle.NewModel(src, rec, zaptest.NewLogger(t))
}

func italianMeal() kitchen.Meal {
	return kitchen.Meal{ID: 1, Name: "Meal 1", Cuisine: "Italian", Price: 15.0, Difficulty: kitchen.DifficultyMed}
}

func mexicanMeal() kitchen.Meal {
	return kitchen.Meal{ID: 2, Name: "Meal 2", Cuisine: "Mexican", Price: 12.0, Difficulty: kitchen.DifficultyLow}
}

func TestPrep_Single(t *testing.T) {
	m := newTestModel(t, &fixedSource{}, &fakeRecorder{})
	require.NoError(t, m.Prep(italianMeal()))

	staged := m.Combatants()
	require.Len(t, staged, 1)
	assert.Equal(t, "Meal 1", staged[0].Name)
}

func TestPrep_TwoInStagingOrder(t *testing.T) {
	m := newTestModel(t, &fixedSource{}, &fakeRecorder{})
	require.NoError(t, m.Prep(italianMeal()))
	require.NoError(t, m.Prep(mexicanMeal()))

	staged := m.Combatants()
	require.Len(t, staged, 2)
	assert.Equal(t, "Meal 1", staged[0].Name)
	assert.Equal(t, "Meal 2", staged[1].Name)
}

func TestPrep_FullList(t *testing.T) {
	m := newTestModel(t, &fixedSource{}, &fakeRecorder{})
	require.NoError(t, m.Prep(italianMeal()))
	require.NoError(t, m.Prep(mexicanMeal()))

	err := m.Prep(italianMeal())
	assert.ErrorIs(t, err, battle.ErrCombatantsFull)
	assert.Len(t, m.Combatants(), 2, "failed prep must not grow the staging area")
}

func TestClear(t *testing.T) {
	m := newTestModel(t, &fixedSource{}, &fakeRecorder{})
	require.NoError(t, m.Prep(italianMeal()))
	require.NoError(t, m.Prep(mexicanMeal()))

	m.Clear()
	assert.Empty(t, m.Combatants())
}

func TestClear_EmptyIsNoOp(t *testing.T) {
	m := newTestModel(t, &fixedSource{}, &fakeRecorder{})
	m.Clear()
	assert.Empty(t, m.Combatants())
}

func TestCombatants_EmptyReturnsEmptySlice(t *testing.T) {
	m := newTestModel(t, &fixedSource{}, &fakeRecorder{})
	staged := m.Combatants()
	assert.NotNil(t, staged)
	assert.Empty(t, staged)
}

func TestCombatants_ReturnsCopy(t *testing.T) {
	m := newTestModel(t, &fixedSource{}, &fakeRecorder{})
	require.NoError(t, m.Prep(italianMeal()))

	staged := m.Combatants()
	staged[0].Name = "mutated"

	assert.Equal(t, "Meal 1", m.Combatants()[0].Name, "mutating the returned slice must not affect staging")
}

func TestScore_Formula(t *testing.T) {
	tests := []struct {
		name string
		meal kitchen.Meal
		want float64
	}{
		{
			name: "high difficulty",
			meal: kitchen.Meal{Cuisine: "French", Price: 30.0, Difficulty: kitchen.DifficultyHigh},
			want: 30.0*6 - 1,
		},
		{
			name: "med difficulty",
			meal: kitchen.Meal{Cuisine: "Italian", Price: 15.0, Difficulty: kitchen.DifficultyMed},
			want: 15.0*7 - 2,
		},
		{
			name: "low difficulty",
			meal: kitchen.Meal{Cuisine: "Chinese", Price: 8.0, Difficulty: kitchen.DifficultyLow},
			want: 8.0*7 - 3,
		},
		{
			name: "high price",
			meal: kitchen.Meal{Cuisine: "Japanese", Price: 100.0, Difficulty: kitchen.DifficultyMed},
			want: 100.0*8 - 2,
		},
		{
			name: "long cuisine",
			meal: kitchen.Meal{Cuisine: "VeryLongCuisineType", Price: 10.0, Difficulty: kitchen.DifficultyLow},
			want: 10.0*19 - 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := battle.Score(tt.meal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_ZeroPrice(t *testing.T) {
	meal := kitchen.Meal{Cuisine: "American", Price: 0, Difficulty: kitchen.DifficultyMed}
	_, err := battle.Score(meal)
	assert.ErrorIs(t, err, battle.ErrNonPositivePrice)
}

func TestScore_NegativePrice(t *testing.T) {
	meal := kitchen.Meal{Cuisine: "Thai", Price: -10.0, Difficulty: kitchen.DifficultyHigh}
	_, err := battle.Score(meal)
	assert.ErrorIs(t, err, battle.ErrNonPositivePrice)
}

// Property: for all positive prices and non-empty cuisines, the score follows
// price * cuisine length - penalty, with penalty HIGH=1, MED=2, LOW=3.
func TestScore_Property(t *testing.T) {
	penalties := map[kitchen.Difficulty]float64{
		kitchen.DifficultyHigh: 1,
		kitchen.DifficultyMed:  2,
		kitchen.DifficultyLow:  3,
	}
	difficulties := []kitchen.Difficulty{kitchen.DifficultyLow, kitchen.DifficultyMed, kitchen.DifficultyHigh}

	rapid.Check(t, func(rt *rapid.T) {
		price := rapid.Float64Range(0.01, 10000).Draw(rt, "price")
		cuisine := rapid.StringMatching(`[A-Za-z]{1,30}`).Draw(rt, "cuisine")
		difficulty := rapid.SampledFrom(difficulties).Draw(rt, "difficulty")

		meal := kitchen.Meal{Cuisine: cuisine, Price: price, Difficulty: difficulty}
		got, err := battle.Score(meal)
		if err != nil {
			rt.Fatalf("Score failed: %v", err)
		}

		want := price*float64(len(cuisine)) - penalties[difficulty]
		assert.InDelta(rt, want, got, 1e-9)
	})
}

// Property: Score never succeeds for price <= 0, regardless of other fields.
func TestScore_NonPositivePrice_Property(t *testing.T) {
	difficulties := []kitchen.Difficulty{kitchen.DifficultyLow, kitchen.DifficultyMed, kitchen.DifficultyHigh}

	rapid.Check(t, func(rt *rapid.T) {
		price := rapid.Float64Range(-10000, 0).Draw(rt, "price")
		cuisine := rapid.StringMatching(`[A-Za-z]{1,30}`).Draw(rt, "cuisine")
		difficulty := rapid.SampledFrom(difficulties).Draw(rt, "difficulty")

		meal := kitchen.Meal{Cuisine: cuisine, Price: price, Difficulty: difficulty}
		_, err := battle.Score(meal)
		if !errors.Is(err, battle.ErrNonPositivePrice) {
			rt.Fatalf("Score(price=%v) = %v, want ErrNonPositivePrice", price, err)
		}
	})
}

func TestBattle_NoCombatants(t *testing.T) {
	m := newTestModel(t, &fixedSource{}, &fakeRecorder{})
	_, err := m.Battle(context.Background())
	assert.ErrorIs(t, err, battle.ErrTwoCombatantsRequired)
}

func TestBattle_OneCombatant(t *testing.T) {
	m := newTestModel(t, &fixedSource{}, &fakeRecorder{})
	require.NoError(t, m.Prep(italianMeal()))

	_, err := m.Battle(context.Background())
	assert.ErrorIs(t, err, battle.ErrTwoCombatantsRequired)
	assert.Len(t, m.Combatants(), 1, "failed battle must leave staging unchanged")
}

// TestBattle_UpsetWin exercises the worked example: scores 103 vs 81 give
// delta 0.22; a draw of 0.5 exceeds delta, so the outcome flips and the
// lower-scored second combatant wins.
func TestBattle_UpsetWin(t *testing.T) {
	src := &fixedSource{value: 0.5}
	rec := &fakeRecorder{}
	m := newTestModel(t, src, rec)
	require.NoError(t, m.Prep(italianMeal()))
	require.NoError(t, m.Prep(mexicanMeal()))

	winner, err := m.Battle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Meal 2", winner)

	require.Len(t, rec.calls, 2)
	assert.Equal(t, recordedOutcome{mealID: 2, outcome: battle.OutcomeWin}, rec.calls[0])
	assert.Equal(t, recordedOutcome{mealID: 1, outcome: battle.OutcomeLoss}, rec.calls[1])

	staged := m.Combatants()
	require.Len(t, staged, 1)
	assert.Equal(t, "Meal 2", staged[0].Name)
}

// TestBattle_FavoriteWins: with a draw of 0.1 below delta 0.22, the
// higher-scored first combatant wins.
func TestBattle_FavoriteWins(t *testing.T) {
	src := &fixedSource{value: 0.1}
	rec := &fakeRecorder{}
	m := newTestModel(t, src, rec)
	require.NoError(t, m.Prep(italianMeal()))
	require.NoError(t, m.Prep(mexicanMeal()))

	winner, err := m.Battle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Meal 1", winner)

	require.Len(t, rec.calls, 2)
	assert.Equal(t, recordedOutcome{mealID: 1, outcome: battle.OutcomeWin}, rec.calls[0])
	assert.Equal(t, recordedOutcome{mealID: 2, outcome: battle.OutcomeLoss}, rec.calls[1])

	staged := m.Combatants()
	require.Len(t, staged, 1)
	assert.Equal(t, "Meal 1", staged[0].Name)
}

// TestBattle_DeltaEqualsDraw: when the draw exactly equals delta, the
// comparison delta >= r holds and the higher score prevails.
func TestBattle_DeltaEqualsDraw(t *testing.T) {
	src := &fixedSource{value: 0.22}
	m := newTestModel(t, src, &fakeRecorder{})
	require.NoError(t, m.Prep(italianMeal()))
	require.NoError(t, m.Prep(mexicanMeal()))

	winner, err := m.Battle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Meal 1", winner)
}

// TestBattle_Tie: equal scores with a nonzero draw favor the first combatant;
// a draw of exactly zero flips to the second.
func TestBattle_Tie(t *testing.T) {
	mealA := kitchen.Meal{ID: 10, Name: "Twin A", Cuisine: "Italian", Price: 15.0, Difficulty: kitchen.DifficultyMed}
	mealB := kitchen.Meal{ID: 11, Name: "Twin B", Cuisine: "Mexican", Price: 15.0, Difficulty: kitchen.DifficultyMed}

	t.Run("nonzero draw favors first", func(t *testing.T) {
		m := newTestModel(t, &fixedSource{value: 0.37}, &fakeRecorder{})
		require.NoError(t, m.Prep(mealA))
		require.NoError(t, m.Prep(mealB))

		winner, err := m.Battle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Twin A", winner)
	})

	t.Run("zero draw favors second", func(t *testing.T) {
		m := newTestModel(t, &fixedSource{value: 0}, &fakeRecorder{})
		require.NoError(t, m.Prep(mealA))
		require.NoError(t, m.Prep(mealB))

		winner, err := m.Battle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Twin B", winner)
	})
}

func TestBattle_NegativePrice_NoSideEffects(t *testing.T) {
	src := &fixedSource{value: 0.5}
	rec := &fakeRecorder{}
	m := newTestModel(t, src, rec)

	bad := kitchen.Meal{ID: 8, Name: "Discount Meal", Cuisine: "Thai", Price: -10.0, Difficulty: kitchen.DifficultyHigh}
	require.NoError(t, m.Prep(bad))
	require.NoError(t, m.Prep(mexicanMeal()))

	_, err := m.Battle(context.Background())
	assert.ErrorIs(t, err, battle.ErrNonPositivePrice)

	assert.Zero(t, src.draws, "no random draw may occur when scoring fails")
	assert.Empty(t, rec.calls, "no outcome may be recorded when scoring fails")
	assert.Len(t, m.Combatants(), 2, "staging must be unchanged after a failed battle")
}

func TestBattle_SourceFailurePropagates(t *testing.T) {
	srcErr := errors.New("random service unavailable")
	rec := &fakeRecorder{}
	m := newTestModel(t, &fixedSource{err: srcErr}, rec)
	require.NoError(t, m.Prep(italianMeal()))
	require.NoError(t, m.Prep(mexicanMeal()))

	_, err := m.Battle(context.Background())
	assert.ErrorIs(t, err, srcErr)
	assert.Empty(t, rec.calls)
	assert.Len(t, m.Combatants(), 2, "staging must be unchanged after a failed battle")
}

func TestBattle_RecorderFailureLeavesStaging(t *testing.T) {
	recErr := errors.New("meal has been deleted")
	rec := &fakeRecorder{err: recErr}
	m := newTestModel(t, &fixedSource{value: 0.1}, rec)
	require.NoError(t, m.Prep(italianMeal()))
	require.NoError(t, m.Prep(mexicanMeal()))

	_, err := m.Battle(context.Background())
	assert.ErrorIs(t, err, recErr)
	assert.Len(t, m.Combatants(), 2, "loser must not be pruned when recording fails")
}

// Property: a successful battle always leaves exactly the winner staged,
// reports one win and one loss, and the winner is one of the two combatants.
func TestBattle_Property(t *testing.T) {
	difficulties := []kitchen.Difficulty{kitchen.DifficultyLow, kitchen.DifficultyMed, kitchen.DifficultyHigh}

	rapid.Check(t, func(rt *rapid.T) {
		mealA := kitchen.Meal{
			ID:         1,
			Name:       "A",
			Cuisine:    rapid.StringMatching(`[A-Za-z]{3,15}`).Draw(rt, "cuisineA"),
			Price:      rapid.Float64Range(0.01, 500).Draw(rt, "priceA"),
			Difficulty: rapid.SampledFrom(difficulties).Draw(rt, "difficultyA"),
		}
		mealB := kitchen.Meal{
			ID:         2,
			Name:       "B",
			Cuisine:    rapid.StringMatching(`[A-Za-z]{3,15}`).Draw(rt, "cuisineB"),
			Price:      rapid.Float64Range(0.01, 500).Draw(rt, "priceB"),
			Difficulty: rapid.SampledFrom(difficulties).Draw(rt, "difficultyB"),
		}
		draw := rapid.Float64Range(0, 0.99).Draw(rt, "draw")

		rec := &fakeRecorder{}
		m := battle.NewModel(&fixedSource{value: draw}, rec, zaptest.NewLogger(t))
		if err := m.Prep(mealA); err != nil {
			rt.Fatalf("prep A: %v", err)
		}
		if err := m.Prep(mealB); err != nil {
			rt.Fatalf("prep B: %v", err)
		}

		winner, err := m.Battle(context.Background())
		if err != nil {
			rt.Fatalf("battle: %v", err)
		}

		if winner != "A" && winner != "B" {
			rt.Fatalf("winner %q is not a staged combatant", winner)
		}

		staged := m.Combatants()
		if len(staged) != 1 || staged[0].Name != winner {
			rt.Fatalf("staging after battle = %v, want exactly the winner %q", staged, winner)
		}

		if len(rec.calls) != 2 {
			rt.Fatalf("recorded %d outcomes, want 2", len(rec.calls))
		}
		if rec.calls[0].outcome != battle.OutcomeWin || rec.calls[1].outcome != battle.OutcomeLoss {
			rt.Fatalf("outcomes recorded in wrong order: %v", rec.calls)
		}
		if rec.calls[0].mealID == rec.calls[1].mealID {
			rt.Fatalf("win and loss recorded for the same meal id %d", rec.calls[0].mealID)
		}
	})
}

// TestBattle_WinnerCanFightAgain verifies the post-battle state machine:
// the winner remains staged, a new challenger can be prepped, and a second
// battle runs.
func TestBattle_WinnerCanFightAgain(t *testing.T) {
	src := &fixedSource{value: 0.1}
	rec := &fakeRecorder{}
	m := newTestModel(t, src, rec)
	require.NoError(t, m.Prep(italianMeal()))
	require.NoError(t, m.Prep(mexicanMeal()))

	first, err := m.Battle(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Meal 1", first)

	challenger := kitchen.Meal{ID: 3, Name: "Meal 3", Cuisine: "French", Price: 30.0, Difficulty: kitchen.DifficultyHigh}
	require.NoError(t, m.Prep(challenger))

	second, err := m.Battle(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []string{"Meal 1", "Meal 3"}, second)
	assert.Len(t, rec.calls, 4)
}
