package scoring

import (
	"testing"

	"github.com/matchpulse/fantasy-scoring/internal/domain/player"
)

func TestDefaultRuleTable_Valid(t *testing.T) {
	if err := DefaultRuleTable().Validate(); err != nil {
		t.Fatalf("default table must validate: %v", err)
	}
}

func TestRuleTable_ValidateRejectsBadTables(t *testing.T) {
	table := DefaultRuleTable()
	table.Appearance.FullMinutes = 0
	if err := table.Validate(); err == nil {
		t.Fatalf("expected error for zero full-appearance minutes")
	}

	table = DefaultRuleTable()
	table.Rules[CategoryGoal] = Rule{}
	if err := table.Validate(); err == nil {
		t.Fatalf("expected error for rule without eligible positions")
	}

	table = DefaultRuleTable()
	table.Rules[CategorySave] = Rule{
		Points:  map[player.Position]int{player.PositionGoalkeeper: 1},
		PerUnit: -1,
	}
	if err := table.Validate(); err == nil {
		t.Fatalf("expected error for negative per-unit divisor")
	}

	table = DefaultRuleTable()
	table.Rules[CategoryGoal] = Rule{Points: map[player.Position]int{"STRIKER": 4}}
	if err := table.Validate(); err == nil {
		t.Fatalf("expected error for unknown position")
	}

	table = DefaultRuleTable()
	table.Bonus.TierPoints = []int{3, 0}
	if err := table.Validate(); err == nil {
		t.Fatalf("expected error for non-positive bonus tier")
	}
}

func TestAppearancePoints_Thresholds(t *testing.T) {
	table := DefaultRuleTable()

	cases := []struct {
		minutes int
		want    int
	}{
		{0, 0},
		{1, 1},
		{59, 1},
		{60, 2},
		{90, 2},
	}
	for _, tc := range cases {
		if got := table.appearancePoints(tc.minutes); got != tc.want {
			t.Fatalf("appearancePoints(%d) = %d, want %d", tc.minutes, got, tc.want)
		}
	}
}

func TestUnitsFor_CountedCategories(t *testing.T) {
	table := DefaultRuleTable()

	cases := []struct {
		category Category
		count    int
		want     int
	}{
		{CategorySave, 2, 0},
		{CategorySave, 3, 1},
		{CategorySave, 7, 2},
		{CategoryGoalsConceded, 1, 0},
		{CategoryGoalsConceded, 2, 1},
		{CategoryGoalsConceded, 5, 2},
		{CategoryGoal, 2, 2},
		{CategorySave, 0, 0},
	}
	for _, tc := range cases {
		if got := table.unitsFor(tc.category, tc.count); got != tc.want {
			t.Fatalf("unitsFor(%s, %d) = %d, want %d", tc.category, tc.count, got, tc.want)
		}
	}
}

func TestPointsFor_Eligibility(t *testing.T) {
	table := DefaultRuleTable()

	if points, ok := table.pointsFor(CategoryGoal, player.PositionForward); !ok || points != 4 {
		t.Fatalf("forward goal: got=(%d,%t) want=(4,true)", points, ok)
	}
	if points, ok := table.pointsFor(CategoryGoal, player.PositionDefender); !ok || points != 6 {
		t.Fatalf("defender goal: got=(%d,%t) want=(6,true)", points, ok)
	}
	if _, ok := table.pointsFor(CategoryCleanSheet, player.PositionForward); ok {
		t.Fatalf("forwards are not eligible for clean sheets")
	}
	if _, ok := table.pointsFor(CategorySave, player.PositionMidfielder); ok {
		t.Fatalf("outfield players are not eligible for save points")
	}
}
