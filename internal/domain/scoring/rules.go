package scoring

import (
	"fmt"

	"github.com/matchpulse/fantasy-scoring/internal/domain/player"
)

// Rule maps positions to point values for one category. A position absent
// from Points is not eligible for the category. PerUnit divides the counted
// quantity before awarding points (saves per point, goals conceded per
// deduction); zero means one award per triggering event.
type Rule struct {
	Points  map[player.Position]int
	PerUnit int
}

// AppearanceRule splits appearance points at the full-appearance threshold.
type AppearanceRule struct {
	PartialPoints int
	FullPoints    int
	FullMinutes   int
}

// BonusPolicy configures the per-round bonus tiers. Tied totals share a
// tier and the tier below is skipped.
type BonusPolicy struct {
	TierPoints []int
}

// RuleTable is the replaceable scoring configuration: the engine walks this
// data instead of hardcoding category branching, so a revised scoring
// system only needs a different table.
type RuleTable struct {
	Appearance        AppearanceRule
	CleanSheetMinutes int
	Rules             map[Category]Rule
	Bonus             BonusPolicy
}

func allPositionPoints(points int) map[player.Position]int {
	return map[player.Position]int{
		player.PositionGoalkeeper: points,
		player.PositionDefender:   points,
		player.PositionMidfielder: points,
		player.PositionForward:    points,
	}
}

// DefaultRuleTable returns the initial scoring system.
func DefaultRuleTable() RuleTable {
	return RuleTable{
		Appearance: AppearanceRule{
			PartialPoints: 1,
			FullPoints:    2,
			FullMinutes:   60,
		},
		CleanSheetMinutes: 60,
		Rules: map[Category]Rule{
			CategoryGoal: {
				Points: map[player.Position]int{
					player.PositionForward:    4,
					player.PositionMidfielder: 5,
					player.PositionDefender:   6,
					player.PositionGoalkeeper: 6,
				},
			},
			CategoryAssist: {
				Points: allPositionPoints(3),
			},
			CategoryCleanSheet: {
				Points: map[player.Position]int{
					player.PositionMidfielder: 1,
					player.PositionDefender:   4,
					player.PositionGoalkeeper: 4,
				},
			},
			CategorySave: {
				Points:  map[player.Position]int{player.PositionGoalkeeper: 1},
				PerUnit: 3,
			},
			CategoryPenaltySave: {
				Points: map[player.Position]int{player.PositionGoalkeeper: 5},
			},
			CategoryPenaltyMiss: {
				Points: allPositionPoints(-2),
			},
			CategoryGoalsConceded: {
				Points: map[player.Position]int{
					player.PositionDefender:   -1,
					player.PositionGoalkeeper: -1,
				},
				PerUnit: 2,
			},
			CategoryOwnGoal: {
				Points: allPositionPoints(-2),
			},
			CategoryYellowCard: {
				Points: allPositionPoints(-1),
			},
			CategoryRedCard: {
				Points: allPositionPoints(-3),
			},
		},
		Bonus: BonusPolicy{TierPoints: []int{3, 2, 1}},
	}
}

func (t RuleTable) Validate() error {
	if t.Appearance.FullMinutes <= 0 {
		return fmt.Errorf("appearance full minutes must be positive")
	}
	if t.CleanSheetMinutes <= 0 {
		return fmt.Errorf("clean sheet minutes must be positive")
	}
	for category, rule := range t.Rules {
		if len(rule.Points) == 0 {
			return fmt.Errorf("rule %s has no eligible positions", category)
		}
		if rule.PerUnit < 0 {
			return fmt.Errorf("rule %s has negative per-unit divisor", category)
		}
		for position := range rule.Points {
			if _, ok := player.AllPositions[position]; !ok {
				return fmt.Errorf("rule %s references unknown position %s", category, position)
			}
		}
	}
	for _, points := range t.Bonus.TierPoints {
		if points <= 0 {
			return fmt.Errorf("bonus tier points must be positive")
		}
	}
	return nil
}

// pointsFor resolves the point value for a category/position pair; the
// second return reports eligibility.
func (t RuleTable) pointsFor(category Category, position player.Position) (int, bool) {
	rule, ok := t.Rules[category]
	if !ok {
		return 0, false
	}
	points, eligible := rule.Points[position]
	return points, eligible
}

// unitsFor converts a raw count into awarded units for a counted category.
func (t RuleTable) unitsFor(category Category, count int) int {
	rule, ok := t.Rules[category]
	if !ok || count <= 0 {
		return 0
	}
	if rule.PerUnit <= 1 {
		return count
	}
	return count / rule.PerUnit
}

func (t RuleTable) appearancePoints(minutes int) int {
	switch {
	case minutes <= 0:
		return 0
	case minutes >= t.Appearance.FullMinutes:
		return t.Appearance.FullPoints
	default:
		return t.Appearance.PartialPoints
	}
}
