package scoring

import (
	"fmt"
	"sort"

	"github.com/matchpulse/fantasy-scoring/internal/domain/match"
	"github.com/matchpulse/fantasy-scoring/internal/domain/player"
)

// ScoreMatch applies the rule table to a normalized match and its appearance
// data, producing the per-player line items. It is a pure function: the same
// inputs always yield byte-identical output, ordered by (player, category,
// source event sequence). Players with zero minutes emit nothing.
func ScoreMatch(m match.Match, appearances map[string]match.Appearance, table RuleTable) ([]PointLineItem, error) {
	playerIDs := make([]string, 0, len(m.Lineups))
	for _, entry := range m.Lineups {
		if _, ok := player.AllPositions[entry.Position]; !ok {
			return nil, fmt.Errorf("%w: player %s has position %q", match.ErrUnknownPosition, entry.PlayerID, entry.Position)
		}
		playerIDs = append(playerIDs, entry.PlayerID)
	}
	sort.Strings(playerIDs)

	redCarded := redCardIncidents(m)
	savesByKeeper := make(map[string]int, len(m.Saves))
	for _, save := range m.Saves {
		savesByKeeper[save.KeeperID] = save.Count
	}

	items := make([]PointLineItem, 0, len(playerIDs)*2)
	for _, playerID := range playerIDs {
		appearance := appearances[playerID]
		if appearance.Minutes <= 0 {
			continue
		}

		emit := func(category Category, points int, sourceRef string) {
			items = append(items, PointLineItem{
				MatchID:   m.ID,
				Round:     m.Round,
				PlayerID:  playerID,
				TeamID:    appearance.TeamID,
				Category:  category,
				Points:    points,
				SourceRef: sourceRef,
			})
		}

		position := appearance.Position
		conceded := m.Conceded(appearance.TeamID)

		if points := table.appearancePoints(appearance.Minutes); points != 0 {
			emit(CategoryAppearance, points, fmt.Sprintf("minutes:%d", appearance.Minutes))
		}

		for _, event := range m.Timeline {
			if event.Kind != match.EventGoal {
				continue
			}
			goal := event.Goal
			if goal.ScorerID != playerID || goal.OwnGoal || !goal.Scored() {
				continue
			}
			if points, ok := table.pointsFor(CategoryGoal, position); ok {
				emit(CategoryGoal, points, eventRef(event))
			}
		}

		for _, event := range m.Timeline {
			if event.Kind != match.EventGoal {
				continue
			}
			goal := event.Goal
			if goal.AssistID != playerID || goal.OwnGoal || !goal.Scored() {
				continue
			}
			if points, ok := table.pointsFor(CategoryAssist, position); ok {
				emit(CategoryAssist, points, eventRef(event))
			}
		}

		if conceded == 0 && appearance.Minutes >= table.CleanSheetMinutes {
			if points, ok := table.pointsFor(CategoryCleanSheet, position); ok {
				emit(CategoryCleanSheet, points, "clean-sheet")
			}
		}

		if units := table.unitsFor(CategorySave, savesByKeeper[playerID]); units > 0 {
			if points, ok := table.pointsFor(CategorySave, position); ok {
				emit(CategorySave, points*units, fmt.Sprintf("saves:%d", savesByKeeper[playerID]))
			}
		}

		for _, event := range m.Timeline {
			if event.Kind != match.EventGoal {
				continue
			}
			goal := event.Goal
			if !goal.Penalty || goal.Outcome != match.PenaltySaved {
				continue
			}
			if savingKeeper(m, appearances, *goal) != playerID {
				continue
			}
			if points, ok := table.pointsFor(CategoryPenaltySave, position); ok {
				emit(CategoryPenaltySave, points, eventRef(event))
			}
		}

		for _, event := range m.Timeline {
			if event.Kind != match.EventGoal {
				continue
			}
			goal := event.Goal
			if goal.ScorerID != playerID || !goal.Penalty || goal.Scored() {
				continue
			}
			if points, ok := table.pointsFor(CategoryPenaltyMiss, position); ok {
				emit(CategoryPenaltyMiss, points, eventRef(event))
			}
		}

		if units := table.unitsFor(CategoryGoalsConceded, conceded); units > 0 {
			if points, ok := table.pointsFor(CategoryGoalsConceded, position); ok {
				emit(CategoryGoalsConceded, points*units, fmt.Sprintf("conceded:%d", conceded))
			}
		}

		for _, event := range m.Timeline {
			if event.Kind != match.EventGoal {
				continue
			}
			goal := event.Goal
			if goal.ScorerID != playerID || !goal.OwnGoal || !goal.Scored() {
				continue
			}
			if points, ok := table.pointsFor(CategoryOwnGoal, position); ok {
				emit(CategoryOwnGoal, points, eventRef(event))
			}
		}

		for _, event := range m.Timeline {
			if event.Kind != match.EventCard || event.Card.PlayerID != playerID {
				continue
			}
			card := event.Card
			switch card.Kind {
			case match.CardYellow:
				// A red in the same minute supersedes the yellow for the
				// same incident: the yellow is not counted separately.
				if _, superseded := redCarded[incidentKey(playerID, card.Minute)]; superseded {
					continue
				}
				if points, ok := table.pointsFor(CategoryYellowCard, position); ok {
					emit(CategoryYellowCard, points, eventRef(event))
				}
			case match.CardRed:
				if points, ok := table.pointsFor(CategoryRedCard, position); ok {
					emit(CategoryRedCard, points, eventRef(event))
				}
			}
		}
	}

	return items, nil
}

// SumPoints totals a slice of line items per player.
func SumPoints(items []PointLineItem) map[string]int {
	out := make(map[string]int)
	for _, item := range items {
		out[item.PlayerID] += item.Points
	}
	return out
}

func eventRef(event match.Event) string {
	return fmt.Sprintf("event:%d", event.Seq)
}

func incidentKey(playerID string, minute int) string {
	return fmt.Sprintf("%s:%d", playerID, minute)
}

func redCardIncidents(m match.Match) map[string]struct{} {
	out := make(map[string]struct{})
	for _, event := range m.Timeline {
		if event.Kind == match.EventCard && event.Card.Kind == match.CardRed {
			out[incidentKey(event.Card.PlayerID, event.Card.Minute)] = struct{}{}
		}
	}
	return out
}

// savingKeeper resolves which goalkeeper of the defending side faced a saved
// penalty: the keeper on the pitch at the event minute, preferring the
// earlier stint and then the lower player id when a substitution lands on
// the same minute.
func savingKeeper(m match.Match, appearances map[string]match.Appearance, goal match.GoalEvent) string {
	defendingTeam := m.OpponentOf(goal.TeamID)

	bestID := ""
	bestFrom := 0
	for _, entry := range m.Lineups {
		if entry.TeamID != defendingTeam || entry.Position != player.PositionGoalkeeper {
			continue
		}
		appearance := appearances[entry.PlayerID]
		if !appearance.OnPitchAt(goal.Minute) {
			continue
		}
		if bestID == "" ||
			appearance.From < bestFrom ||
			(appearance.From == bestFrom && entry.PlayerID < bestID) {
			bestID = entry.PlayerID
			bestFrom = appearance.From
		}
	}
	return bestID
}
