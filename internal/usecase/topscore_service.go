package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/iter"

	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
)

// TopScoreService derives the season scorer listing from stored line items.
type TopScoreService struct {
	repo scoring.Repository
}

func NewTopScoreService(repo scoring.Repository) *TopScoreService {
	return &TopScoreService{repo: repo}
}

// ListTopScorers aggregates goal line items across every round; rounds load
// concurrently since they are independent. Limit <= 0 returns all scorers.
func (s *TopScoreService) ListTopScorers(ctx context.Context, limit int) ([]scoring.TopScorer, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TopScoreService.ListTopScorers")
	defer span.End()

	rounds, err := s.repo.ListRounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	if len(rounds) == 0 {
		return []scoring.TopScorer{}, nil
	}

	itemsByRound, err := iter.MapErr(rounds, func(round *string) ([]scoring.PointLineItem, error) {
		items, listErr := s.repo.ListLineItemsByRound(ctx, *round)
		if listErr != nil {
			return nil, fmt.Errorf("list line items for round %s: %w", *round, listErr)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	goalsByPlayer := make(map[string]int)
	teamByPlayer := make(map[string]string)
	for _, items := range itemsByRound {
		for _, item := range items {
			if item.Category != scoring.CategoryGoal {
				continue
			}
			goalsByPlayer[item.PlayerID]++
			teamByPlayer[item.PlayerID] = item.TeamID
		}
	}

	scorers := make([]scoring.TopScorer, 0, len(goalsByPlayer))
	for playerID, goals := range goalsByPlayer {
		scorers = append(scorers, scoring.TopScorer{
			PlayerID: playerID,
			TeamID:   teamByPlayer[playerID],
			Goals:    goals,
		})
	}
	sort.SliceStable(scorers, func(i, j int) bool {
		if scorers[i].Goals != scorers[j].Goals {
			return scorers[i].Goals > scorers[j].Goals
		}
		return scorers[i].PlayerID < scorers[j].PlayerID
	})

	rank := 0
	lastGoals := 0
	for i := range scorers {
		if i == 0 || scorers[i].Goals != lastGoals {
			rank++
			lastGoals = scorers[i].Goals
		}
		scorers[i].Rank = rank
	}

	if limit > 0 && len(scorers) > limit {
		scorers = scorers[:limit]
	}
	return scorers, nil
}
