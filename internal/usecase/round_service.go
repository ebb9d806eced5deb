package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/matchpulse/fantasy-scoring/internal/domain/match"
	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
	"github.com/matchpulse/fantasy-scoring/internal/platform/cache"
	"github.com/matchpulse/fantasy-scoring/internal/platform/logging"
)

// RoundService aggregates stored line items into per-round player totals and
// awards bonus points. Bonus tiers depend on totals across the whole round,
// so a round with unfinished (or explicitly partial) data is computed as
// provisional without bonus items.
type RoundService struct {
	repo   scoring.Repository
	bonus  scoring.BonusPolicy
	cache  *cache.Store
	logger *logging.Logger
}

func NewRoundService(repo scoring.Repository, bonus scoring.BonusPolicy, store *cache.Store, logger *logging.Logger) *RoundService {
	if len(bonus.TierPoints) == 0 {
		bonus = scoring.BonusPolicy{TierPoints: []int{3, 2, 1}}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RoundService{
		repo:   repo,
		bonus:  bonus,
		cache:  store,
		logger: logger,
	}
}

// ComputeRound recomputes the totals for one round from its stored line
// items. When partial is set, or any stored match of the round is not
// finished, the result is provisional and carries no bonus items.
func (s *RoundService) ComputeRound(ctx context.Context, round string, partial bool) (scoring.RoundResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.ComputeRound")
	defer span.End()

	if round == "" {
		return scoring.RoundResult{}, fmt.Errorf("%w: round is required", ErrInvalidInput)
	}

	matches, err := s.repo.ListMatchesByRound(ctx, round)
	if err != nil {
		return scoring.RoundResult{}, fmt.Errorf("list matches for round %s: %w", round, err)
	}
	if len(matches) == 0 {
		return scoring.RoundResult{}, fmt.Errorf("%w: round %s has no processed matches", ErrNotFound, round)
	}

	provisional := partial
	for _, record := range matches {
		if !match.IsFinishedStatus(record.Status) {
			provisional = true
			break
		}
	}

	items, err := s.repo.ListLineItemsByRound(ctx, round)
	if err != nil {
		return scoring.RoundResult{}, fmt.Errorf("list line items for round %s: %w", round, err)
	}

	baseByPlayer := make(map[string]int)
	teamByPlayer := make(map[string]string)
	for _, item := range items {
		baseByPlayer[item.PlayerID] += item.Points
		teamByPlayer[item.PlayerID] = item.TeamID
	}

	totals := make([]scoring.RoundTotal, 0, len(baseByPlayer))
	for playerID, base := range baseByPlayer {
		totals = append(totals, scoring.RoundTotal{
			Round:      round,
			PlayerID:   playerID,
			BasePoints: base,
			Points:     base,
		})
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].BasePoints != totals[j].BasePoints {
			return totals[i].BasePoints > totals[j].BasePoints
		}
		return totals[i].PlayerID < totals[j].PlayerID
	})

	result := scoring.RoundResult{
		Round:  round,
		Status: scoring.RoundStatusFinal,
	}
	if provisional {
		result.Status = scoring.RoundStatusProvisional
	} else {
		result.BonusItems = s.awardBonuses(round, totals, teamByPlayer)
		bonusByPlayer := make(map[string]int, len(result.BonusItems))
		for _, item := range result.BonusItems {
			bonusByPlayer[item.PlayerID] = item.Points
		}
		for i := range totals {
			totals[i].BonusPoints = bonusByPlayer[totals[i].PlayerID]
			totals[i].Points = totals[i].BasePoints + totals[i].BonusPoints
		}
	}

	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Points != totals[j].Points {
			return totals[i].Points > totals[j].Points
		}
		return totals[i].PlayerID < totals[j].PlayerID
	})
	rank := 0
	lastPoints := 0
	for i := range totals {
		if i == 0 || totals[i].Points != lastPoints {
			rank++
			lastPoints = totals[i].Points
		}
		totals[i].Rank = rank
	}
	result.Totals = totals

	if err := s.repo.UpsertRoundResult(ctx, result); err != nil {
		return scoring.RoundResult{}, fmt.Errorf("upsert round result %s: %w", round, err)
	}
	s.invalidate(ctx, round)

	s.logger.InfoContext(ctx, "round computed",
		"round", round,
		"status", result.Status,
		"players", len(result.Totals),
		"bonus_items", len(result.BonusItems),
	)
	return result, nil
}

// RoundTotals returns the stored result for a round, through the cache when
// one is configured.
func (s *RoundService) RoundTotals(ctx context.Context, round string) (scoring.RoundResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.RoundTotals")
	defer span.End()

	if round == "" {
		return scoring.RoundResult{}, fmt.Errorf("%w: round is required", ErrInvalidInput)
	}

	load := func() (any, error) {
		result, ok, err := s.repo.GetRoundResult(ctx, round)
		if err != nil {
			return nil, fmt.Errorf("get round result %s: %w", round, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: round %s has not been computed", ErrNotFound, round)
		}
		return result, nil
	}

	if s.cache == nil {
		value, err := load()
		if err != nil {
			return scoring.RoundResult{}, err
		}
		return value.(scoring.RoundResult), nil
	}

	value, err := s.cache.GetOrLoad(ctx, roundCacheKey(round), load)
	if err != nil {
		return scoring.RoundResult{}, err
	}
	return value.(scoring.RoundResult), nil
}

// awardBonuses hands out tier points over descending distinct totals. Tied
// players share the tier and the tiers below are consumed by the tie, so a
// two-way tie at the top yields 3, 3 and the next distinct total gets 1.
func (s *RoundService) awardBonuses(round string, totals []scoring.RoundTotal, teamByPlayer map[string]string) []scoring.PointLineItem {
	items := make([]scoring.PointLineItem, 0, len(s.bonus.TierPoints))

	tier := 0
	index := 0
	for index < len(totals) && tier < len(s.bonus.TierPoints) {
		tieEnd := index
		for tieEnd < len(totals) && totals[tieEnd].BasePoints == totals[index].BasePoints {
			tieEnd++
		}
		for _, total := range totals[index:tieEnd] {
			items = append(items, scoring.PointLineItem{
				Round:     round,
				PlayerID:  total.PlayerID,
				TeamID:    teamByPlayer[total.PlayerID],
				Category:  scoring.CategoryBonus,
				Points:    s.bonus.TierPoints[tier],
				SourceRef: fmt.Sprintf("round-tier:%d", tier+1),
			})
		}
		tier += tieEnd - index
		index = tieEnd
	}

	return items
}

func (s *RoundService) invalidate(ctx context.Context, round string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(ctx, roundCacheKey(round))
}

func roundCacheKey(round string) string {
	return "round:result:" + round
}
