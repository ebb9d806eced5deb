package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/matchpulse/fantasy-scoring/internal/domain/match"
	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
	"github.com/matchpulse/fantasy-scoring/internal/platform/logging"
)

// RankingService owns the season-cumulative standings and the applied-round
// ledger. All mutations go through one writer lock so a live round's totals
// and a revision to a past match cannot race each other; deltas are handed
// to the repository in a single atomic call.
type RankingService struct {
	repo    scoring.Repository
	matches *MatchService
	rounds  *RoundService
	mu      sync.Mutex
	logger  *logging.Logger
	now     func() time.Time
}

func NewRankingService(repo scoring.Repository, matches *MatchService, rounds *RoundService, logger *logging.Logger) *RankingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RankingService{
		repo:    repo,
		matches: matches,
		rounds:  rounds,
		logger:  logger,
		now:     time.Now,
	}
}

// ApplyRound merges a final round's totals into the season standings. A
// round+player combination already in the applied ledger is a no-op, so
// re-applying the same round leaves cumulative totals unchanged.
func (s *RankingService) ApplyRound(ctx context.Context, result scoring.RoundResult) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.ApplyRound")
	defer span.End()

	if result.Round == "" {
		return fmt.Errorf("%w: round is required", ErrInvalidInput)
	}
	if result.Status != scoring.RoundStatusFinal {
		return fmt.Errorf("%w: provisional round %s cannot be applied to season standings", ErrInvalidInput, result.Round)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deltas := make([]scoring.SeasonDelta, 0, len(result.Totals))
	for _, total := range result.Totals {
		applied, err := s.repo.HasAppliedRound(ctx, total.PlayerID, result.Round)
		if err != nil {
			return fmt.Errorf("check applied round for player %s: %w", total.PlayerID, err)
		}
		if applied {
			continue
		}
		deltas = append(deltas, scoring.SeasonDelta{
			PlayerID: total.PlayerID,
			Round:    result.Round,
			Points:   total.Points,
		})
	}
	if len(deltas) == 0 {
		return nil
	}

	if err := s.repo.ApplySeasonDeltas(ctx, deltas); err != nil {
		return fmt.Errorf("apply season deltas for round %s: %w", result.Round, err)
	}

	s.logger.InfoContext(ctx, "round applied to season standings",
		"round", result.Round,
		"players", len(deltas),
	)
	return nil
}

// Revise reprocesses a corrected match, recomputes its round only, and
// applies the per-player differences to the season standings. The whole
// delta is applied atomically or not at all. A match never processed before
// cannot be revised.
func (s *RankingService) Revise(ctx context.Context, raw match.RawMatch) (scoring.RoundResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Revise")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok, err := s.repo.GetMatch(ctx, raw.ID)
	if err != nil {
		return scoring.RoundResult{}, fmt.Errorf("get match %s: %w", raw.ID, err)
	}
	if !ok {
		return scoring.RoundResult{}, fmt.Errorf("%w: match %s was never processed", ErrUnknownMatch, raw.ID)
	}
	if raw.Round == "" {
		raw.Round = stored.Round
	}
	if raw.Round != stored.Round {
		return scoring.RoundResult{}, fmt.Errorf("%w: match %s cannot move from round %s to %s",
			ErrInvalidInput, raw.ID, stored.Round, raw.Round)
	}
	raw.Status = match.StatusRevised

	oldResult, hadResult, err := s.repo.GetRoundResult(ctx, stored.Round)
	if err != nil {
		return scoring.RoundResult{}, fmt.Errorf("get round result %s: %w", stored.Round, err)
	}
	oldTotals := make(map[string]int, len(oldResult.Totals))
	for _, total := range oldResult.Totals {
		oldTotals[total.PlayerID] = total.Points
	}

	if _, err := s.matches.ProcessMatch(ctx, raw); err != nil {
		return scoring.RoundResult{}, err
	}

	keepProvisional := !hadResult || oldResult.Status == scoring.RoundStatusProvisional
	newResult, err := s.rounds.ComputeRound(ctx, stored.Round, keepProvisional)
	if err != nil {
		return scoring.RoundResult{}, err
	}

	// A round never finalized has contributed nothing to the season yet;
	// replacing its line items and totals is the whole correction.
	if keepProvisional {
		return newResult, nil
	}

	deltas, err := s.revisionDeltas(ctx, stored.Round, oldTotals, newResult.Totals)
	if err != nil {
		return scoring.RoundResult{}, err
	}
	if len(deltas) > 0 {
		if err := s.repo.ApplySeasonDeltas(ctx, deltas); err != nil {
			return scoring.RoundResult{}, fmt.Errorf("apply revision deltas for match %s: %w", raw.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "match revised",
		"match_id", raw.ID,
		"round", stored.Round,
		"changed_players", len(deltas),
	)
	return newResult, nil
}

func (s *RankingService) revisionDeltas(ctx context.Context, round string, oldTotals map[string]int, newTotals []scoring.RoundTotal) ([]scoring.SeasonDelta, error) {
	seen := make(map[string]struct{}, len(newTotals))
	deltas := make([]scoring.SeasonDelta, 0)

	for _, total := range newTotals {
		seen[total.PlayerID] = struct{}{}
		applied, err := s.repo.HasAppliedRound(ctx, total.PlayerID, round)
		if err != nil {
			return nil, fmt.Errorf("check applied round for player %s: %w", total.PlayerID, err)
		}

		points := total.Points
		if applied {
			points -= oldTotals[total.PlayerID]
		}
		if points == 0 && applied {
			continue
		}
		deltas = append(deltas, scoring.SeasonDelta{
			PlayerID: total.PlayerID,
			Round:    round,
			Points:   points,
			Revision: applied,
		})
	}

	// Players dropped from the round by the revision lose their old total.
	droppedIDs := make([]string, 0)
	for playerID := range oldTotals {
		if _, still := seen[playerID]; !still {
			droppedIDs = append(droppedIDs, playerID)
		}
	}
	sort.Strings(droppedIDs)
	for _, playerID := range droppedIDs {
		applied, err := s.repo.HasAppliedRound(ctx, playerID, round)
		if err != nil {
			return nil, fmt.Errorf("check applied round for player %s: %w", playerID, err)
		}
		if !applied || oldTotals[playerID] == 0 {
			continue
		}
		deltas = append(deltas, scoring.SeasonDelta{
			PlayerID: playerID,
			Round:    round,
			Points:   -oldTotals[playerID],
			Revision: true,
		})
	}

	return deltas, nil
}

// Rankings returns the season standings sorted by cumulative points with
// dense ranks; ties share a rank.
func (s *RankingService) Rankings(ctx context.Context) ([]scoring.SeasonRanking, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Rankings")
	defer span.End()

	rows, err := s.repo.ListSeasonRankings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list season rankings: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})

	rank := 0
	lastPoints := 0
	for i := range rows {
		if i == 0 || rows[i].TotalPoints != lastPoints {
			rank++
			lastPoints = rows[i].TotalPoints
		}
		rows[i].Rank = rank
	}
	return rows, nil
}
