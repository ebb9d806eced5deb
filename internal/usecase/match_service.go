package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/matchpulse/fantasy-scoring/internal/domain/match"
	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
	"github.com/matchpulse/fantasy-scoring/internal/platform/logging"
)

const defaultScoringWorkers = 4

// MatchService runs the per-match slice of the pipeline: normalize the raw
// payload, derive appearances, apply the rule table, and persist the line
// items. Matches are mutually independent, so round ingestion fans out one
// worker per match.
type MatchService struct {
	repo          scoring.Repository
	table         scoring.RuleTable
	defaultLength int
	workers       int
	logger        *logging.Logger
	now           func() time.Time
}

func NewMatchService(repo scoring.Repository, table scoring.RuleTable, defaultLength, workers int, logger *logging.Logger) (*MatchService, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule table: %w", err)
	}
	if defaultLength <= 0 {
		defaultLength = match.DefaultLength
	}
	if workers <= 0 {
		workers = defaultScoringWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		repo:          repo,
		table:         table,
		defaultLength: defaultLength,
		workers:       workers,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// ProcessMatch scores one finished (or revised) match and replaces any line
// items previously stored for it. Reprocessing identical input yields
// identical stored output.
func (s *MatchService) ProcessMatch(ctx context.Context, raw match.RawMatch) ([]scoring.PointLineItem, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ProcessMatch")
	defer span.End()

	if raw.DeclaredLength <= 0 {
		raw.DeclaredLength = s.defaultLength
	}

	normalized, err := match.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if !match.IsFinishedStatus(normalized.Status) {
		return nil, fmt.Errorf("%w: match %s has status %s, only finished matches are scored",
			ErrInvalidInput, normalized.ID, normalized.Status)
	}

	appearances := match.Appearances(normalized)
	items, err := scoring.ScoreMatch(normalized, appearances, s.table)
	if err != nil {
		return nil, err
	}

	record := scoring.MatchRecord{
		ID:         normalized.ID,
		Round:      normalized.Round,
		HomeTeamID: normalized.HomeTeamID,
		AwayTeamID: normalized.AwayTeamID,
		HomeScore:  normalized.HomeScore,
		AwayScore:  normalized.AwayScore,
		Status:     normalized.Status,
		KickoffAt:  normalized.KickoffAt,
	}
	if err := s.repo.UpsertMatch(ctx, record); err != nil {
		return nil, fmt.Errorf("upsert match %s: %w", normalized.ID, err)
	}
	if err := s.repo.ReplaceMatchLineItems(ctx, normalized.ID, items); err != nil {
		return nil, fmt.Errorf("replace line items for match %s: %w", normalized.ID, err)
	}

	s.logger.InfoContext(ctx, "match scored",
		"match_id", normalized.ID,
		"round", normalized.Round,
		"line_items", len(items),
	)
	return items, nil
}

// RoundIngestOutcome reports the result of scoring one match of a round.
type RoundIngestOutcome struct {
	MatchID   string
	LineItems int
	Err       error
}

// ProcessRound scores every supplied match of a round concurrently. All
// matches are attempted; the first error (by match id, for determinism) is
// returned alongside the per-match outcomes.
func (s *MatchService) ProcessRound(ctx context.Context, round string, raws []match.RawMatch) ([]RoundIngestOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ProcessRound")
	defer span.End()

	if round == "" {
		return nil, fmt.Errorf("%w: round is required", ErrInvalidInput)
	}
	for _, raw := range raws {
		if raw.Round != round {
			return nil, fmt.Errorf("%w: match %s belongs to round %s, not %s", ErrInvalidInput, raw.ID, raw.Round, round)
		}
	}
	if len(raws) == 0 {
		return nil, nil
	}

	workerCount := s.workers
	if workerCount > len(raws) {
		workerCount = len(raws)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan RoundIngestOutcome, len(raws))
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, raw := range raws {
		raw := raw
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			items, processErr := s.ProcessMatch(ctx, raw)
			if processErr != nil {
				failedCount.Add(1)
			}
			results <- RoundIngestOutcome{
				MatchID:   raw.ID,
				LineItems: len(items),
				Err:       processErr,
			}
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit match to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	outcomes := make([]RoundIngestOutcome, 0, len(raws))
	for row := range results {
		outcomes = append(outcomes, row)
	}
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].MatchID < outcomes[j].MatchID
	})

	if failed := failedCount.Load(); failed > 0 {
		for _, outcome := range outcomes {
			if outcome.Err != nil {
				return outcomes, fmt.Errorf("round %s: %d of %d matches failed, first failure match %s: %w",
					round, failed, len(raws), outcome.MatchID, outcome.Err)
			}
		}
	}
	return outcomes, nil
}
