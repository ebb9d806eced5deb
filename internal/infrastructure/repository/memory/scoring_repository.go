package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
)

// ScoringRepository is the in-process implementation of scoring.Repository.
// One mutex guards all maps so ApplySeasonDeltas is atomic by construction.
type ScoringRepository struct {
	mu            sync.RWMutex
	matches       map[string]scoring.MatchRecord
	lineItems     map[string][]scoring.PointLineItem
	roundByMatch  map[string]string
	roundResults  map[string]scoring.RoundResult
	seasons       map[string]scoring.SeasonRanking
	appliedRounds map[string]map[string]struct{}
}

func NewScoringRepository() *ScoringRepository {
	return &ScoringRepository{
		matches:       make(map[string]scoring.MatchRecord),
		lineItems:     make(map[string][]scoring.PointLineItem),
		roundByMatch:  make(map[string]string),
		roundResults:  make(map[string]scoring.RoundResult),
		seasons:       make(map[string]scoring.SeasonRanking),
		appliedRounds: make(map[string]map[string]struct{}),
	}
}

func (r *ScoringRepository) UpsertMatch(_ context.Context, record scoring.MatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.matches[record.ID] = record
	r.roundByMatch[record.ID] = record.Round
	return nil
}

func (r *ScoringRepository) GetMatch(_ context.Context, matchID string) (scoring.MatchRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.matches[matchID]
	return record, ok, nil
}

func (r *ScoringRepository) ListMatchesByRound(_ context.Context, round string) ([]scoring.MatchRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.MatchRecord, 0)
	for _, record := range r.matches {
		if record.Round == round {
			out = append(out, record)
		}
	}
	sortMatches(out)
	return out, nil
}

func (r *ScoringRepository) ListMatches(_ context.Context) ([]scoring.MatchRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.MatchRecord, 0, len(r.matches))
	for _, record := range r.matches {
		out = append(out, record)
	}
	sortMatches(out)
	return out, nil
}

func (r *ScoringRepository) ReplaceMatchLineItems(_ context.Context, matchID string, items []scoring.PointLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lineItems[matchID] = append([]scoring.PointLineItem(nil), items...)
	return nil
}

func (r *ScoringRepository) ListMatchLineItems(_ context.Context, matchID string) ([]scoring.PointLineItem, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, ok := r.lineItems[matchID]
	if !ok {
		return nil, false, nil
	}
	return append([]scoring.PointLineItem(nil), items...), true, nil
}

func (r *ScoringRepository) ListLineItemsByRound(_ context.Context, round string) ([]scoring.PointLineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matchIDs := make([]string, 0)
	for matchID, matchRound := range r.roundByMatch {
		if matchRound == round {
			matchIDs = append(matchIDs, matchID)
		}
	}
	sort.Strings(matchIDs)

	out := make([]scoring.PointLineItem, 0)
	for _, matchID := range matchIDs {
		out = append(out, r.lineItems[matchID]...)
	}
	return out, nil
}

func (r *ScoringRepository) ListRounds(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, round := range r.roundByMatch {
		if _, dup := seen[round]; dup {
			continue
		}
		seen[round] = struct{}{}
		out = append(out, round)
	}
	sort.Strings(out)
	return out, nil
}

func (r *ScoringRepository) UpsertRoundResult(_ context.Context, result scoring.RoundResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roundResults[result.Round] = cloneRoundResult(result)
	return nil
}

func (r *ScoringRepository) GetRoundResult(_ context.Context, round string) (scoring.RoundResult, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.roundResults[round]
	if !ok {
		return scoring.RoundResult{}, false, nil
	}
	return cloneRoundResult(result), true, nil
}

func (r *ScoringRepository) ListSeasonRankings(_ context.Context) ([]scoring.SeasonRanking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.SeasonRanking, 0, len(r.seasons))
	for _, row := range r.seasons {
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (r *ScoringRepository) HasAppliedRound(_ context.Context, playerID, round string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rounds, ok := r.appliedRounds[playerID]
	if !ok {
		return false, nil
	}
	_, applied := rounds[round]
	return applied, nil
}

func (r *ScoringRepository) ApplySeasonDeltas(_ context.Context, deltas []scoring.SeasonDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, delta := range deltas {
		row := r.seasons[delta.PlayerID]
		row.PlayerID = delta.PlayerID
		row.TotalPoints += delta.Points
		row.LastAppliedRound = delta.Round
		if delta.Revision {
			row.Revisions++
		}
		r.seasons[delta.PlayerID] = row

		if _, ok := r.appliedRounds[delta.PlayerID]; !ok {
			r.appliedRounds[delta.PlayerID] = make(map[string]struct{})
		}
		r.appliedRounds[delta.PlayerID][delta.Round] = struct{}{}
	}
	return nil
}

func sortMatches(records []scoring.MatchRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
}

func cloneRoundResult(result scoring.RoundResult) scoring.RoundResult {
	copied := result
	copied.Totals = append([]scoring.RoundTotal(nil), result.Totals...)
	copied.BonusItems = append([]scoring.PointLineItem(nil), result.BonusItems...)
	return copied
}
