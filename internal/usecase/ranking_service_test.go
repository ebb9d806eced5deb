package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/matchpulse/fantasy-scoring/internal/domain/match"
	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
	"github.com/matchpulse/fantasy-scoring/internal/infrastructure/repository/memory"
)

type rankingFixture struct {
	repo     *memory.ScoringRepository
	matches  *MatchService
	rounds   *RoundService
	rankings *RankingService
}

func newRankingFixture(t *testing.T) rankingFixture {
	t.Helper()
	repo := memory.NewScoringRepository()
	matches := newMatchService(t, repo)
	rounds := NewRoundService(repo, scoring.BonusPolicy{}, nil, nil)
	return rankingFixture{
		repo:     repo,
		matches:  matches,
		rounds:   rounds,
		rankings: NewRankingService(repo, matches, rounds, nil),
	}
}

// finalizeFixtureRound scores the fixture match, computes its round as final
// and applies it to the season standings.
func finalizeFixtureRound(t *testing.T, f rankingFixture) scoring.RoundResult {
	t.Helper()
	ctx := context.Background()

	if _, err := f.matches.ProcessMatch(ctx, rawFixture()); err != nil {
		t.Fatalf("process match: %v", err)
	}
	result, err := f.rounds.ComputeRound(ctx, "R1", false)
	if err != nil {
		t.Fatalf("compute round: %v", err)
	}
	if err := f.rankings.ApplyRound(ctx, result); err != nil {
		t.Fatalf("apply round: %v", err)
	}
	return result
}

func assertSeasonTotals(t *testing.T, rows []scoring.SeasonRanking, want map[string]int) {
	t.Helper()
	if len(rows) != len(want) {
		t.Fatalf("season rows: got=%d want=%d", len(rows), len(want))
	}
	for _, row := range rows {
		points, ok := want[row.PlayerID]
		if !ok {
			t.Fatalf("unexpected season row for %s", row.PlayerID)
		}
		if row.TotalPoints != points {
			t.Fatalf("season total for %s: got=%d want=%d", row.PlayerID, row.TotalPoints, points)
		}
	}
}

func TestApplyRound_MergesFinalTotalsIntoSeason(t *testing.T) {
	t.Parallel()

	f := newRankingFixture(t)
	finalizeFixtureRound(t, f)
	ctx := context.Background()

	rows, err := f.rankings.Rankings(ctx)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}

	// Three players tie on base 6, share the top bonus tier and land on 9;
	// the midfielder keeps a bonus-free 3 and the away pair stay on 2.
	assertSeasonTotals(t, rows, map[string]int{
		"p1": 9, "p2": 9, "p4": 9, "p3": 3, "p5": 2, "p6": 2,
	})

	wantOrder := []string{"p1", "p2", "p4", "p3", "p5", "p6"}
	wantRank := []int{1, 1, 1, 2, 3, 3}
	for i, row := range rows {
		if row.PlayerID != wantOrder[i] || row.Rank != wantRank[i] {
			t.Fatalf("row[%d]: got=%s rank %d want=%s rank %d", i, row.PlayerID, row.Rank, wantOrder[i], wantRank[i])
		}
		if row.LastAppliedRound != "R1" {
			t.Fatalf("row[%d] last applied round: got=%s want=R1", i, row.LastAppliedRound)
		}
		if row.Revisions != 0 {
			t.Fatalf("row[%d] revisions: got=%d want=0", i, row.Revisions)
		}
	}
}

func TestApplyRound_ReapplyingIsANoOp(t *testing.T) {
	t.Parallel()

	f := newRankingFixture(t)
	result := finalizeFixtureRound(t, f)
	ctx := context.Background()

	if err := f.rankings.ApplyRound(ctx, result); err != nil {
		t.Fatalf("reapply round: %v", err)
	}

	rows, err := f.rankings.Rankings(ctx)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	assertSeasonTotals(t, rows, map[string]int{
		"p1": 9, "p2": 9, "p4": 9, "p3": 3, "p5": 2, "p6": 2,
	})
}

func TestApplyRound_RejectsProvisionalRound(t *testing.T) {
	t.Parallel()

	f := newRankingFixture(t)

	err := f.rankings.ApplyRound(context.Background(), scoring.RoundResult{
		Round:  "R1",
		Status: scoring.RoundStatusProvisional,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for provisional round, got %v", err)
	}
}

func TestRevise_AppliesOnlyTheDifference(t *testing.T) {
	t.Parallel()

	f := newRankingFixture(t)
	finalizeFixtureRound(t, f)
	ctx := context.Background()

	// Correction: the midfielder was booked at 40, dropping the base from
	// 3 to 2. Only that season row may move, flagged as a revision.
	revised := rawFixture()
	revised.Cards = []match.CardEvent{
		{PlayerID: "p3", Minute: 40, Kind: match.CardYellow},
	}

	result, err := f.rankings.Revise(ctx, revised)
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	if result.Status != scoring.RoundStatusFinal {
		t.Fatalf("revised round status: got=%s want=%s", result.Status, scoring.RoundStatusFinal)
	}

	rows, err := f.rankings.Rankings(ctx)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	assertSeasonTotals(t, rows, map[string]int{
		"p1": 9, "p2": 9, "p4": 9, "p3": 2, "p5": 2, "p6": 2,
	})
	for _, row := range rows {
		wantRevisions := 0
		if row.PlayerID == "p3" {
			wantRevisions = 1
		}
		if row.Revisions != wantRevisions {
			t.Fatalf("revisions for %s: got=%d want=%d", row.PlayerID, row.Revisions, wantRevisions)
		}
	}

	record, ok, err := f.repo.GetMatch(ctx, "m1")
	if err != nil || !ok {
		t.Fatalf("get revised match: ok=%v err=%v", ok, err)
	}
	if record.Status != match.StatusRevised {
		t.Fatalf("revised match status: got=%s want=%s", record.Status, match.StatusRevised)
	}
}

func TestRevise_ReviseAgainWithSameDataChangesNothing(t *testing.T) {
	t.Parallel()

	f := newRankingFixture(t)
	finalizeFixtureRound(t, f)
	ctx := context.Background()

	if _, err := f.rankings.Revise(ctx, rawFixture()); err != nil {
		t.Fatalf("revise: %v", err)
	}

	rows, err := f.rankings.Rankings(ctx)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	assertSeasonTotals(t, rows, map[string]int{
		"p1": 9, "p2": 9, "p4": 9, "p3": 3, "p5": 2, "p6": 2,
	})
	for _, row := range rows {
		if row.Revisions != 0 {
			t.Fatalf("no-op revision bumped the counter for %s", row.PlayerID)
		}
	}
}

func TestRevise_UnknownMatch(t *testing.T) {
	t.Parallel()

	f := newRankingFixture(t)

	raw := rawFixture()
	raw.ID = "never-seen"

	_, err := f.rankings.Revise(context.Background(), raw)
	if !errors.Is(err, ErrUnknownMatch) {
		t.Fatalf("expected ErrUnknownMatch, got %v", err)
	}
}

func TestRevise_CannotMoveMatchToAnotherRound(t *testing.T) {
	t.Parallel()

	f := newRankingFixture(t)
	finalizeFixtureRound(t, f)

	raw := rawFixture()
	raw.Round = "R2"

	_, err := f.rankings.Revise(context.Background(), raw)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for round move, got %v", err)
	}
}

func TestRevise_ProvisionalRoundLeavesSeasonUntouched(t *testing.T) {
	t.Parallel()

	f := newRankingFixture(t)
	ctx := context.Background()

	// Process and compute but never apply: the round stays outside the
	// season, so a revision must not create season rows.
	if _, err := f.matches.ProcessMatch(ctx, rawFixture()); err != nil {
		t.Fatalf("process match: %v", err)
	}
	if _, err := f.rounds.ComputeRound(ctx, "R1", true); err != nil {
		t.Fatalf("compute round: %v", err)
	}

	revised := rawFixture()
	revised.Cards = []match.CardEvent{
		{PlayerID: "p3", Minute: 40, Kind: match.CardYellow},
	}
	result, err := f.rankings.Revise(ctx, revised)
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	if result.Status != scoring.RoundStatusProvisional {
		t.Fatalf("revised round status: got=%s want=%s", result.Status, scoring.RoundStatusProvisional)
	}

	rows, err := f.rankings.Rankings(ctx)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("provisional revision created %d season rows, want 0", len(rows))
	}
}
