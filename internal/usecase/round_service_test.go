package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/matchpulse/fantasy-scoring/internal/domain/match"
	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
	"github.com/matchpulse/fantasy-scoring/internal/infrastructure/repository/memory"
)

func seedProcessedMatch(t *testing.T, repo scoring.Repository, record scoring.MatchRecord, items []scoring.PointLineItem) {
	t.Helper()
	ctx := context.Background()
	if err := repo.UpsertMatch(ctx, record); err != nil {
		t.Fatalf("upsert match %s: %v", record.ID, err)
	}
	if err := repo.ReplaceMatchLineItems(ctx, record.ID, items); err != nil {
		t.Fatalf("replace line items %s: %v", record.ID, err)
	}
}

func baseItem(matchID, round, playerID, teamID string, points int) scoring.PointLineItem {
	return scoring.PointLineItem{
		MatchID:  matchID,
		Round:    round,
		PlayerID: playerID,
		TeamID:   teamID,
		Category: scoring.CategoryAppearance,
		Points:   points,
	}
}

func TestComputeRound_BonusSharesTierAndSkipsBelow(t *testing.T) {
	t.Parallel()

	repo := memory.NewScoringRepository()
	service := NewRoundService(repo, scoring.BonusPolicy{}, nil, nil)
	ctx := context.Background()

	seedProcessedMatch(t, repo, scoring.MatchRecord{
		ID: "m1", Round: "R1", HomeTeamID: "t1", AwayTeamID: "t2",
		HomeScore: 1, AwayScore: 0, Status: match.StatusFinished,
	}, []scoring.PointLineItem{
		baseItem("m1", "R1", "p1", "t1", 10),
		baseItem("m1", "R1", "p2", "t1", 10),
		baseItem("m1", "R1", "p3", "t2", 8),
		baseItem("m1", "R1", "p4", "t2", 6),
	})

	result, err := service.ComputeRound(ctx, "R1", false)
	if err != nil {
		t.Fatalf("compute round: %v", err)
	}
	if result.Status != scoring.RoundStatusFinal {
		t.Fatalf("status: got=%s want=%s", result.Status, scoring.RoundStatusFinal)
	}

	// A two-way tie at the top shares the first tier and consumes the
	// second; the next distinct total drops to the third.
	bonuses := make(map[string]int, len(result.BonusItems))
	for _, item := range result.BonusItems {
		if item.Category != scoring.CategoryBonus {
			t.Fatalf("unexpected bonus item category %s", item.Category)
		}
		bonuses[item.PlayerID] = item.Points
	}
	wantBonus := map[string]int{"p1": 3, "p2": 3, "p3": 1}
	if len(bonuses) != len(wantBonus) {
		t.Fatalf("bonus recipients: got=%d want=%d", len(bonuses), len(wantBonus))
	}
	for playerID, points := range wantBonus {
		if bonuses[playerID] != points {
			t.Fatalf("bonus for %s: got=%d want=%d", playerID, bonuses[playerID], points)
		}
	}

	wantFinal := []struct {
		playerID string
		points   int
		rank     int
	}{
		{"p1", 13, 1},
		{"p2", 13, 1},
		{"p3", 9, 2},
		{"p4", 6, 3},
	}
	if len(result.Totals) != len(wantFinal) {
		t.Fatalf("totals: got=%d want=%d", len(result.Totals), len(wantFinal))
	}
	for i, want := range wantFinal {
		total := result.Totals[i]
		if total.PlayerID != want.playerID || total.Points != want.points || total.Rank != want.rank {
			t.Fatalf("total[%d]: got=%s/%d/rank %d want=%s/%d/rank %d",
				i, total.PlayerID, total.Points, total.Rank, want.playerID, want.points, want.rank)
		}
	}
}

func TestComputeRound_UnfinishedMatchForcesProvisional(t *testing.T) {
	t.Parallel()

	repo := memory.NewScoringRepository()
	service := NewRoundService(repo, scoring.BonusPolicy{}, nil, nil)
	ctx := context.Background()

	seedProcessedMatch(t, repo, scoring.MatchRecord{
		ID: "m1", Round: "R1", HomeTeamID: "t1", AwayTeamID: "t2",
		HomeScore: 1, AwayScore: 0, Status: match.StatusFinished,
	}, []scoring.PointLineItem{
		baseItem("m1", "R1", "p1", "t1", 10),
	})
	seedProcessedMatch(t, repo, scoring.MatchRecord{
		ID: "m2", Round: "R1", HomeTeamID: "t3", AwayTeamID: "t4",
		Status: match.StatusLive,
	}, nil)

	result, err := service.ComputeRound(ctx, "R1", false)
	if err != nil {
		t.Fatalf("compute round: %v", err)
	}
	if result.Status != scoring.RoundStatusProvisional {
		t.Fatalf("status: got=%s want=%s", result.Status, scoring.RoundStatusProvisional)
	}
	if len(result.BonusItems) != 0 {
		t.Fatalf("provisional round carries %d bonus items, want 0", len(result.BonusItems))
	}
	if result.Totals[0].BonusPoints != 0 || result.Totals[0].Points != result.Totals[0].BasePoints {
		t.Fatalf("provisional total includes bonus: %+v", result.Totals[0])
	}
}

func TestComputeRound_PartialFlagForcesProvisional(t *testing.T) {
	t.Parallel()

	repo := memory.NewScoringRepository()
	service := NewRoundService(repo, scoring.BonusPolicy{}, nil, nil)

	seedProcessedMatch(t, repo, scoring.MatchRecord{
		ID: "m1", Round: "R1", HomeTeamID: "t1", AwayTeamID: "t2",
		HomeScore: 1, AwayScore: 0, Status: match.StatusFinished,
	}, []scoring.PointLineItem{
		baseItem("m1", "R1", "p1", "t1", 10),
	})

	result, err := service.ComputeRound(context.Background(), "R1", true)
	if err != nil {
		t.Fatalf("compute round: %v", err)
	}
	if result.Status != scoring.RoundStatusProvisional {
		t.Fatalf("status: got=%s want=%s", result.Status, scoring.RoundStatusProvisional)
	}
}

func TestComputeRound_EmptyRound(t *testing.T) {
	t.Parallel()

	service := NewRoundService(memory.NewScoringRepository(), scoring.BonusPolicy{}, nil, nil)

	_, err := service.ComputeRound(context.Background(), "R9", false)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for round without matches, got %v", err)
	}
}

func TestRoundTotals_ReturnsStoredResult(t *testing.T) {
	t.Parallel()

	repo := memory.NewScoringRepository()
	service := NewRoundService(repo, scoring.BonusPolicy{}, nil, nil)
	ctx := context.Background()

	seedProcessedMatch(t, repo, scoring.MatchRecord{
		ID: "m1", Round: "R1", HomeTeamID: "t1", AwayTeamID: "t2",
		HomeScore: 1, AwayScore: 0, Status: match.StatusFinished,
	}, []scoring.PointLineItem{
		baseItem("m1", "R1", "p1", "t1", 10),
	})
	computed, err := service.ComputeRound(ctx, "R1", false)
	if err != nil {
		t.Fatalf("compute round: %v", err)
	}

	stored, err := service.RoundTotals(ctx, "R1")
	if err != nil {
		t.Fatalf("round totals: %v", err)
	}
	if stored.Status != computed.Status || len(stored.Totals) != len(computed.Totals) {
		t.Fatalf("stored result differs: got=%+v want=%+v", stored, computed)
	}

	_, err = service.RoundTotals(ctx, "R2")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for uncomputed round, got %v", err)
	}
}
