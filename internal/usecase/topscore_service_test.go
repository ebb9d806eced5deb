package usecase

import (
	"context"
	"testing"

	"github.com/matchpulse/fantasy-scoring/internal/domain/match"
	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
	"github.com/matchpulse/fantasy-scoring/internal/infrastructure/repository/memory"
)

func goalItem(matchID, round, playerID, teamID string) scoring.PointLineItem {
	return scoring.PointLineItem{
		MatchID:  matchID,
		Round:    round,
		PlayerID: playerID,
		TeamID:   teamID,
		Category: scoring.CategoryGoal,
		Points:   4,
	}
}

func TestListTopScorers_AggregatesAcrossRounds(t *testing.T) {
	t.Parallel()

	repo := memory.NewScoringRepository()
	service := NewTopScoreService(repo)
	ctx := context.Background()

	seedProcessedMatch(t, repo, scoring.MatchRecord{
		ID: "m1", Round: "R1", HomeTeamID: "t1", AwayTeamID: "t2",
		HomeScore: 2, AwayScore: 1, Status: match.StatusFinished,
	}, []scoring.PointLineItem{
		goalItem("m1", "R1", "p4", "t1"),
		goalItem("m1", "R1", "p4", "t1"),
		goalItem("m1", "R1", "p7", "t2"),
		baseItem("m1", "R1", "p4", "t1", 2), // appearance, not a goal
	})
	seedProcessedMatch(t, repo, scoring.MatchRecord{
		ID: "m2", Round: "R2", HomeTeamID: "t1", AwayTeamID: "t2",
		HomeScore: 1, AwayScore: 1, Status: match.StatusFinished,
	}, []scoring.PointLineItem{
		goalItem("m2", "R2", "p4", "t1"),
		goalItem("m2", "R2", "p8", "t2"),
	})

	scorers, err := service.ListTopScorers(ctx, 0)
	if err != nil {
		t.Fatalf("list top scorers: %v", err)
	}

	want := []scoring.TopScorer{
		{PlayerID: "p4", TeamID: "t1", Goals: 3, Rank: 1},
		{PlayerID: "p7", TeamID: "t2", Goals: 1, Rank: 2},
		{PlayerID: "p8", TeamID: "t2", Goals: 1, Rank: 2},
	}
	if len(scorers) != len(want) {
		t.Fatalf("scorers: got=%d want=%d", len(scorers), len(want))
	}
	for i, row := range want {
		if scorers[i] != row {
			t.Fatalf("scorers[%d]:\ngot=%+v\nwant=%+v", i, scorers[i], row)
		}
	}
}

func TestListTopScorers_LimitTruncatesAfterRanking(t *testing.T) {
	t.Parallel()

	repo := memory.NewScoringRepository()
	service := NewTopScoreService(repo)

	seedProcessedMatch(t, repo, scoring.MatchRecord{
		ID: "m1", Round: "R1", HomeTeamID: "t1", AwayTeamID: "t2",
		HomeScore: 2, AwayScore: 1, Status: match.StatusFinished,
	}, []scoring.PointLineItem{
		goalItem("m1", "R1", "p4", "t1"),
		goalItem("m1", "R1", "p4", "t1"),
		goalItem("m1", "R1", "p7", "t2"),
	})

	scorers, err := service.ListTopScorers(context.Background(), 1)
	if err != nil {
		t.Fatalf("list top scorers: %v", err)
	}
	if len(scorers) != 1 || scorers[0].PlayerID != "p4" {
		t.Fatalf("limited scorers: got=%+v want only p4", scorers)
	}
}

func TestListTopScorers_EmptySeason(t *testing.T) {
	t.Parallel()

	service := NewTopScoreService(memory.NewScoringRepository())

	scorers, err := service.ListTopScorers(context.Background(), 10)
	if err != nil {
		t.Fatalf("list top scorers: %v", err)
	}
	if len(scorers) != 0 {
		t.Fatalf("empty season produced %d scorers", len(scorers))
	}
}
