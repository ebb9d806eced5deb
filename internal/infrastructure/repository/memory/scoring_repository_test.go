package memory

import (
	"context"
	"reflect"
	"testing"

	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
)

func TestReplaceMatchLineItems_FoundDistinguishesEmptyFromUnprocessed(t *testing.T) {
	t.Parallel()

	repo := NewScoringRepository()
	ctx := context.Background()

	_, found, err := repo.ListMatchLineItems(ctx, "m1")
	if err != nil {
		t.Fatalf("list line items: %v", err)
	}
	if found {
		t.Fatalf("unprocessed match reported as found")
	}

	if err := repo.ReplaceMatchLineItems(ctx, "m1", nil); err != nil {
		t.Fatalf("replace line items: %v", err)
	}
	items, found, err := repo.ListMatchLineItems(ctx, "m1")
	if err != nil {
		t.Fatalf("list line items: %v", err)
	}
	if !found {
		t.Fatalf("processed match with no scorers must still report found")
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestListLineItemsByRound_OrderedByMatchID(t *testing.T) {
	t.Parallel()

	repo := NewScoringRepository()
	ctx := context.Background()

	for _, id := range []string{"m2", "m1"} {
		if err := repo.UpsertMatch(ctx, scoring.MatchRecord{ID: id, Round: "R1"}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
		if err := repo.ReplaceMatchLineItems(ctx, id, []scoring.PointLineItem{
			{MatchID: id, Round: "R1", PlayerID: "p1", Category: scoring.CategoryAppearance, Points: 2},
		}); err != nil {
			t.Fatalf("replace %s: %v", id, err)
		}
	}

	items, err := repo.ListLineItemsByRound(ctx, "R1")
	if err != nil {
		t.Fatalf("list by round: %v", err)
	}
	if len(items) != 2 || items[0].MatchID != "m1" || items[1].MatchID != "m2" {
		t.Fatalf("items not ordered by match id: %+v", items)
	}
}

func TestListRounds_SortedAndDistinct(t *testing.T) {
	t.Parallel()

	repo := NewScoringRepository()
	ctx := context.Background()

	for _, record := range []scoring.MatchRecord{
		{ID: "m1", Round: "R2"},
		{ID: "m2", Round: "R1"},
		{ID: "m3", Round: "R2"},
	} {
		if err := repo.UpsertMatch(ctx, record); err != nil {
			t.Fatalf("upsert %s: %v", record.ID, err)
		}
	}

	rounds, err := repo.ListRounds(ctx)
	if err != nil {
		t.Fatalf("list rounds: %v", err)
	}
	if !reflect.DeepEqual(rounds, []string{"R1", "R2"}) {
		t.Fatalf("rounds: got=%v want=[R1 R2]", rounds)
	}
}

func TestApplySeasonDeltas_AccumulatesAndTracksLedger(t *testing.T) {
	t.Parallel()

	repo := NewScoringRepository()
	ctx := context.Background()

	err := repo.ApplySeasonDeltas(ctx, []scoring.SeasonDelta{
		{PlayerID: "p1", Round: "R1", Points: 9},
	})
	if err != nil {
		t.Fatalf("apply deltas: %v", err)
	}
	err = repo.ApplySeasonDeltas(ctx, []scoring.SeasonDelta{
		{PlayerID: "p1", Round: "R2", Points: 4},
		{PlayerID: "p1", Round: "R1", Points: -1, Revision: true},
	})
	if err != nil {
		t.Fatalf("apply deltas: %v", err)
	}

	rows, err := repo.ListSeasonRankings(ctx)
	if err != nil {
		t.Fatalf("list rankings: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("season rows: got=%d want=1", len(rows))
	}
	row := rows[0]
	if row.TotalPoints != 12 {
		t.Fatalf("total points: got=%d want=12", row.TotalPoints)
	}
	if row.Revisions != 1 {
		t.Fatalf("revisions: got=%d want=1", row.Revisions)
	}

	for round, want := range map[string]bool{"R1": true, "R2": true, "R3": false} {
		applied, err := repo.HasAppliedRound(ctx, "p1", round)
		if err != nil {
			t.Fatalf("has applied round %s: %v", round, err)
		}
		if applied != want {
			t.Fatalf("applied %s: got=%v want=%v", round, applied, want)
		}
	}
}

func TestGetRoundResult_ReturnsIsolatedCopy(t *testing.T) {
	t.Parallel()

	repo := NewScoringRepository()
	ctx := context.Background()

	stored := scoring.RoundResult{
		Round:  "R1",
		Status: scoring.RoundStatusFinal,
		Totals: []scoring.RoundTotal{
			{Round: "R1", PlayerID: "p1", Points: 9, Rank: 1},
		},
	}
	if err := repo.UpsertRoundResult(ctx, stored); err != nil {
		t.Fatalf("upsert round result: %v", err)
	}

	first, ok, err := repo.GetRoundResult(ctx, "R1")
	if err != nil || !ok {
		t.Fatalf("get round result: ok=%v err=%v", ok, err)
	}
	first.Totals[0].Points = 0

	second, _, err := repo.GetRoundResult(ctx, "R1")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if second.Totals[0].Points != 9 {
		t.Fatalf("stored result mutated through a returned copy")
	}
}
