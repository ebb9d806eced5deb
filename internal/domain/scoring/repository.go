package scoring

import "context"

// Repository is the injectable store behind the aggregation and ranking
// services. ApplySeasonDeltas must be atomic: either every delta lands,
// together with its applied-round ledger marks, or none do.
type Repository interface {
	UpsertMatch(ctx context.Context, record MatchRecord) error
	GetMatch(ctx context.Context, matchID string) (MatchRecord, bool, error)
	ListMatchesByRound(ctx context.Context, round string) ([]MatchRecord, error)
	ListMatches(ctx context.Context) ([]MatchRecord, error)

	ReplaceMatchLineItems(ctx context.Context, matchID string, items []PointLineItem) error
	ListMatchLineItems(ctx context.Context, matchID string) ([]PointLineItem, bool, error)
	ListLineItemsByRound(ctx context.Context, round string) ([]PointLineItem, error)
	ListRounds(ctx context.Context) ([]string, error)

	UpsertRoundResult(ctx context.Context, result RoundResult) error
	GetRoundResult(ctx context.Context, round string) (RoundResult, bool, error)

	ListSeasonRankings(ctx context.Context) ([]SeasonRanking, error)
	HasAppliedRound(ctx context.Context, playerID, round string) (bool, error)
	ApplySeasonDeltas(ctx context.Context, deltas []SeasonDelta) error
}
