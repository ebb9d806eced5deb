package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
)

// ScoringRepository is the Postgres implementation of scoring.Repository.
// ApplySeasonDeltas runs inside one transaction to keep revisions atomic.
type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) UpsertMatch(ctx context.Context, record scoring.MatchRecord) error {
	const query = `
		INSERT INTO matches (id, round, home_team_id, away_team_id, home_score, away_score, status, kickoff_at)
		VALUES (:id, :round, :home_team_id, :away_team_id, :home_score, :away_score, :status, :kickoff_at)
		ON CONFLICT (id) DO UPDATE SET
			round = EXCLUDED.round,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			status = EXCLUDED.status,
			kickoff_at = EXCLUDED.kickoff_at`

	if _, err := r.db.NamedExecContext(ctx, query, matchToTable(record)); err != nil {
		return crerr.Wrapf(err, "upsert match %s", record.ID)
	}
	return nil
}

func (r *ScoringRepository) GetMatch(ctx context.Context, matchID string) (scoring.MatchRecord, bool, error) {
	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM matches WHERE id = $1`, matchID); err != nil {
		if isNotFound(err) {
			return scoring.MatchRecord{}, false, nil
		}
		return scoring.MatchRecord{}, false, crerr.Wrapf(err, "get match %s", matchID)
	}
	return row.toDomain(), true, nil
}

func (r *ScoringRepository) ListMatchesByRound(ctx context.Context, round string) ([]scoring.MatchRecord, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM matches WHERE round = $1 ORDER BY id`, round); err != nil {
		return nil, crerr.Wrapf(err, "list matches for round %s", round)
	}
	out := make([]scoring.MatchRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ScoringRepository) ListMatches(ctx context.Context) ([]scoring.MatchRecord, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM matches ORDER BY id`); err != nil {
		return nil, crerr.Wrap(err, "list matches")
	}
	out := make([]scoring.MatchRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ScoringRepository) ReplaceMatchLineItems(ctx context.Context, matchID string, items []scoring.PointLineItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin replace line items")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM point_line_items WHERE match_id = $1`, matchID); err != nil {
		return crerr.Wrapf(err, "delete line items for match %s", matchID)
	}

	const insert = `
		INSERT INTO point_line_items (match_id, round, seq, player_id, team_id, category, points, source_ref)
		VALUES (:match_id, :round, :seq, :player_id, :team_id, :category, :points, :source_ref)`
	for seq, item := range items {
		row := lineItemTableModel{
			MatchID:   matchID,
			Round:     item.Round,
			Seq:       seq,
			PlayerID:  item.PlayerID,
			TeamID:    item.TeamID,
			Category:  string(item.Category),
			Points:    item.Points,
			SourceRef: item.SourceRef,
		}
		if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
			return crerr.Wrapf(err, "insert line item %d for match %s", seq, matchID)
		}
	}

	// An empty marker row distinguishes "processed with no scorers" from
	// "never processed".
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO processed_matches (match_id) VALUES ($1)
		ON CONFLICT (match_id) DO NOTHING`, matchID); err != nil {
		return crerr.Wrapf(err, "mark match %s processed", matchID)
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrapf(err, "commit line items for match %s", matchID)
	}
	return nil
}

func (r *ScoringRepository) ListMatchLineItems(ctx context.Context, matchID string) ([]scoring.PointLineItem, bool, error) {
	var processed int
	if err := r.db.GetContext(ctx, &processed, `SELECT 1 FROM processed_matches WHERE match_id = $1`, matchID); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, crerr.Wrapf(err, "check processed match %s", matchID)
	}

	var rows []lineItemTableModel
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM point_line_items WHERE match_id = $1 ORDER BY seq`, matchID); err != nil {
		return nil, false, crerr.Wrapf(err, "list line items for match %s", matchID)
	}
	out := make([]scoring.PointLineItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, true, nil
}

func (r *ScoringRepository) ListLineItemsByRound(ctx context.Context, round string) ([]scoring.PointLineItem, error) {
	var rows []lineItemTableModel
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM point_line_items WHERE round = $1 ORDER BY match_id, seq`, round); err != nil {
		return nil, crerr.Wrapf(err, "list line items for round %s", round)
	}
	out := make([]scoring.PointLineItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ScoringRepository) ListRounds(ctx context.Context) ([]string, error) {
	var rounds []string
	if err := r.db.SelectContext(ctx, &rounds, `SELECT DISTINCT round FROM matches ORDER BY round`); err != nil {
		return nil, crerr.Wrap(err, "list rounds")
	}
	return rounds, nil
}

func (r *ScoringRepository) UpsertRoundResult(ctx context.Context, result scoring.RoundResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin upsert round result")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO round_results (round, status) VALUES (:round, :status)
		ON CONFLICT (round) DO UPDATE SET status = EXCLUDED.status`,
		roundResultTableModel{Round: result.Round, Status: result.Status}); err != nil {
		return crerr.Wrapf(err, "upsert round result %s", result.Round)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM round_totals WHERE round = $1`, result.Round); err != nil {
		return crerr.Wrapf(err, "delete round totals %s", result.Round)
	}
	for _, total := range result.Totals {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO round_totals (round, player_id, base_points, bonus_points, points, rank)
			VALUES (:round, :player_id, :base_points, :bonus_points, :points, :rank)`,
			roundTotalTableModel{
				Round:       total.Round,
				PlayerID:    total.PlayerID,
				BasePoints:  total.BasePoints,
				BonusPoints: total.BonusPoints,
				Points:      total.Points,
				Rank:        total.Rank,
			}); err != nil {
			return crerr.Wrapf(err, "insert round total %s/%s", total.Round, total.PlayerID)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM round_bonus_items WHERE round = $1`, result.Round); err != nil {
		return crerr.Wrapf(err, "delete round bonus items %s", result.Round)
	}
	for seq, item := range result.BonusItems {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO round_bonus_items (round, seq, player_id, team_id, points, source_ref)
			VALUES (:round, :seq, :player_id, :team_id, :points, :source_ref)`,
			bonusItemTableModel{
				Round:     item.Round,
				Seq:       seq,
				PlayerID:  item.PlayerID,
				TeamID:    item.TeamID,
				Points:    item.Points,
				SourceRef: item.SourceRef,
			}); err != nil {
			return crerr.Wrapf(err, "insert bonus item %d for round %s", seq, result.Round)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrapf(err, "commit round result %s", result.Round)
	}
	return nil
}

func (r *ScoringRepository) GetRoundResult(ctx context.Context, round string) (scoring.RoundResult, bool, error) {
	var header roundResultTableModel
	if err := r.db.GetContext(ctx, &header, `SELECT * FROM round_results WHERE round = $1`, round); err != nil {
		if isNotFound(err) {
			return scoring.RoundResult{}, false, nil
		}
		return scoring.RoundResult{}, false, crerr.Wrapf(err, "get round result %s", round)
	}

	var totalRows []roundTotalTableModel
	if err := r.db.SelectContext(ctx, &totalRows, `
		SELECT * FROM round_totals WHERE round = $1 ORDER BY points DESC, player_id`, round); err != nil {
		return scoring.RoundResult{}, false, crerr.Wrapf(err, "list round totals %s", round)
	}
	var bonusRows []bonusItemTableModel
	if err := r.db.SelectContext(ctx, &bonusRows, `
		SELECT * FROM round_bonus_items WHERE round = $1 ORDER BY seq`, round); err != nil {
		return scoring.RoundResult{}, false, crerr.Wrapf(err, "list round bonus items %s", round)
	}

	result := scoring.RoundResult{
		Round:  header.Round,
		Status: header.Status,
		Totals: make([]scoring.RoundTotal, 0, len(totalRows)),
	}
	for _, row := range totalRows {
		result.Totals = append(result.Totals, row.toDomain())
	}
	for _, row := range bonusRows {
		result.BonusItems = append(result.BonusItems, row.toDomain())
	}
	return result, true, nil
}

func (r *ScoringRepository) ListSeasonRankings(ctx context.Context) ([]scoring.SeasonRanking, error) {
	var rows []seasonRankingTableModel
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM season_rankings ORDER BY player_id`); err != nil {
		return nil, crerr.Wrap(err, "list season rankings")
	}
	out := make([]scoring.SeasonRanking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ScoringRepository) HasAppliedRound(ctx context.Context, playerID, round string) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, `
		SELECT 1 FROM applied_rounds WHERE player_id = $1 AND round = $2`, playerID, round); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, crerr.Wrapf(err, "check applied round %s for player %s", round, playerID)
	}
	return true, nil
}

func (r *ScoringRepository) ApplySeasonDeltas(ctx context.Context, deltas []scoring.SeasonDelta) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin season deltas")
	}
	defer func() { _ = tx.Rollback() }()

	for _, delta := range deltas {
		revisionIncrement := 0
		if delta.Revision {
			revisionIncrement = 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO season_rankings (player_id, total_points, last_applied_round, revisions)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (player_id) DO UPDATE SET
				total_points = season_rankings.total_points + EXCLUDED.total_points,
				last_applied_round = EXCLUDED.last_applied_round,
				revisions = season_rankings.revisions + $4`,
			delta.PlayerID, delta.Points, delta.Round, revisionIncrement); err != nil {
			return crerr.Wrapf(err, "apply season delta for player %s", delta.PlayerID)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO applied_rounds (player_id, round) VALUES ($1, $2)
			ON CONFLICT (player_id, round) DO NOTHING`,
			delta.PlayerID, delta.Round); err != nil {
			return crerr.Wrapf(err, "mark round %s applied for player %s", delta.Round, delta.PlayerID)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit season deltas")
	}
	return nil
}
