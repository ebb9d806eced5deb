package postgres

import (
	"time"

	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
)

type matchTableModel struct {
	ID         string `db:"id"`
	Round      string `db:"round"`
	HomeTeamID string `db:"home_team_id"`
	AwayTeamID string `db:"away_team_id"`
	HomeScore  int    `db:"home_score"`
	AwayScore  int    `db:"away_score"`
	Status     string `db:"status"`
	KickoffAt  int64  `db:"kickoff_at"`
}

func (m matchTableModel) toDomain() scoring.MatchRecord {
	return scoring.MatchRecord{
		ID:         m.ID,
		Round:      m.Round,
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		HomeScore:  m.HomeScore,
		AwayScore:  m.AwayScore,
		Status:     m.Status,
		KickoffAt:  unixToTime(m.KickoffAt),
	}
}

func matchToTable(record scoring.MatchRecord) matchTableModel {
	return matchTableModel{
		ID:         record.ID,
		Round:      record.Round,
		HomeTeamID: record.HomeTeamID,
		AwayTeamID: record.AwayTeamID,
		HomeScore:  record.HomeScore,
		AwayScore:  record.AwayScore,
		Status:     record.Status,
		KickoffAt:  timeToUnix(record.KickoffAt),
	}
}

type lineItemTableModel struct {
	MatchID   string `db:"match_id"`
	Round     string `db:"round"`
	Seq       int    `db:"seq"`
	PlayerID  string `db:"player_id"`
	TeamID    string `db:"team_id"`
	Category  string `db:"category"`
	Points    int    `db:"points"`
	SourceRef string `db:"source_ref"`
}

func (m lineItemTableModel) toDomain() scoring.PointLineItem {
	return scoring.PointLineItem{
		MatchID:   m.MatchID,
		Round:     m.Round,
		PlayerID:  m.PlayerID,
		TeamID:    m.TeamID,
		Category:  scoring.Category(m.Category),
		Points:    m.Points,
		SourceRef: m.SourceRef,
	}
}

type roundResultTableModel struct {
	Round  string `db:"round"`
	Status string `db:"status"`
}

type roundTotalTableModel struct {
	Round       string `db:"round"`
	PlayerID    string `db:"player_id"`
	BasePoints  int    `db:"base_points"`
	BonusPoints int    `db:"bonus_points"`
	Points      int    `db:"points"`
	Rank        int    `db:"rank"`
}

func (m roundTotalTableModel) toDomain() scoring.RoundTotal {
	return scoring.RoundTotal{
		Round:       m.Round,
		PlayerID:    m.PlayerID,
		BasePoints:  m.BasePoints,
		BonusPoints: m.BonusPoints,
		Points:      m.Points,
		Rank:        m.Rank,
	}
}

type bonusItemTableModel struct {
	Round     string `db:"round"`
	Seq       int    `db:"seq"`
	PlayerID  string `db:"player_id"`
	TeamID    string `db:"team_id"`
	Points    int    `db:"points"`
	SourceRef string `db:"source_ref"`
}

func (m bonusItemTableModel) toDomain() scoring.PointLineItem {
	return scoring.PointLineItem{
		Round:     m.Round,
		PlayerID:  m.PlayerID,
		TeamID:    m.TeamID,
		Category:  scoring.CategoryBonus,
		Points:    m.Points,
		SourceRef: m.SourceRef,
	}
}

type seasonRankingTableModel struct {
	PlayerID         string `db:"player_id"`
	TotalPoints      int    `db:"total_points"`
	LastAppliedRound string `db:"last_applied_round"`
	Revisions        int    `db:"revisions"`
}

func (m seasonRankingTableModel) toDomain() scoring.SeasonRanking {
	return scoring.SeasonRanking{
		PlayerID:         m.PlayerID,
		TotalPoints:      m.TotalPoints,
		LastAppliedRound: m.LastAppliedRound,
		Revisions:        m.Revisions,
	}
}

func unixToTime(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.Unix(value, 0).UTC()
}

func timeToUnix(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().Unix()
}
