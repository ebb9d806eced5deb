package scoring

import "time"

// Category labels one scored contribution kind. Card points are split into
// yellow and red categories so the rule table stays exhaustive without
// branching on card kind inside the engine.
type Category string

const (
	CategoryAppearance    Category = "APPEARANCE"
	CategoryGoal          Category = "GOAL"
	CategoryAssist        Category = "ASSIST"
	CategoryCleanSheet    Category = "CLEAN_SHEET"
	CategorySave          Category = "SAVE"
	CategoryPenaltySave   Category = "PENALTY_SAVE"
	CategoryPenaltyMiss   Category = "PENALTY_MISS"
	CategoryGoalsConceded Category = "GOALS_CONCEDED"
	CategoryOwnGoal       Category = "OWN_GOAL"
	CategoryYellowCard    Category = "YELLOW_CARD"
	CategoryRedCard       Category = "RED_CARD"
	CategoryBonus         Category = "BONUS"
)

// PointLineItem is one scored category contribution for one player in one
// match, traceable to its source event. Bonus items carry the round instead
// of a match id since they derive from cross-match ranking.
type PointLineItem struct {
	MatchID   string
	Round     string
	PlayerID  string
	TeamID    string
	Category  Category
	Points    int
	SourceRef string
}

const (
	RoundStatusProvisional = "PROVISIONAL"
	RoundStatusFinal       = "FINAL"
)

// RoundTotal is one player's summed line items for a round. Points includes
// BonusPoints once the round is final.
type RoundTotal struct {
	Round       string
	PlayerID    string
	BasePoints  int
	BonusPoints int
	Points      int
	Rank        int
}

// RoundResult is the aggregated outcome for a whole round.
type RoundResult struct {
	Round      string
	Status     string
	Totals     []RoundTotal
	BonusItems []PointLineItem
}

// SeasonRanking is one player's cumulative standing across applied rounds.
type SeasonRanking struct {
	PlayerID         string
	TotalPoints      int
	Rank             int
	LastAppliedRound string
	Revisions        int
}

// SeasonDelta is one atomic adjustment to a player's cumulative total.
type SeasonDelta struct {
	PlayerID string
	Round    string
	Points   int
	Revision bool
}

// MatchRecord is the processed-match summary kept for round completeness
// checks and team standings.
type MatchRecord struct {
	ID         string
	Round      string
	HomeTeamID string
	AwayTeamID string
	HomeScore  int
	AwayScore  int
	Status     string
	KickoffAt  time.Time
}

// TeamStanding is one row of the per-team league table.
type TeamStanding struct {
	TeamID       string
	Played       int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
	Points       int
	Rank         int
}

// TopScorer is one row of the season scorer listing.
type TopScorer struct {
	PlayerID string
	TeamID   string
	Goals    int
	Rank     int
}
