package match

import (
	"errors"
	"time"

	"github.com/matchpulse/fantasy-scoring/internal/domain/player"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusRevised   = "REVISED"
)

const (
	// DefaultLength is the regulation match length in minutes.
	DefaultLength = 90
	// MaxEventMinute caps event minutes; allows extra time plus stoppage.
	MaxEventMinute = 130
)

var (
	ErrMalformedMatch  = errors.New("malformed match payload")
	ErrUnknownPosition = errors.New("unknown player position")
)

type PenaltyOutcome string

const (
	PenaltyScored PenaltyOutcome = "SCORED"
	PenaltyMissed PenaltyOutcome = "MISSED"
	PenaltySaved  PenaltyOutcome = "SAVED"
)

type CardKind string

const (
	CardYellow CardKind = "YELLOW"
	CardRed    CardKind = "RED"
)

// LineupEntry names one squad member for one side of a match.
type LineupEntry struct {
	PlayerID string
	TeamID   string
	Name     string
	Position player.Position
	Starter  bool
}

// SubstitutionEvent swaps PlayerOutID for PlayerInID at Minute.
type SubstitutionEvent struct {
	Minute      int
	PlayerOutID string
	PlayerInID  string
	TeamID      string
}

// GoalEvent credits a goal to TeamID. For own goals the scorer belongs to
// the opposing side. Outcome is meaningful only when Penalty is set.
type GoalEvent struct {
	ScorerID string
	AssistID string
	TeamID   string
	Minute   int
	Penalty  bool
	OwnGoal  bool
	Outcome  PenaltyOutcome
}

// Scored reports whether the event produced an actual goal.
func (g GoalEvent) Scored() bool {
	if !g.Penalty {
		return true
	}
	return g.Outcome == PenaltyScored || g.Outcome == ""
}

type CardEvent struct {
	PlayerID string
	Minute   int
	Kind     CardKind
}

// SaveEvent carries the aggregate save count for one goalkeeper, as
// reported per match rather than per save instance.
type SaveEvent struct {
	KeeperID string
	Count    int
}

// RawMatch is the unvalidated payload supplied by the fetch collaborator.
type RawMatch struct {
	ID             string
	Round          string
	HomeTeamID     string
	AwayTeamID     string
	KickoffAt      time.Time
	HomeScore      int
	AwayScore      int
	Status         string
	DeclaredLength int
	Lineups        []LineupEntry
	Substitutions  []SubstitutionEvent
	Goals          []GoalEvent
	Cards          []CardEvent
	Saves          []SaveEvent
}

type EventKind string

const (
	EventSubstitution EventKind = "SUBSTITUTION"
	EventGoal         EventKind = "GOAL"
	EventCard         EventKind = "CARD"
)

// Event is one entry of the normalized timeline. Seq is the stable
// insertion sequence used as the sort tiebreaker within a minute.
type Event struct {
	Seq    int
	Minute int
	Kind   EventKind
	Sub    *SubstitutionEvent
	Goal   *GoalEvent
	Card   *CardEvent
}

// Match is the validated, canonical form of a raw payload. Its timeline is
// ordered by (minute, insertion sequence) with duplicates collapsed.
type Match struct {
	ID         string
	Round      string
	HomeTeamID string
	AwayTeamID string
	KickoffAt  time.Time
	HomeScore  int
	AwayScore  int
	Status     string
	Length     int
	Lineups    []LineupEntry
	Timeline   []Event
	Saves      []SaveEvent
}

// Conceded returns the number of goals the given team let in.
func (m Match) Conceded(teamID string) int {
	switch teamID {
	case m.HomeTeamID:
		return m.AwayScore
	case m.AwayTeamID:
		return m.HomeScore
	default:
		return 0
	}
}

// OpponentOf returns the other side's team id.
func (m Match) OpponentOf(teamID string) string {
	if teamID == m.HomeTeamID {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}

func IsFinishedStatus(status string) bool {
	switch status {
	case StatusFinished, StatusRevised:
		return true
	default:
		return false
	}
}
