package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matchpulse/fantasy-scoring/internal/domain/player"
)

// NormalizeStatus maps free-form feed statuses onto the canonical set.
func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	switch status {
	case "", StatusScheduled, "NS", "TBD":
		return StatusScheduled
	case StatusLive, "IN_PLAY", "HT", "1H", "2H", "ET":
		return StatusLive
	case StatusFinished, "FT", "AET", "PEN":
		return StatusFinished
	case StatusRevised, "CORRECTED":
		return StatusRevised
	default:
		return status
	}
}

// Normalize validates a raw payload and produces the canonical match with an
// ordered, deduplicated event timeline. Validation is deliberately strict:
// scoring on inconsistent data must never silently proceed.
func Normalize(raw RawMatch) (Match, error) {
	if raw.ID == "" {
		return Match{}, fmt.Errorf("%w: match id is required", ErrMalformedMatch)
	}
	if raw.Round == "" {
		return Match{}, fmt.Errorf("%w: round is required", ErrMalformedMatch)
	}
	if raw.HomeTeamID == "" || raw.AwayTeamID == "" {
		return Match{}, fmt.Errorf("%w: both team ids are required", ErrMalformedMatch)
	}
	if raw.HomeTeamID == raw.AwayTeamID {
		return Match{}, fmt.Errorf("%w: home and away team must differ", ErrMalformedMatch)
	}
	if raw.HomeScore < 0 || raw.AwayScore < 0 {
		return Match{}, fmt.Errorf("%w: final score cannot be negative", ErrMalformedMatch)
	}

	status := NormalizeStatus(raw.Status)
	switch status {
	case StatusScheduled, StatusLive, StatusFinished, StatusRevised:
	default:
		return Match{}, fmt.Errorf("%w: unrecognized status %q", ErrMalformedMatch, raw.Status)
	}

	if len(raw.Lineups) == 0 {
		return Match{}, fmt.Errorf("%w: lineups are required", ErrMalformedMatch)
	}

	teamByPlayer := make(map[string]string, len(raw.Lineups))
	positionByPlayer := make(map[string]player.Position, len(raw.Lineups))
	for _, entry := range raw.Lineups {
		if entry.PlayerID == "" {
			return Match{}, fmt.Errorf("%w: lineup entry without player id", ErrMalformedMatch)
		}
		if entry.TeamID != raw.HomeTeamID && entry.TeamID != raw.AwayTeamID {
			return Match{}, fmt.Errorf("%w: lineup player %s references unknown team %s", ErrMalformedMatch, entry.PlayerID, entry.TeamID)
		}
		if _, ok := player.AllPositions[entry.Position]; !ok {
			return Match{}, fmt.Errorf("%w: lineup player %s has no position", ErrMalformedMatch, entry.PlayerID)
		}
		if _, exists := teamByPlayer[entry.PlayerID]; exists {
			return Match{}, fmt.Errorf("%w: duplicate lineup player %s", ErrMalformedMatch, entry.PlayerID)
		}
		teamByPlayer[entry.PlayerID] = entry.TeamID
		positionByPlayer[entry.PlayerID] = entry.Position
	}

	timeline := make([]Event, 0, len(raw.Substitutions)+len(raw.Goals)+len(raw.Cards))
	seen := make(map[string]struct{})
	seq := 0

	appendEvent := func(key string, event Event) {
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		event.Seq = seq
		seq++
		timeline = append(timeline, event)
	}

	for _, sub := range raw.Substitutions {
		if err := checkMinute(sub.Minute); err != nil {
			return Match{}, fmt.Errorf("substitution at minute %d: %w", sub.Minute, err)
		}
		if _, ok := teamByPlayer[sub.PlayerOutID]; !ok {
			return Match{}, fmt.Errorf("%w: substitution references unknown player %s", ErrMalformedMatch, sub.PlayerOutID)
		}
		if _, ok := teamByPlayer[sub.PlayerInID]; !ok {
			return Match{}, fmt.Errorf("%w: substitution references unknown player %s", ErrMalformedMatch, sub.PlayerInID)
		}
		sub := sub
		key := fmt.Sprintf("sub:%s:%s:%d", sub.PlayerOutID, sub.PlayerInID, sub.Minute)
		appendEvent(key, Event{Minute: sub.Minute, Kind: EventSubstitution, Sub: &sub})
	}

	for _, goal := range raw.Goals {
		if err := checkMinute(goal.Minute); err != nil {
			return Match{}, fmt.Errorf("goal at minute %d: %w", goal.Minute, err)
		}
		if goal.ScorerID == "" {
			return Match{}, fmt.Errorf("%w: goal without scorer", ErrMalformedMatch)
		}
		scorerTeam, ok := teamByPlayer[goal.ScorerID]
		if !ok {
			return Match{}, fmt.Errorf("%w: goal references unknown scorer %s", ErrMalformedMatch, goal.ScorerID)
		}
		if goal.TeamID != raw.HomeTeamID && goal.TeamID != raw.AwayTeamID {
			return Match{}, fmt.Errorf("%w: goal credited to unknown team %s", ErrMalformedMatch, goal.TeamID)
		}
		if goal.OwnGoal {
			if goal.AssistID != "" {
				return Match{}, fmt.Errorf("%w: own goal by %s cannot carry an assist", ErrMalformedMatch, goal.ScorerID)
			}
			if scorerTeam == goal.TeamID {
				return Match{}, fmt.Errorf("%w: own goal scorer %s plays for the credited team", ErrMalformedMatch, goal.ScorerID)
			}
		} else if scorerTeam != goal.TeamID {
			return Match{}, fmt.Errorf("%w: scorer %s does not play for the credited team", ErrMalformedMatch, goal.ScorerID)
		}
		if goal.AssistID != "" {
			if _, ok := teamByPlayer[goal.AssistID]; !ok {
				return Match{}, fmt.Errorf("%w: goal references unknown assist %s", ErrMalformedMatch, goal.AssistID)
			}
		}
		if goal.Penalty {
			switch goal.Outcome {
			case PenaltyScored, PenaltyMissed, PenaltySaved:
			default:
				return Match{}, fmt.Errorf("%w: penalty by %s has outcome %q", ErrMalformedMatch, goal.ScorerID, goal.Outcome)
			}
		} else if goal.Outcome != "" {
			return Match{}, fmt.Errorf("%w: non-penalty goal by %s carries outcome %q", ErrMalformedMatch, goal.ScorerID, goal.Outcome)
		}
		goal := goal
		key := fmt.Sprintf("goal:%s:%d", goal.ScorerID, goal.Minute)
		appendEvent(key, Event{Minute: goal.Minute, Kind: EventGoal, Goal: &goal})
	}

	for _, card := range raw.Cards {
		if err := checkMinute(card.Minute); err != nil {
			return Match{}, fmt.Errorf("card at minute %d: %w", card.Minute, err)
		}
		if _, ok := teamByPlayer[card.PlayerID]; !ok {
			return Match{}, fmt.Errorf("%w: card references unknown player %s", ErrMalformedMatch, card.PlayerID)
		}
		if card.Kind != CardYellow && card.Kind != CardRed {
			return Match{}, fmt.Errorf("%w: unrecognized card kind %q", ErrMalformedMatch, card.Kind)
		}
		card := card
		key := fmt.Sprintf("card:%s:%s:%d", card.Kind, card.PlayerID, card.Minute)
		appendEvent(key, Event{Minute: card.Minute, Kind: EventCard, Card: &card})
	}

	saves := make([]SaveEvent, 0, len(raw.Saves))
	seenKeepers := make(map[string]struct{}, len(raw.Saves))
	for _, save := range raw.Saves {
		if save.Count < 0 {
			return Match{}, fmt.Errorf("%w: negative save count for %s", ErrMalformedMatch, save.KeeperID)
		}
		if _, ok := teamByPlayer[save.KeeperID]; !ok {
			return Match{}, fmt.Errorf("%w: saves reference unknown player %s", ErrMalformedMatch, save.KeeperID)
		}
		if positionByPlayer[save.KeeperID] != player.PositionGoalkeeper {
			return Match{}, fmt.Errorf("%w: saves credited to outfield player %s", ErrMalformedMatch, save.KeeperID)
		}
		if _, dup := seenKeepers[save.KeeperID]; dup {
			continue
		}
		seenKeepers[save.KeeperID] = struct{}{}
		saves = append(saves, save)
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		if timeline[i].Minute != timeline[j].Minute {
			return timeline[i].Minute < timeline[j].Minute
		}
		return timeline[i].Seq < timeline[j].Seq
	})

	if err := checkScoreConsistency(raw, timeline); err != nil {
		return Match{}, err
	}

	return Match{
		ID:         raw.ID,
		Round:      raw.Round,
		HomeTeamID: raw.HomeTeamID,
		AwayTeamID: raw.AwayTeamID,
		KickoffAt:  raw.KickoffAt,
		HomeScore:  raw.HomeScore,
		AwayScore:  raw.AwayScore,
		Status:     status,
		Length:     matchLength(raw.DeclaredLength, timeline),
		Lineups:    append([]LineupEntry(nil), raw.Lineups...),
		Timeline:   timeline,
		Saves:      saves,
	}, nil
}

func checkMinute(minute int) error {
	if minute < 1 || minute > MaxEventMinute {
		return fmt.Errorf("%w: minute out of range [1,%d]", ErrMalformedMatch, MaxEventMinute)
	}
	return nil
}

// checkScoreConsistency requires the declared final score to equal, per side,
// the scored goals credited to that side. Own goals are already credited to
// the benefiting team, so no separate adjustment is needed here.
func checkScoreConsistency(raw RawMatch, timeline []Event) error {
	homeGoals := 0
	awayGoals := 0
	for _, event := range timeline {
		if event.Kind != EventGoal || !event.Goal.Scored() {
			continue
		}
		if event.Goal.TeamID == raw.HomeTeamID {
			homeGoals++
		} else {
			awayGoals++
		}
	}

	if homeGoals != raw.HomeScore || awayGoals != raw.AwayScore {
		return fmt.Errorf("%w: declared score %d:%d does not match goal events %d:%d",
			ErrMalformedMatch, raw.HomeScore, raw.AwayScore, homeGoals, awayGoals)
	}
	return nil
}

func matchLength(declared int, timeline []Event) int {
	length := declared
	if length <= 0 {
		length = DefaultLength
	}
	for _, event := range timeline {
		if event.Minute > length {
			length = event.Minute
		}
	}
	return length
}
