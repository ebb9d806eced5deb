package match

import "github.com/matchpulse/fantasy-scoring/internal/domain/player"

// Appearance captures how long one squad member was on the pitch. From/To
// delimit the stint in match minutes; non-appearing players keep Minutes 0.
type Appearance struct {
	PlayerID string
	TeamID   string
	Position player.Position
	From     int
	To       int
	Minutes  int
}

// OnPitchAt reports whether the player was playing at the given minute.
func (a Appearance) OnPitchAt(minute int) bool {
	return a.Minutes > 0 && a.From <= minute && minute <= a.To
}

// Appearances derives per-player minutes from lineups and the substitution
// events of a normalized match. Starters begin at minute 0; a substituted-in
// player's stint runs to the match length unless they are substituted out
// themselves.
func Appearances(m Match) map[string]Appearance {
	out := make(map[string]Appearance, len(m.Lineups))
	onSince := make(map[string]int, len(m.Lineups))

	for _, entry := range m.Lineups {
		out[entry.PlayerID] = Appearance{
			PlayerID: entry.PlayerID,
			TeamID:   entry.TeamID,
			Position: entry.Position,
		}
		if entry.Starter {
			onSince[entry.PlayerID] = 0
		}
	}

	for _, event := range m.Timeline {
		if event.Kind != EventSubstitution {
			continue
		}
		sub := event.Sub
		if from, on := onSince[sub.PlayerOutID]; on {
			appearance := out[sub.PlayerOutID]
			appearance.From = from
			appearance.To = sub.Minute
			appearance.Minutes += sub.Minute - from
			out[sub.PlayerOutID] = appearance
			delete(onSince, sub.PlayerOutID)
		}
		if _, alreadyOn := onSince[sub.PlayerInID]; !alreadyOn {
			onSince[sub.PlayerInID] = sub.Minute
		}
	}

	for playerID, from := range onSince {
		appearance := out[playerID]
		appearance.From = from
		appearance.To = m.Length
		appearance.Minutes += m.Length - from
		out[playerID] = appearance
	}

	return out
}
