package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/matchpulse/fantasy-scoring/internal/domain/match"
	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
	"github.com/matchpulse/fantasy-scoring/internal/platform/cache"
)

const standingsCacheKey = "standings:teams"

// StandingService builds the per-team league table from processed matches.
type StandingService struct {
	repo  scoring.Repository
	cache *cache.Store
}

func NewStandingService(repo scoring.Repository, store *cache.Store) *StandingService {
	return &StandingService{repo: repo, cache: store}
}

// TeamStandings computes the league table over all finished matches: three
// points per win, one per draw, sorted by points, goal difference, goals
// scored, then team id; tied teams share a rank.
func (s *StandingService) TeamStandings(ctx context.Context) ([]scoring.TeamStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.TeamStandings")
	defer span.End()

	load := func() (any, error) {
		return s.computeStandings(ctx)
	}

	if s.cache == nil {
		value, err := load()
		if err != nil {
			return nil, err
		}
		return value.([]scoring.TeamStanding), nil
	}

	value, err := s.cache.GetOrLoad(ctx, standingsCacheKey, load)
	if err != nil {
		return nil, err
	}
	return value.([]scoring.TeamStanding), nil
}

func (s *StandingService) computeStandings(ctx context.Context) ([]scoring.TeamStanding, error) {
	records, err := s.repo.ListMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches for standings: %w", err)
	}

	byTeam := make(map[string]*scoring.TeamStanding)
	row := func(teamID string) *scoring.TeamStanding {
		if existing, ok := byTeam[teamID]; ok {
			return existing
		}
		created := &scoring.TeamStanding{TeamID: teamID}
		byTeam[teamID] = created
		return created
	}

	for _, record := range records {
		if !match.IsFinishedStatus(record.Status) {
			continue
		}

		home := row(record.HomeTeamID)
		away := row(record.AwayTeamID)

		home.Played++
		away.Played++
		home.GoalsFor += record.HomeScore
		home.GoalsAgainst += record.AwayScore
		away.GoalsFor += record.AwayScore
		away.GoalsAgainst += record.HomeScore

		switch {
		case record.HomeScore > record.AwayScore:
			home.Wins++
			home.Points += 3
			away.Losses++
		case record.HomeScore < record.AwayScore:
			away.Wins++
			away.Points += 3
			home.Losses++
		default:
			home.Draws++
			away.Draws++
			home.Points++
			away.Points++
		}
	}

	standings := make([]scoring.TeamStanding, 0, len(byTeam))
	for _, standing := range byTeam {
		standings = append(standings, *standing)
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		diffI := standings[i].GoalsFor - standings[i].GoalsAgainst
		diffJ := standings[j].GoalsFor - standings[j].GoalsAgainst
		if diffI != diffJ {
			return diffI > diffJ
		}
		if standings[i].GoalsFor != standings[j].GoalsFor {
			return standings[i].GoalsFor > standings[j].GoalsFor
		}
		return standings[i].TeamID < standings[j].TeamID
	})

	rank := 0
	lastKey := [3]int{}
	for i := range standings {
		key := [3]int{
			standings[i].Points,
			standings[i].GoalsFor - standings[i].GoalsAgainst,
			standings[i].GoalsFor,
		}
		if i == 0 || key != lastKey {
			rank++
			lastKey = key
		}
		standings[i].Rank = rank
	}

	return standings, nil
}
