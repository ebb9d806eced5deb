package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/matchpulse/fantasy-scoring/internal/domain/match"
	"github.com/matchpulse/fantasy-scoring/internal/domain/player"
	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
	"github.com/matchpulse/fantasy-scoring/internal/usecase"
)

const maxRequestBodyBytes = 4 << 20

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, target any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.decodeRequest")
	defer span.End()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if err := sonic.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type lineupEntryPayload struct {
	PlayerID string `json:"player_id" validate:"required"`
	TeamID   string `json:"team_id" validate:"required"`
	Name     string `json:"name"`
	Position string `json:"position" validate:"required"`
	Starter  bool   `json:"starter"`
}

type substitutionPayload struct {
	Minute      int    `json:"minute" validate:"min=0"`
	PlayerOutID string `json:"player_out_id" validate:"required"`
	PlayerInID  string `json:"player_in_id" validate:"required"`
	TeamID      string `json:"team_id" validate:"required"`
}

type goalPayload struct {
	ScorerID string `json:"scorer_id" validate:"required"`
	AssistID string `json:"assist_id"`
	TeamID   string `json:"team_id" validate:"required"`
	Minute   int    `json:"minute" validate:"min=0"`
	Penalty  bool   `json:"penalty"`
	OwnGoal  bool   `json:"own_goal"`
	Outcome  string `json:"outcome" validate:"omitempty,oneof=SCORED MISSED SAVED"`
}

type cardPayload struct {
	PlayerID string `json:"player_id" validate:"required"`
	Minute   int    `json:"minute" validate:"min=0"`
	Kind     string `json:"kind" validate:"required,oneof=YELLOW RED"`
}

type savePayload struct {
	KeeperID string `json:"keeper_id" validate:"required"`
	Count    int    `json:"count" validate:"min=0"`
}

type rawMatchPayload struct {
	ID             string                `json:"id" validate:"required"`
	Round          string                `json:"round"`
	HomeTeamID     string                `json:"home_team_id" validate:"required"`
	AwayTeamID     string                `json:"away_team_id" validate:"required"`
	KickoffAt      time.Time             `json:"kickoff_at"`
	HomeScore      int                   `json:"home_score" validate:"min=0"`
	AwayScore      int                   `json:"away_score" validate:"min=0"`
	Status         string                `json:"status" validate:"required"`
	DeclaredLength int                   `json:"declared_length" validate:"min=0"`
	Lineups        []lineupEntryPayload  `json:"lineups" validate:"required,min=1,dive"`
	Substitutions  []substitutionPayload `json:"substitutions" validate:"dive"`
	Goals          []goalPayload         `json:"goals" validate:"dive"`
	Cards          []cardPayload         `json:"cards" validate:"dive"`
	Saves          []savePayload         `json:"saves" validate:"dive"`
}

func (p rawMatchPayload) toDomain() match.RawMatch {
	raw := match.RawMatch{
		ID:             p.ID,
		Round:          p.Round,
		HomeTeamID:     p.HomeTeamID,
		AwayTeamID:     p.AwayTeamID,
		KickoffAt:      p.KickoffAt,
		HomeScore:      p.HomeScore,
		AwayScore:      p.AwayScore,
		Status:         p.Status,
		DeclaredLength: p.DeclaredLength,
	}
	for _, entry := range p.Lineups {
		raw.Lineups = append(raw.Lineups, match.LineupEntry{
			PlayerID: entry.PlayerID,
			TeamID:   entry.TeamID,
			Name:     entry.Name,
			Position: player.Position(entry.Position),
			Starter:  entry.Starter,
		})
	}
	for _, sub := range p.Substitutions {
		raw.Substitutions = append(raw.Substitutions, match.SubstitutionEvent{
			Minute:      sub.Minute,
			PlayerOutID: sub.PlayerOutID,
			PlayerInID:  sub.PlayerInID,
			TeamID:      sub.TeamID,
		})
	}
	for _, goal := range p.Goals {
		raw.Goals = append(raw.Goals, match.GoalEvent{
			ScorerID: goal.ScorerID,
			AssistID: goal.AssistID,
			TeamID:   goal.TeamID,
			Minute:   goal.Minute,
			Penalty:  goal.Penalty,
			OwnGoal:  goal.OwnGoal,
			Outcome:  match.PenaltyOutcome(goal.Outcome),
		})
	}
	for _, card := range p.Cards {
		raw.Cards = append(raw.Cards, match.CardEvent{
			PlayerID: card.PlayerID,
			Minute:   card.Minute,
			Kind:     match.CardKind(card.Kind),
		})
	}
	for _, save := range p.Saves {
		raw.Saves = append(raw.Saves, match.SaveEvent{
			KeeperID: save.KeeperID,
			Count:    save.Count,
		})
	}
	return raw
}

type lineItemDTO struct {
	MatchID   string `json:"match_id,omitempty"`
	Round     string `json:"round"`
	PlayerID  string `json:"player_id"`
	TeamID    string `json:"team_id"`
	Category  string `json:"category"`
	Points    int    `json:"points"`
	SourceRef string `json:"source_ref,omitempty"`
}

func lineItemToDTO(item scoring.PointLineItem) lineItemDTO {
	return lineItemDTO{
		MatchID:   item.MatchID,
		Round:     item.Round,
		PlayerID:  item.PlayerID,
		TeamID:    item.TeamID,
		Category:  string(item.Category),
		Points:    item.Points,
		SourceRef: item.SourceRef,
	}
}

type roundTotalDTO struct {
	Round       string `json:"round"`
	PlayerID    string `json:"player_id"`
	BasePoints  int    `json:"base_points"`
	BonusPoints int    `json:"bonus_points"`
	Points      int    `json:"points"`
	Rank        int    `json:"rank"`
}

type roundResultDTO struct {
	Round      string          `json:"round"`
	Status     string          `json:"status"`
	Totals     []roundTotalDTO `json:"totals"`
	BonusItems []lineItemDTO   `json:"bonus_items,omitempty"`
}

func roundResultToDTO(result scoring.RoundResult) roundResultDTO {
	dto := roundResultDTO{
		Round:  result.Round,
		Status: result.Status,
		Totals: make([]roundTotalDTO, 0, len(result.Totals)),
	}
	for _, total := range result.Totals {
		dto.Totals = append(dto.Totals, roundTotalDTO{
			Round:       total.Round,
			PlayerID:    total.PlayerID,
			BasePoints:  total.BasePoints,
			BonusPoints: total.BonusPoints,
			Points:      total.Points,
			Rank:        total.Rank,
		})
	}
	for _, item := range result.BonusItems {
		dto.BonusItems = append(dto.BonusItems, lineItemToDTO(item))
	}
	return dto
}

type seasonRankingDTO struct {
	PlayerID         string `json:"player_id"`
	TotalPoints      int    `json:"total_points"`
	Rank             int    `json:"rank"`
	LastAppliedRound string `json:"last_applied_round,omitempty"`
	Revisions        int    `json:"revisions"`
}

type teamStandingDTO struct {
	TeamID       string `json:"team_id"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	Points       int    `json:"points"`
	Rank         int    `json:"rank"`
}

type topScorerDTO struct {
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
	Goals    int    `json:"goals"`
	Rank     int    `json:"rank"`
}
