package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/matchpulse/fantasy-scoring/internal/usecase"
)

func (h *Handler) GetRoundTotals(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoundTotals")
	defer span.End()

	round := strings.TrimSpace(r.PathValue("round"))
	if round == "" {
		writeError(ctx, w, fmt.Errorf("%w: round path parameter is required", usecase.ErrInvalidInput))
		return
	}

	result, err := h.roundService.RoundTotals(ctx, round)
	if err != nil {
		h.logger.WarnContext(ctx, "get round totals failed", "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundResultToDTO(result))
}

func (h *Handler) ListTeamStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamStandings")
	defer span.End()

	standings, err := h.standingService.TeamStandings(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list team standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamStandingDTO, 0, len(standings))
	for _, row := range standings {
		items = append(items, teamStandingDTO{
			TeamID:       row.TeamID,
			Played:       row.Played,
			Wins:         row.Wins,
			Draws:        row.Draws,
			Losses:       row.Losses,
			GoalsFor:     row.GoalsFor,
			GoalsAgainst: row.GoalsAgainst,
			Points:       row.Points,
			Rank:         row.Rank,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
