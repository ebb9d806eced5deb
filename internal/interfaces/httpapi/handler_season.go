package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/matchpulse/fantasy-scoring/internal/usecase"
)

const defaultTopScorerLimit = 10

func (h *Handler) ListSeasonRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasonRankings")
	defer span.End()

	rankings, err := h.rankingService.Rankings(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list season rankings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonRankingDTO, 0, len(rankings))
	for _, row := range rankings {
		items = append(items, seasonRankingDTO{
			PlayerID:         row.PlayerID,
			TotalPoints:      row.TotalPoints,
			Rank:             row.Rank,
			LastAppliedRound: row.LastAppliedRound,
			Revisions:        row.Revisions,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTopScorers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTopScorers")
	defer span.End()

	limit := defaultTopScorerLimit
	rawLimit := strings.TrimSpace(r.URL.Query().Get("limit"))
	if rawLimit != "" {
		value, err := strconv.Atoi(rawLimit)
		if err != nil || value <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = value
	}

	scorers, err := h.topScoreService.ListTopScorers(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list top scorers failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]topScorerDTO, 0, len(scorers))
	for _, row := range scorers {
		items = append(items, topScorerDTO{
			PlayerID: row.PlayerID,
			TeamID:   row.TeamID,
			Goals:    row.Goals,
			Rank:     row.Rank,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
