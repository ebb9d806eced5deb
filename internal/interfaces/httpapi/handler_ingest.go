package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/matchpulse/fantasy-scoring/internal/domain/match"
	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
	"github.com/matchpulse/fantasy-scoring/internal/usecase"
)

type ingestRoundRequest struct {
	Partial bool              `json:"partial"`
	Matches []rawMatchPayload `json:"matches" validate:"required,min=1,dive"`
}

type ingestOutcomeDTO struct {
	MatchID   string `json:"match_id"`
	LineItems int    `json:"line_items"`
	Error     string `json:"error,omitempty"`
}

type ingestRoundResponseDTO struct {
	Round    string             `json:"round"`
	Outcomes []ingestOutcomeDTO `json:"outcomes"`
	Result   roundResultDTO     `json:"result"`
	Applied  bool               `json:"applied"`
}

// IngestRoundMatches scores a batch of raw match payloads, recomputes the
// round, and applies it to the season ranking once the round is final.
func (h *Handler) IngestRoundMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestRoundMatches")
	defer span.End()

	round := strings.TrimSpace(r.PathValue("round"))
	if round == "" {
		writeError(ctx, w, fmt.Errorf("%w: round path parameter is required", usecase.ErrInvalidInput))
		return
	}

	var req ingestRoundRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	raws := make([]match.RawMatch, 0, len(req.Matches))
	for _, payload := range req.Matches {
		raw := payload.toDomain()
		if raw.Round == "" {
			raw.Round = round
		}
		if raw.Round != round {
			writeError(ctx, w, fmt.Errorf("%w: match %s carries round %s, path says %s",
				usecase.ErrInvalidInput, raw.ID, raw.Round, round))
			return
		}
		raws = append(raws, raw)
	}

	outcomes, err := h.matchService.ProcessRound(ctx, round, raws)
	if err != nil {
		h.logger.WarnContext(ctx, "round ingestion failed", "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	result, err := h.roundService.ComputeRound(ctx, round, req.Partial)
	if err != nil {
		h.logger.WarnContext(ctx, "round computation failed", "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	applied := false
	if result.Status == scoring.RoundStatusFinal {
		if err := h.rankingService.ApplyRound(ctx, result); err != nil {
			h.logger.WarnContext(ctx, "apply round to season failed", "round", round, "error", err)
			writeError(ctx, w, err)
			return
		}
		applied = true
	}

	response := ingestRoundResponseDTO{
		Round:    round,
		Outcomes: make([]ingestOutcomeDTO, 0, len(outcomes)),
		Result:   roundResultToDTO(result),
		Applied:  applied,
	}
	for _, outcome := range outcomes {
		row := ingestOutcomeDTO{MatchID: outcome.MatchID, LineItems: outcome.LineItems}
		if outcome.Err != nil {
			row.Error = outcome.Err.Error()
		}
		response.Outcomes = append(response.Outcomes, row)
	}

	writeSuccess(ctx, w, http.StatusOK, response)
}

// ReviseMatch replaces a previously scored match and propagates the point
// difference through round totals and the season ranking.
func (h *Handler) ReviseMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReviseMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if matchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: matchID path parameter is required", usecase.ErrInvalidInput))
		return
	}

	var payload rawMatchPayload
	if err := h.decodeRequest(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if payload.ID == "" {
		payload.ID = matchID
	}
	if payload.ID != matchID {
		writeError(ctx, w, fmt.Errorf("%w: payload match id %s does not match path id %s",
			usecase.ErrInvalidInput, payload.ID, matchID))
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.rankingService.Revise(ctx, payload.toDomain())
	if err != nil {
		h.logger.WarnContext(ctx, "match revision failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundResultToDTO(result))
}
