package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/matchpulse/fantasy-scoring/internal/platform/logging"
	"github.com/matchpulse/fantasy-scoring/internal/usecase"
)

type Handler struct {
	matchService    *usecase.MatchService
	roundService    *usecase.RoundService
	rankingService  *usecase.RankingService
	standingService *usecase.StandingService
	topScoreService *usecase.TopScoreService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	roundService *usecase.RoundService,
	rankingService *usecase.RankingService,
	standingService *usecase.StandingService,
	topScoreService *usecase.TopScoreService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:    matchService,
		roundService:    roundService,
		rankingService:  rankingService,
		standingService: standingService,
		topScoreService: topScoreService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
