package app

import (
	"fmt"
	"net/http"

	"github.com/matchpulse/fantasy-scoring/internal/config"
	"github.com/matchpulse/fantasy-scoring/internal/domain/scoring"
	"github.com/matchpulse/fantasy-scoring/internal/infrastructure/repository/memory"
	"github.com/matchpulse/fantasy-scoring/internal/infrastructure/repository/postgres"
	"github.com/matchpulse/fantasy-scoring/internal/interfaces/httpapi"
	"github.com/matchpulse/fantasy-scoring/internal/platform/cache"
	idgen "github.com/matchpulse/fantasy-scoring/internal/platform/id"
	"github.com/matchpulse/fantasy-scoring/internal/platform/logging"
	"github.com/matchpulse/fantasy-scoring/internal/usecase"
)

// NewHTTPServer wires the full pipeline behind an HTTP server. The returned
// cleanup closes the database connection when one was opened.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var repo scoring.Repository
	cleanup := func() error { return nil }
	if cfg.DBURL != "" {
		db, err := openDB(cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		repo = postgres.NewScoringRepository(db)
		cleanup = db.Close
		logger.Info("storage backend selected", "backend", "postgres")
	} else {
		repo = memory.NewScoringRepository()
		logger.Info("storage backend selected", "backend", "memory")
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	table := scoring.DefaultRuleTable()
	table.Bonus = scoring.BonusPolicy{TierPoints: cfg.BonusTierPoints}

	matchSvc, err := usecase.NewMatchService(repo, table, cfg.DefaultMatchLength, cfg.ScoringWorkers, logger)
	if err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("build match service: %w", err)
	}
	roundSvc := usecase.NewRoundService(repo, table.Bonus, store, logger)
	rankingSvc := usecase.NewRankingService(repo, matchSvc, roundSvc, logger)
	standingSvc := usecase.NewStandingService(repo, store)
	topScoreSvc := usecase.NewTopScoreService(repo)

	handler := httpapi.NewHandler(matchSvc, roundSvc, rankingSvc, standingSvc, topScoreSvc, logger)
	router := httpapi.NewRouter(handler, idgen.NewRandomGenerator(), logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}
