package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerScoringRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/rounds/{round}/matches", handler.IngestRoundMatches)
	mux.HandleFunc("POST /v1/matches/{matchID}/revise", handler.ReviseMatch)
	mux.HandleFunc("GET /v1/rounds/{round}/totals", handler.GetRoundTotals)
	mux.HandleFunc("GET /v1/season/standings", handler.ListTeamStandings)
	mux.HandleFunc("GET /v1/season/rankings", handler.ListSeasonRankings)
	mux.HandleFunc("GET /v1/season/topscorers", handler.ListTopScorers)
}
