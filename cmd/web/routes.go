package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/quansodmg/Tournament-sub002/internal/bracket"
	"github.com/quansodmg/Tournament-sub002/internal/httputil"
	"github.com/quansodmg/Tournament-sub002/internal/roster"
	"github.com/quansodmg/Tournament-sub002/internal/service"
	"github.com/quansodmg/Tournament-sub002/internal/store"
)

func newRouter(dbConn *sqlx.DB, clock clockwork.Clock) http.Handler {
	tournamentStore := store.NewTournamentStore(dbConn)
	ratingStore := store.NewRatingStore(dbConn)
	rosterStore := store.NewRosterStore(dbConn)

	bracketService := service.NewBracketService(dbConn, tournamentStore)
	matchService := service.NewMatchService(dbConn, tournamentStore)
	ratingService := service.NewRatingService(dbConn, tournamentStore, ratingStore, clock)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Post("/teams", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			httputil.BadRequest(w, "Invalid team payload", err)
			return
		}
		team := &roster.Team{ID: uuid.New(), Name: req.Name}
		if err := rosterStore.CreateTeam(r.Context(), team); err != nil {
			httputil.InternalServerError(w, "Failed to create team", err)
			return
		}
		httputil.JSON(w, http.StatusCreated, map[string]string{"id": team.ID.String(), "name": team.Name})
	})

	r.Post("/profiles", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
			httputil.BadRequest(w, "Invalid profile payload", err)
			return
		}
		profile := &roster.Profile{ID: uuid.New(), Username: req.Username}
		if err := rosterStore.CreateProfile(r.Context(), profile); err != nil {
			httputil.InternalServerError(w, "Failed to create profile", err)
			return
		}
		httputil.JSON(w, http.StatusCreated, map[string]string{"id": profile.ID.String(), "username": profile.Username})
	})

	r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name             string `json:"name"`
			Game             string `json:"game"`
			IsTeamTournament bool   `json:"is_team_tournament"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			httputil.BadRequest(w, "Invalid tournament payload", err)
			return
		}
		tournament := &bracket.Tournament{
			ID:               uuid.New(),
			Name:             req.Name,
			Game:             req.Game,
			Status:           bracket.TournamentPending,
			BracketType:      bracket.SingleElimination,
			IsTeamTournament: req.IsTeamTournament,
		}
		if err := tournamentStore.CreateTournament(r.Context(), tournament); err != nil {
			httputil.InternalServerError(w, "Failed to create tournament", err)
			return
		}
		httputil.JSON(w, http.StatusCreated, map[string]string{"id": tournament.ID.String()})
	})

	r.Get("/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		data, err := bracketService.GetTournamentData(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				httputil.NotFound(w, "Tournament not found", err)
				return
			}
			httputil.InternalServerError(w, "Failed to get tournament", err)
			return
		}
		rounds, roundNums := bracket.GroupMatchesByRound(data.Matches)
		httputil.JSON(w, http.StatusOK, map[string]any{
			"tournament": data.Tournament,
			"rounds":     rounds,
			"round_nums": roundNums,
		})
	})

	r.Post("/tournaments/{id}/bracket", func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.BadRequest(w, "Invalid tournament ID", err)
			return
		}

		var req struct {
			ParticipantIDs   []uuid.UUID `json:"participant_ids"`
			IsTeamTournament bool        `json:"is_team_tournament"`
			BracketType      string      `json:"bracket_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, "Invalid bracket payload", err)
			return
		}
		bracketType := bracket.BracketType(req.BracketType)
		if bracketType == "" {
			bracketType = bracket.SingleElimination
		}

		err = bracketService.GenerateBracket(r.Context(), tournamentID, req.ParticipantIDs, req.IsTeamTournament, bracketType)
		switch {
		case errors.Is(err, service.ErrTooFewParticipants), errors.Is(err, service.ErrUnsupportedBracketType):
			httputil.BadRequest(w, err.Error(), err)
			return
		case errors.Is(err, service.ErrBracketExists):
			httputil.Conflict(w, err.Error(), err)
			return
		case err != nil:
			httputil.InternalServerError(w, "Failed to generate bracket", err)
			return
		}

		// Byes completed at generation still need their winners seeded
		// into round 2.
		if err := matchService.PlaceByeWinners(r.Context(), tournamentID); err != nil {
			httputil.InternalServerError(w, "Failed to place bye winners", err)
			return
		}

		httputil.JSON(w, http.StatusCreated, map[string]bool{"success": true})
	})

	r.Post("/matches/{id}/result", func(w http.ResponseWriter, r *http.Request) {
		matchID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.BadRequest(w, "Invalid match ID", err)
			return
		}

		var req struct {
			WinnerID    uuid.UUID `json:"winner_id"`
			WinnerScore int       `json:"winner_score"`
			LoserScore  int       `json:"loser_score"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, "Invalid result payload", err)
			return
		}

		err = matchService.ReportResult(r.Context(), matchID, req.WinnerID, req.WinnerScore, req.LoserScore)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			httputil.NotFound(w, "Match not found", err)
			return
		case errors.Is(err, service.ErrMatchAlreadyCompleted):
			httputil.Conflict(w, err.Error(), err)
			return
		case errors.Is(err, service.ErrMatchNotReady), errors.Is(err, service.ErrWinnerNotInMatch):
			httputil.BadRequest(w, err.Error(), err)
			return
		case err != nil:
			httputil.InternalServerError(w, "Failed to report result", err)
			return
		}

		httputil.JSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	r.Post("/matches/{id}/ratings", func(w http.ResponseWriter, r *http.Request) {
		matchID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.BadRequest(w, "Invalid match ID", err)
			return
		}

		err = ratingService.UpdateRatingsForMatch(r.Context(), matchID)
		switch {
		case errors.Is(err, service.ErrMatchNotFound):
			httputil.NotFound(w, err.Error(), err)
			return
		case errors.Is(err, service.ErrNoWinner):
			httputil.BadRequest(w, err.Error(), err)
			return
		case errors.Is(err, service.ErrAlreadyProcessed):
			httputil.Conflict(w, err.Error(), err)
			return
		case err != nil:
			httputil.InternalServerError(w, "Failed to update ratings", err)
			return
		}

		httputil.JSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	r.Post("/ratings/process", func(w http.ResponseWriter, r *http.Request) {
		processed, err := ratingService.ProcessPendingRatings(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to process pending ratings", err)
			return
		}
		httputil.JSON(w, http.StatusOK, map[string]int{"processed": processed})
	})

	r.Get("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		game := r.URL.Query().Get("game")
		limit := 25
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed < 1 {
				httputil.BadRequest(w, "Invalid limit", err)
				return
			}
			limit = parsed
		}

		entries, err := ratingService.Leaderboard(r.Context(), game, limit)
		if err != nil {
			httputil.InternalServerError(w, "Failed to get leaderboard", err)
			return
		}
		httputil.JSON(w, http.StatusOK, entries)
	})

	return r
}
