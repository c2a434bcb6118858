package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nihilantropy/ft-transcendence-sub006/services"
)

type GameHandler struct {
	gameService services.GameService
}

func NewGameHandler(gs services.GameService) *GameHandler {
	return &GameHandler{gameService: gs}
}

// CreateHandler handles POST /games
func (h *GameHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /games/{gameID}
func (h *GameHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gameID")
	if id == "" {
		badRequestResponse(w, r, errors.New("missing gameID"))
		return
	}

	game, err := h.gameService.GetGame(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /games
func (h *GameHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.ListGames(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelHandler handles DELETE /games/{gameID}
func (h *GameHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gameID")
	if id == "" {
		badRequestResponse(w, r, errors.New("missing gameID"))
		return
	}

	if err := h.gameService.CancelGame(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UserStatsHandler handles GET /users/{userID}/stats
func (h *GameHandler) UserStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		badRequestResponse(w, r, errors.New("missing userID"))
		return
	}

	stats, err := h.gameService.GetUserStats(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
