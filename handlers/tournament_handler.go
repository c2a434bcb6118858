package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nihilantropy/ft-transcendence-sub006/middleware"
	"github.com/Nihilantropy/ft-transcendence-sub006/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// CreateHandler handles POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var creatorID *string
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		creatorID = &identity.UserID
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), creatorID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// JoinHandler handles POST /tournaments/{tournamentID}/join
func (h *TournamentHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	if id == "" {
		badRequestResponse(w, r, errors.New("missing tournamentID"))
		return
	}

	var input services.JoinTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// An authenticated caller joins as themselves regardless of body.
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		input.UserID = &identity.UserID
	}

	participant, err := h.tournamentService.JoinTournament(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler handles POST /tournaments/{tournamentID}/start
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	if id == "" {
		badRequestResponse(w, r, errors.New("missing tournamentID"))
		return
	}

	var requesterID *string
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		requesterID = &identity.UserID
	}

	tournament, err := h.tournamentService.StartTournament(r.Context(), id, requesterID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	if id == "" {
		badRequestResponse(w, r, errors.New("missing tournamentID"))
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListTournaments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BracketHandler handles GET /tournaments/{tournamentID}/bracket
func (h *TournamentHandler) BracketHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	if id == "" {
		badRequestResponse(w, r, errors.New("missing tournamentID"))
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": tournament.Bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
