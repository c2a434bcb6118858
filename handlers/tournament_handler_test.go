package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Nihilantropy/ft-transcendence-sub006/brackets"
	"github.com/Nihilantropy/ft-transcendence-sub006/models"
	"github.com/Nihilantropy/ft-transcendence-sub006/services"
)

func newTournamentRouter(t *testing.T) *chi.Mux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(discardWriter{}, nil))
	svc := services.NewTournamentService(
		brackets.NewSingleEliminationGenerator(),
		nil,
		noopBroadcaster{},
		nil,
		logger,
	)
	handler := NewTournamentHandler(svc)

	router := chi.NewRouter()
	router.Post("/tournaments", handler.CreateHandler)
	router.Get("/tournaments", handler.ListHandler)
	router.Get("/tournaments/{tournamentID}", handler.GetByIDHandler)
	router.Get("/tournaments/{tournamentID}/bracket", handler.BracketHandler)
	router.Post("/tournaments/{tournamentID}/join", handler.JoinHandler)
	router.Post("/tournaments/{tournamentID}/start", handler.StartHandler)
	return router
}

func TestTournamentLifecycleOverHTTP(t *testing.T) {
	router := newTournamentRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/tournaments", `{"name":"weekly","max_players":4}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Tournament models.Tournament `json:"tournament"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	id := created.Tournament.ID

	for _, alias := range []string{"ada", "grace", "alan", "edsger"} {
		body := fmt.Sprintf(`{"alias":%q}`, alias)
		rec = doRequest(t, router, http.MethodPost, "/tournaments/"+id+"/join", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("join %s: expected 201, got %d: %s", alias, rec.Code, rec.Body.String())
		}
	}

	// Duplicate alias conflicts.
	rec = doRequest(t, router, http.MethodPost, "/tournaments/"+id+"/join", `{"alias":"ada"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate alias: expected 409, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/tournaments/"+id+"/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var started struct {
		Tournament models.Tournament `json:"tournament"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode start response: %v", err)
	}
	if started.Tournament.Status != models.TournamentActive {
		t.Fatalf("expected active tournament, got %s", started.Tournament.Status)
	}
	if started.Tournament.Bracket == nil || len(started.Tournament.Bracket.Matches) != 3 {
		t.Fatalf("expected a 3-match bracket, got %+v", started.Tournament.Bracket)
	}

	rec = doRequest(t, router, http.MethodGet, "/tournaments/"+id+"/bracket", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("bracket: expected 200, got %d", rec.Code)
	}

	// Joining after start conflicts.
	rec = doRequest(t, router, http.MethodPost, "/tournaments/"+id+"/join", `{"alias":"late"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("late join: expected 409, got %d", rec.Code)
	}
}

func TestTournamentValidationOverHTTP(t *testing.T) {
	router := newTournamentRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/tournaments", `{"name":"","max_players":4}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty name: expected 422, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/tournaments", `{"name":"x","max_players":3}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad max_players: expected 422, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/tournaments/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected 404, got %d", rec.Code)
	}
}
