package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Nihilantropy/ft-transcendence-sub006/engine"
	"github.com/Nihilantropy/ft-transcendence-sub006/models"
	"github.com/Nihilantropy/ft-transcendence-sub006/repositories"
	"github.com/Nihilantropy/ft-transcendence-sub006/services"
)

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToRoom(roomID string, message any) {}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	repo := repositories.NewInMemoryGameRepository()
	logger := slog.New(slog.NewTextHandler(discardWriter{}, nil))
	registry := engine.NewRegistry(noopBroadcaster{}, repo, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		registry.Shutdown(ctx)
	})

	gameService := services.NewGameService(registry, repo, logger)
	handler := NewGameHandler(gameService)

	router := chi.NewRouter()
	router.Post("/games", handler.CreateHandler)
	router.Get("/games", handler.ListHandler)
	router.Get("/games/{gameID}", handler.GetByIDHandler)
	router.Delete("/games/{gameID}", handler.CancelHandler)
	router.Get("/users/{userID}/stats", handler.UserStatsHandler)
	return router
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateGameEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/games", `{"mode":"multiplayer"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Game models.GameSnapshot `json:"game"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Game.ID == "" || resp.Game.Status != models.GameStatusWaiting {
		t.Fatalf("unexpected game in response: %+v", resp.Game)
	}

	rec = doRequest(t, router, http.MethodGet, "/games/"+resp.Game.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateGameEndpointValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/games", `{"mode":"chess"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown mode should map to 422, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/games", `{"mode":"tournament"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("tournament mode should map to 422, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/games", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body should map to 400, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/games", `{"mode":"ai","bogus":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field should map to 400, got %d", rec.Code)
	}
}

func TestGameNotFoundMapsTo404(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/games/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodDelete, "/games/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCancelGameEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/games", `{"mode":"local"}`)
	var resp struct {
		Game models.GameSnapshot `json:"game"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = doRequest(t, router, http.MethodDelete, "/games/"+resp.Game.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestUserStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/users/u1/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Stats models.UserStats `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stats.UserID != "u1" || resp.Stats.GamesPlayed != 0 {
		t.Fatalf("expected zero stats for unknown user, got %+v", resp.Stats)
	}
}
