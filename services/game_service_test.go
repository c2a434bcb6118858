package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Nihilantropy/ft-transcendence-sub006/engine"
	"github.com/Nihilantropy/ft-transcendence-sub006/models"
	"github.com/Nihilantropy/ft-transcendence-sub006/repositories"
)

func newTestGameService(t *testing.T) (GameService, *engine.Registry, *repositories.InMemoryGameRepository) {
	t.Helper()
	repo := repositories.NewInMemoryGameRepository()
	registry := engine.NewRegistry(&stubBroadcaster{}, repo, slog.New(slog.NewTextHandler(testWriter{t}, nil)))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		registry.Shutdown(ctx)
	})
	return NewGameService(registry, repo, nil), registry, repo
}

func TestCreateGameModes(t *testing.T) {
	svc, _, _ := newTestGameService(t)
	ctx := context.Background()

	snap, err := svc.CreateGame(ctx, CreateGameInput{Mode: models.ModeMultiplayer})
	if err != nil {
		t.Fatalf("CreateGame(multiplayer): %v", err)
	}
	if snap.Status != models.GameStatusWaiting {
		t.Fatalf("new game should be waiting, got %s", snap.Status)
	}

	snap, err = svc.CreateGame(ctx, CreateGameInput{Mode: models.ModeAI, Difficulty: models.DifficultyHard})
	if err != nil {
		t.Fatalf("CreateGame(ai): %v", err)
	}
	aiSeated := snap.RightPlayer != nil && snap.RightPlayer.Kind == models.PlayerKindAI
	if !aiSeated {
		t.Fatal("ai game should come with an ai opponent seated on the right")
	}
}

func TestCreateGameReservesOpponentSeat(t *testing.T) {
	svc, registry, _ := newTestGameService(t)
	ctx := context.Background()

	friend := "friend-42"
	snap, err := svc.CreateGame(ctx, CreateGameInput{Mode: models.ModeMultiplayer, OpponentID: &friend})
	if err != nil {
		t.Fatalf("CreateGame with opponent: %v", err)
	}
	if snap.RightPlayer == nil || snap.RightPlayer.ID != friend {
		t.Fatalf("right seat should be held for %s, got %+v", friend, snap.RightPlayer)
	}
	if snap.RightPlayer.IsConnected {
		t.Fatal("a reserved opponent is not connected until they join")
	}

	m, ok := registry.Get(snap.ID)
	if !ok {
		t.Fatalf("match %s not in registry", snap.ID)
	}
	// The held seat stays held: a third player finds the match full,
	// while the reserved opponent can still claim their side.
	if side, err := m.Join("host", "alice", ""); err != nil || side != models.SideLeft {
		t.Fatalf("host join: side=%s err=%v", side, err)
	}
	if _, err := m.Join("stranger", "eve", ""); err != engine.ErrMatchFull {
		t.Fatalf("stranger should find the match full, got %v", err)
	}
	side, err := m.Join(friend, "bob", "")
	if err != nil {
		t.Fatalf("reserved opponent join: %v", err)
	}
	if side != models.SideRight {
		t.Fatalf("reserved opponent should land on the right, got %s", side)
	}
}

func TestCreateGameRejectsOpponentOutsideMultiplayer(t *testing.T) {
	svc, _, _ := newTestGameService(t)
	ctx := context.Background()

	friend := "friend-42"
	for _, mode := range []models.GameMode{models.ModeLocal, models.ModeAI} {
		if _, err := svc.CreateGame(ctx, CreateGameInput{Mode: mode, OpponentID: &friend}); err == nil {
			t.Fatalf("opponent_id should be rejected for %s games", mode)
		}
	}
}

func TestCreateGameRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestGameService(t)
	ctx := context.Background()

	if _, err := svc.CreateGame(ctx, CreateGameInput{Mode: "chess"}); err == nil {
		t.Fatal("unknown mode should be rejected")
	}
	if _, err := svc.CreateGame(ctx, CreateGameInput{Mode: models.ModeTournament}); err == nil {
		t.Fatal("tournament mode should not be creatable directly")
	}
	if _, err := svc.CreateGame(ctx, CreateGameInput{Mode: models.ModeAI, Difficulty: "impossible"}); err == nil {
		t.Fatal("unknown difficulty should be rejected")
	}
}

func TestGetAndCancelGame(t *testing.T) {
	svc, _, _ := newTestGameService(t)
	ctx := context.Background()

	snap, err := svc.CreateGame(ctx, CreateGameInput{Mode: models.ModeLocal})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	got, err := svc.GetGame(ctx, snap.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.ID != snap.ID {
		t.Fatalf("expected game %s, got %s", snap.ID, got.ID)
	}

	if err := svc.CancelGame(ctx, snap.ID); err != nil {
		t.Fatalf("CancelGame: %v", err)
	}
	if _, err := svc.GetGame(ctx, "no-such-game"); err != ErrGameNotFound {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestGetUserStats(t *testing.T) {
	svc, _, repo := newTestGameService(t)
	ctx := context.Background()

	// No recorded games yet: zero stats, not an error.
	stats, err := svc.GetUserStats(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserStats(empty): %v", err)
	}
	if stats.GamesPlayed != 0 {
		t.Fatalf("expected zero games, got %d", stats.GamesPlayed)
	}

	repo.RecordCompletedGame(ctx, models.CompletedGame{
		GameID:       "g1",
		Mode:         models.ModeMultiplayer,
		Participants: []string{"u1", "u2"},
		WinnerID:     "u1",
		FinishedAt:   time.Now(),
	})
	repo.RecordCompletedGame(ctx, models.CompletedGame{
		GameID:       "g2",
		Mode:         models.ModeMultiplayer,
		Participants: []string{"u1", "u3"},
		WinnerID:     "u3",
		FinishedAt:   time.Now(),
	})

	stats, err = svc.GetUserStats(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if stats.GamesPlayed != 2 || stats.GamesWon != 1 || stats.GamesLost != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRecordCompletedGameIdempotent(t *testing.T) {
	repo := repositories.NewInMemoryGameRepository()
	ctx := context.Background()

	record := models.CompletedGame{
		GameID:       "g1",
		Participants: []string{"u1", "u2"},
		WinnerID:     "u2",
	}
	repo.RecordCompletedGame(ctx, record)
	repo.RecordCompletedGame(ctx, record)

	stats, err := repo.GetUserStats(ctx, "u2")
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if stats.GamesPlayed != 1 {
		t.Fatalf("duplicate record should not double count, got %d", stats.GamesPlayed)
	}
}
