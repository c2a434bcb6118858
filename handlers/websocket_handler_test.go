package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/Nihilantropy/ft-transcendence-sub006/engine"
	"github.com/Nihilantropy/ft-transcendence-sub006/models"
	"github.com/Nihilantropy/ft-transcendence-sub006/realtime"
)

func newDispatcherFixture(t *testing.T) (*WebSocketHandler, *realtime.Hub, *engine.Registry) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(discardWriter{}, nil))
	hub := realtime.NewHub(logger)
	go hub.Run()
	registry := engine.NewRegistry(hub, nil, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		registry.Shutdown(ctx)
	})
	return NewWebSocketHandler(hub, registry, logger), hub, registry
}

func envelope(t *testing.T, msgType string, payload any) realtime.Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return realtime.Envelope{Type: msgType, Payload: raw}
}

// Room membership changes flow through the hub's own goroutine, so the
// observable state trails the dispatcher call slightly.
func waitForRoomSize(t *testing.T, hub *realtime.Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.RoomSize(room) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s never reached size %d, got %d", room, want, hub.RoomSize(room))
}

func TestWatchGameSubscribesWithoutSeat(t *testing.T) {
	h, hub, registry := newDispatcherFixture(t)
	match, err := registry.CreateMatch(engine.CreateMatchParams{Mode: models.ModeMultiplayer})
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	spectator := realtime.NewClient(hub, nil, h, nil)
	hub.Register <- spectator

	h.HandleEnvelope(spectator, envelope(t, realtime.TypeWatchGame, realtime.WatchGamePayload{GameID: match.ID()}))

	waitForRoomSize(t, hub, "game_"+match.ID(), 1)
	if spectator.GameID != "" || spectator.PlayerID != "" {
		t.Fatal("watching must not bind the client to a seat")
	}
	snap, err := match.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if snap.LeftPlayer != nil || snap.RightPlayer != nil {
		t.Fatal("a spectator must not occupy a seat")
	}
}

func TestWatchGameUnknownID(t *testing.T) {
	h, hub, _ := newDispatcherFixture(t)

	spectator := realtime.NewClient(hub, nil, h, nil)
	hub.Register <- spectator

	h.HandleEnvelope(spectator, envelope(t, realtime.TypeWatchGame, realtime.WatchGamePayload{GameID: "nope"}))
	if got := hub.RoomSize("game_nope"); got != 0 {
		t.Fatalf("watching a missing game must not create a room, got %d", got)
	}
}

func TestLeaveGameKeepsRoomForFinalBroadcast(t *testing.T) {
	h, hub, registry := newDispatcherFixture(t)
	match, err := registry.CreateMatch(engine.CreateMatchParams{Mode: models.ModeMultiplayer})
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	room := "game_" + match.ID()

	leaver := realtime.NewClient(hub, nil, h, nil)
	opponent := realtime.NewClient(hub, nil, h, nil)
	hub.Register <- leaver
	hub.Register <- opponent

	h.HandleEnvelope(leaver, envelope(t, realtime.TypeJoinGame, realtime.JoinGamePayload{GameID: match.ID(), UserID: "p1", Username: "alice"}))
	h.HandleEnvelope(opponent, envelope(t, realtime.TypeJoinGame, realtime.JoinGamePayload{GameID: match.ID(), UserID: "p2", Username: "bob"}))
	h.HandleEnvelope(leaver, envelope(t, realtime.TypeReady, realtime.ReadyPayload{}))
	h.HandleEnvelope(opponent, envelope(t, realtime.TypeReady, realtime.ReadyPayload{}))
	waitForRoomSize(t, hub, room, 2)

	h.HandleEnvelope(leaver, realtime.Envelope{Type: realtime.TypeLeaveGame})

	if leaver.GameID != "" || leaver.PlayerID != "" {
		t.Fatal("leaving should clear the game binding")
	}
	// The subscription survives the leave so the forfeit's game_ended
	// still reaches the leaver.
	if got := hub.RoomSize(room); got != 2 {
		t.Fatalf("leaver should stay in the room, got size %d", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err := match.State()
		if err == nil && snap.Status == models.GameStatusFinished {
			if snap.WinnerID == nil || *snap.WinnerID != "p2" {
				t.Fatalf("opponent should win by forfeit, got %v", snap.WinnerID)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("forfeit never finished the match")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLocalInputRoutesBySide(t *testing.T) {
	h, hub, registry := newDispatcherFixture(t)
	match, err := registry.CreateMatch(engine.CreateMatchParams{Mode: models.ModeLocal})
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	client := realtime.NewClient(hub, nil, h, nil)
	hub.Register <- client

	h.HandleEnvelope(client, envelope(t, realtime.TypeJoinGame, realtime.JoinGamePayload{GameID: match.ID(), UserID: "solo", Username: "sam"}))
	h.HandleEnvelope(client, envelope(t, realtime.TypeReady, realtime.ReadyPayload{}))

	snap, err := match.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if snap.Status != models.GameStatusPlaying {
		t.Fatalf("local match should start after one ready, got %q", snap.Status)
	}

	h.HandleEnvelope(client, envelope(t, realtime.TypeInput, realtime.InputPayload{Action: "up", Side: models.SideRight}))

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err := match.State()
		if err != nil {
			t.Fatalf("State: %v", err)
		}
		if snap.RightPaddle.Velocity == -1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("side-addressed input never reached the right paddle")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
