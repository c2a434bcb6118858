package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Nihilantropy/ft-transcendence-sub006/engine"
	"github.com/Nihilantropy/ft-transcendence-sub006/middleware"
	"github.com/Nihilantropy/ft-transcendence-sub006/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin once it is deployed.
		return true
	},
}

// WebSocketHandler upgrades connections and routes inbound game
// traffic to the engine.
type WebSocketHandler struct {
	hub      *realtime.Hub
	registry *engine.Registry
	logger   *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, registry *engine.Registry, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{hub: hub, registry: registry, logger: logger}
}

// ServeWs handles GET /ws.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection", slog.Any("error", err))
		return
	}

	h.startClient(r, conn, "")
}

// ServeTournamentWs handles GET /ws/tournaments/{tournamentID}. The
// client lands in the tournament room and receives bracket updates
// without joining a game.
func (h *WebSocketHandler) ServeTournamentWs(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		http.Error(w, "Missing tournamentID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection", slog.Any("error", err))
		return
	}
	h.startClient(r, conn, "tournament_"+tournamentID)
}

func (h *WebSocketHandler) startClient(r *http.Request, conn *websocket.Conn, room string) {
	client := realtime.NewClient(h.hub, conn, h, h.logger)
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		client.UserID = identity.UserID
		client.Username = identity.Username
	}
	h.hub.Register <- client
	if room != "" {
		go client.Subscribe(room)
	}

	go client.WritePump()
	go client.ReadPump()
}

// HandleEnvelope implements realtime.Dispatcher.
func (h *WebSocketHandler) HandleEnvelope(client *realtime.Client, env realtime.Envelope) {
	switch env.Type {
	case realtime.TypeJoinGame:
		h.handleJoin(client, env)
	case realtime.TypeReady:
		h.handleReady(client, env)
	case realtime.TypeInput:
		h.handleInput(client, env)
	case realtime.TypePause:
		h.withMatch(client, func(m *engine.Match) {
			if err := m.Pause(); err != nil {
				client.SendError("pause_rejected", err.Error())
			}
		})
	case realtime.TypeResume:
		h.withMatch(client, func(m *engine.Match) {
			if err := m.Resume(); err != nil {
				client.SendError("resume_rejected", err.Error())
			}
		})
	case realtime.TypeLeaveGame:
		h.withMatch(client, func(m *engine.Match) {
			m.Leave(client.PlayerID)
		})
		// The room subscription stays: the leaver must still receive the
		// game_ended fan-out their forfeit triggers.
		client.GameID = ""
		client.PlayerID = ""
	case realtime.TypeWatchGame:
		h.handleWatch(client, env)
	default:
		client.SendError("unknown_type", "unsupported message type: "+env.Type)
	}
}

// HandleDisconnect implements realtime.Dispatcher. A dropped socket
// does not end the match; the player can reconnect.
func (h *WebSocketHandler) HandleDisconnect(client *realtime.Client) {
	if client.GameID == "" || client.PlayerID == "" {
		return
	}
	if m, ok := h.registry.Get(client.GameID); ok {
		m.MarkDisconnected(client.PlayerID)
	}
}

func (h *WebSocketHandler) handleJoin(client *realtime.Client, env realtime.Envelope) {
	payload, err := realtime.DecodePayload[realtime.JoinGamePayload](env)
	if err != nil {
		client.SendError("bad_payload", err.Error())
		return
	}
	if payload.GameID == "" {
		client.SendError("bad_payload", "gameId is required")
		return
	}

	m, ok := h.registry.Get(payload.GameID)
	if !ok {
		client.SendError("game_not_found", "no such game: "+payload.GameID)
		return
	}

	playerID := payload.UserID
	username := payload.Username
	if client.UserID != "" {
		playerID = client.UserID
		if client.Username != "" {
			username = client.Username
		}
	}
	if playerID == "" {
		playerID = uuid.NewString()
	}
	if username == "" {
		username = "guest"
	}

	side, err := m.Join(playerID, username, "")
	if err != nil {
		client.SendError("join_rejected", err.Error())
		return
	}

	client.GameID = payload.GameID
	client.PlayerID = playerID
	client.Subscribe("game_" + payload.GameID)

	client.Send(realtime.Message{
		Type: realtime.TypePlayerJoined,
		Payload: realtime.PlayerJoinedPayload{
			GameID:   payload.GameID,
			PlayerID: playerID,
			Username: username,
			Side:     side,
		},
	})
}

func (h *WebSocketHandler) handleReady(client *realtime.Client, env realtime.Envelope) {
	payload, err := realtime.DecodePayload[realtime.ReadyPayload](env)
	if err != nil {
		client.SendError("bad_payload", err.Error())
		return
	}
	ready := true
	if payload.IsReady != nil {
		ready = *payload.IsReady
	}
	h.withMatch(client, func(m *engine.Match) {
		if err := m.SetReady(client.PlayerID, ready); err != nil {
			client.SendError("ready_rejected", err.Error())
		}
	})
}

// handleWatch subscribes the client to a game room without taking a
// seat. Spectators get the current snapshot immediately, then the same
// per-tick stream as the players.
func (h *WebSocketHandler) handleWatch(client *realtime.Client, env realtime.Envelope) {
	payload, err := realtime.DecodePayload[realtime.WatchGamePayload](env)
	if err != nil {
		client.SendError("bad_payload", err.Error())
		return
	}
	if payload.GameID == "" {
		client.SendError("bad_payload", "gameId is required")
		return
	}

	m, ok := h.registry.Get(payload.GameID)
	if !ok {
		client.SendError("game_not_found", "no such game: "+payload.GameID)
		return
	}
	client.Subscribe("game_" + payload.GameID)

	snap, err := m.State()
	if err != nil {
		return
	}
	client.Send(realtime.Message{
		Type: realtime.TypeGameState,
		Payload: realtime.GameStatePayload{
			Ball:        snap.Ball,
			LeftPaddle:  snap.LeftPaddle,
			RightPaddle: snap.RightPaddle,
			Score:       snap.Score,
			TickCount:   snap.TickCount,
		},
	})
}

func (h *WebSocketHandler) handleInput(client *realtime.Client, env realtime.Envelope) {
	payload, err := realtime.DecodePayload[realtime.InputPayload](env)
	if err != nil {
		client.SendError("bad_payload", err.Error())
		return
	}

	var action engine.InputAction
	switch payload.Action {
	case "up":
		action = engine.ActionUp
	case "down":
		action = engine.ActionDown
	case "stop":
		action = engine.ActionStop
	default:
		client.SendError("bad_payload", "unknown input action: "+payload.Action)
		return
	}
	h.withMatch(client, func(m *engine.Match) {
		if payload.Side != "" {
			m.HandleInputForSide(client.PlayerID, payload.Side, action)
			return
		}
		m.HandleInput(client.PlayerID, action)
	})
}

func (h *WebSocketHandler) withMatch(client *realtime.Client, fn func(*engine.Match)) {
	if client.GameID == "" || client.PlayerID == "" {
		client.SendError("not_in_game", "join a game first")
		return
	}
	m, ok := h.registry.Get(client.GameID)
	if !ok {
		client.SendError("game_not_found", "game no longer exists")
		return
	}
	fn(m)
}
