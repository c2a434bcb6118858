package realtime

import (
	"encoding/json"

	"github.com/Nihilantropy/ft-transcendence-sub006/models"
)

// Client -> server message types.
const (
	TypeJoinGame  = "join_game"
	TypeReady     = "ready"
	TypeInput     = "input"
	TypePause     = "pause"
	TypeResume    = "resume"
	TypeLeaveGame = "leave_game"
	TypeWatchGame = "watch_game"
)

// Server -> client message types.
const (
	TypeGameCreated        = "game_created"
	TypePlayerJoined       = "player_joined"
	TypePlayerReady        = "player_ready"
	TypeGameStarting       = "game_starting"
	TypeGameState          = "game_state"
	TypeGamePaused         = "game_paused"
	TypeGameResumed        = "game_resumed"
	TypeGameEnded          = "game_ended"
	TypePlayerDisconnected = "player_disconnected"
	TypeError              = "error"

	TypeBracketUpdated      = "bracket_updated"
	TypeTournamentCompleted = "tournament_completed"
)

// Envelope frames every inbound message. The payload stays raw until the
// type is known.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message frames every outbound message.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// DecodePayload unmarshals an envelope payload into a concrete type.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Payload) == 0 {
		return out, nil
	}
	err := json.Unmarshal(env.Payload, &out)
	return out, err
}

type JoinGamePayload struct {
	GameID   string `json:"gameId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type ReadyPayload struct {
	IsReady *bool `json:"isReady,omitempty"` // absent means ready
}

type InputPayload struct {
	Action string `json:"action"` // up | down | stop
	// Side addresses one of the two paddles a local-mode client drives.
	// Omitted in every other mode.
	Side      models.Side `json:"side,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

// WatchGamePayload subscribes a client to a game room as a spectator.
type WatchGamePayload struct {
	GameID string `json:"gameId"`
}

type PlayerJoinedPayload struct {
	GameID   string      `json:"gameId"`
	PlayerID string      `json:"playerId"`
	Username string      `json:"username"`
	Side     models.Side `json:"side"`
}

type PlayerReadyPayload struct {
	PlayerID string `json:"playerId"`
	IsReady  bool   `json:"isReady"`
}

type GameStatePayload struct {
	Ball        models.Ball   `json:"ball"`
	LeftPaddle  models.Paddle `json:"leftPaddle"`
	RightPaddle models.Paddle `json:"rightPaddle"`
	Score       models.Score  `json:"score"`
	TickCount   int64         `json:"tickCount"`
}

type GameEndedPayload struct {
	WinnerID   string       `json:"winnerId"`
	FinalScore models.Score `json:"finalScore"`
	DurationMs int64        `json:"durationMs"`
}

type PlayerDisconnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
