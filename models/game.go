package models

import "time"

// GameMode tells how a match was created and who sits on each side.
type GameMode string

const (
	ModeLocal       GameMode = "local"
	ModeMultiplayer GameMode = "multiplayer"
	ModeAI          GameMode = "ai"
	ModeTournament  GameMode = "tournament"
)

// GameStatus represents the lifecycle states of a match.
type GameStatus string

const (
	GameStatusWaiting   GameStatus = "waiting"
	GameStatusPlaying   GameStatus = "playing"
	GameStatusPaused    GameStatus = "paused"
	GameStatusFinished  GameStatus = "finished"
	GameStatusCancelled GameStatus = "cancelled"
)

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Opposite returns the other side of the court.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ball carries its speed alongside the velocity vector so collision
// responses can scale the direction without recomputing the magnitude.
type Ball struct {
	Position Vector2D `json:"position"`
	Velocity Vector2D `json:"velocity"`
	Size     float64  `json:"size"`
	Speed    float64  `json:"speed"`
}

// Paddle velocity is a sign (-1, 0, +1); actual travel per tick is
// velocity * PaddleSpeed * dt.
type Paddle struct {
	Side     Side    `json:"side"`
	Y        float64 `json:"y"`
	Height   float64 `json:"height"`
	Width    float64 `json:"width"`
	Velocity float64 `json:"velocity"`
}

// CenterY returns the y coordinate of the paddle's midpoint.
func (p Paddle) CenterY() float64 {
	return p.Y + p.Height/2
}

type Score struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

type PlayerKind string

const (
	PlayerKindHuman PlayerKind = "human"
	PlayerKindAI    PlayerKind = "ai"
)

type AIDifficulty string

const (
	DifficultyEasy   AIDifficulty = "easy"
	DifficultyMedium AIDifficulty = "medium"
	DifficultyHard   AIDifficulty = "hard"
)

// Player is an occupant of one side of a match. Human and AI occupants
// share the struct; Kind discriminates, and the AI-only fields are zero
// for humans.
type Player struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Side        Side       `json:"side"`
	Kind        PlayerKind `json:"kind"`
	IsReady     bool       `json:"is_ready"`
	IsConnected bool       `json:"is_connected"`

	Difficulty    AIDifficulty `json:"difficulty,omitempty"`
	LastThinkTick int64        `json:"-"`
	TargetY       float64      `json:"-"`
}

// GameConfig holds the simulation tuning for one match. All distances are
// in canvas units, all rates in ticks.
type GameConfig struct {
	CanvasWidth   float64 `json:"canvas_width"`
	CanvasHeight  float64 `json:"canvas_height"`
	PaddleWidth   float64 `json:"paddle_width"`
	PaddleHeight  float64 `json:"paddle_height"`
	PaddleSpeed   float64 `json:"paddle_speed"`
	BallSize      float64 `json:"ball_size"`
	BallSpeed     float64 `json:"ball_speed"`
	SpeedIncrease float64 `json:"speed_increase"`
	MaxBallSpeed  float64 `json:"max_ball_speed"`
	ScoreToWin    int     `json:"score_to_win"`
	TickRate      int     `json:"tick_rate"`
}

// DefaultConfig returns the standard court tuning.
func DefaultConfig() GameConfig {
	return GameConfig{
		CanvasWidth:   800,
		CanvasHeight:  600,
		PaddleWidth:   10,
		PaddleHeight:  100,
		PaddleSpeed:   5,
		BallSize:      10,
		BallSpeed:     5,
		SpeedIncrease: 0.5,
		MaxBallSpeed:  15,
		ScoreToWin:    5,
		TickRate:      60,
	}
}

// GameSnapshot is the consistent post-tick view of a match handed to the
// transport layer and the management surface. It never aliases live state.
type GameSnapshot struct {
	ID          string     `json:"id"`
	Mode        GameMode   `json:"mode"`
	Status      GameStatus `json:"status"`
	Config      GameConfig `json:"config"`
	LeftPlayer  *Player    `json:"left_player,omitempty"`
	RightPlayer *Player    `json:"right_player,omitempty"`
	Ball        Ball       `json:"ball"`
	LeftPaddle  Paddle     `json:"left_paddle"`
	RightPaddle Paddle     `json:"right_paddle"`
	Score       Score      `json:"score"`
	TickCount   int64      `json:"tick_count"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	WinnerID    *string    `json:"winner_id,omitempty"`
}

// CompletedGame is the record handed to the persistence collaborator when
// a match reaches a terminal state.
type CompletedGame struct {
	GameID       string    `json:"game_id"`
	Mode         GameMode  `json:"mode"`
	Participants []string  `json:"participants"`
	LeftScore    int       `json:"left_score"`
	RightScore   int       `json:"right_score"`
	WinnerID     string    `json:"winner_id"`
	DurationMs   int64     `json:"duration_ms"`
	FinishedAt   time.Time `json:"finished_at"`
}

// UserStats is the read side of the persistence collaborator.
type UserStats struct {
	UserID      string `json:"user_id"`
	GamesPlayed int    `json:"games_played"`
	GamesWon    int    `json:"games_won"`
	GamesLost   int    `json:"games_lost"`
}
