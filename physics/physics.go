// Package physics implements the deterministic simulation rules for a
// match: ball integration, wall and paddle collision response, scoring
// detection and the trajectory projection used by the AI controller.
// Everything here is a pure function over model values; the tick loop in
// the engine package owns all state.
package physics

import (
	"math"
	"math/rand"

	"github.com/Nihilantropy/ft-transcendence-sub006/models"
)

// Serve angles stay within ±45° of horizontal so a fresh ball never
// starts on a near-vertical trajectory.
const maxServeAngle = math.Pi / 4

// NewBall returns a ball resting at the center of the court with no
// velocity.
func NewBall(cfg models.GameConfig) models.Ball {
	return models.Ball{
		Position: models.Vector2D{X: cfg.CanvasWidth / 2, Y: cfg.CanvasHeight / 2},
		Size:     cfg.BallSize,
		Speed:    cfg.BallSpeed,
	}
}

// NewPaddle returns a paddle for the given side, vertically centered.
func NewPaddle(cfg models.GameConfig, side models.Side) models.Paddle {
	p := models.Paddle{
		Side:   side,
		Y:      cfg.CanvasHeight/2 - cfg.PaddleHeight/2,
		Height: cfg.PaddleHeight,
		Width:  cfg.PaddleWidth,
	}
	return p
}

// ResetBall places the ball at center court and serves it at base speed.
// When towardSide is set the serve is biased toward that side (the side
// that just conceded); otherwise the horizontal direction is random. The
// caller supplies the rng so runs stay reproducible from a seed.
func ResetBall(cfg models.GameConfig, rng *rand.Rand, towardSide models.Side) models.Ball {
	angle := (rng.Float64()*2 - 1) * maxServeAngle

	dir := 1.0
	switch towardSide {
	case models.SideLeft:
		dir = -1
	case models.SideRight:
		dir = 1
	default:
		if rng.Float64() < 0.5 {
			dir = -1
		}
	}

	return models.Ball{
		Position: models.Vector2D{X: cfg.CanvasWidth / 2, Y: cfg.CanvasHeight / 2},
		Velocity: models.Vector2D{
			X: dir * cfg.BallSpeed * math.Cos(angle),
			Y: cfg.BallSpeed * math.Sin(angle),
		},
		Size:  cfg.BallSize,
		Speed: cfg.BallSpeed,
	}
}

// UpdateBallPosition integrates position by velocity over a fixed logical
// dt. Wall-clock elapsed time is deliberately not used: identical inputs
// must produce identical trajectories regardless of scheduler jitter.
func UpdateBallPosition(ball models.Ball, dt float64) models.Ball {
	ball.Position.X += ball.Velocity.X * dt
	ball.Position.Y += ball.Velocity.Y * dt
	return ball
}

// CheckWallCollision reports whether the ball overlaps the top or bottom
// edge of the court.
func CheckWallCollision(ball models.Ball, cfg models.GameConfig) bool {
	r := ball.Size / 2
	return ball.Position.Y-r <= 0 || ball.Position.Y+r >= cfg.CanvasHeight
}

// HandleWallCollision reflects the vertical velocity component and clamps
// the ball back inside the court. Horizontal velocity is untouched.
func HandleWallCollision(ball models.Ball, cfg models.GameConfig) models.Ball {
	r := ball.Size / 2
	if ball.Position.Y-r <= 0 {
		ball.Position.Y = r
		ball.Velocity.Y = math.Abs(ball.Velocity.Y)
	} else if ball.Position.Y+r >= cfg.CanvasHeight {
		ball.Position.Y = cfg.CanvasHeight - r
		ball.Velocity.Y = -math.Abs(ball.Velocity.Y)
	}
	return ball
}

// CheckPaddleCollision runs an axis-aligned bounding box test between the
// ball and the paddle rectangle.
func CheckPaddleCollision(ball models.Ball, paddle models.Paddle, cfg models.GameConfig) bool {
	r := ball.Size / 2

	var paddleX float64
	if paddle.Side == models.SideLeft {
		paddleX = 0
	} else {
		paddleX = cfg.CanvasWidth - paddle.Width
	}

	return ball.Position.X-r <= paddleX+paddle.Width &&
		ball.Position.X+r >= paddleX &&
		ball.Position.Y+r >= paddle.Y &&
		ball.Position.Y-r <= paddle.Y+paddle.Height
}

// HandlePaddleCollision reflects the ball off a paddle. The outgoing
// vertical velocity is proportional to the hit offset from the paddle
// center, so edge hits deflect sharply and center hits return flat. Each
// hit speeds the ball up by the configured increment, capped at
// MaxBallSpeed.
func HandlePaddleCollision(ball models.Ball, paddle models.Paddle, cfg models.GameConfig) models.Ball {
	r := ball.Size / 2

	speed := math.Min(ball.Speed+cfg.SpeedIncrease, cfg.MaxBallSpeed)

	// Offset in [-1, 1] from the paddle center.
	offset := (ball.Position.Y - paddle.CenterY()) / (paddle.Height / 2)
	offset = math.Max(-1, math.Min(1, offset))

	angle := offset * maxServeAngle

	if paddle.Side == models.SideLeft {
		ball.Velocity.X = speed * math.Cos(angle)
		ball.Position.X = paddle.Width + r
	} else {
		ball.Velocity.X = -speed * math.Cos(angle)
		ball.Position.X = cfg.CanvasWidth - paddle.Width - r
	}
	ball.Velocity.Y = speed * math.Sin(angle)
	ball.Speed = speed

	return ball
}

// CheckScore returns the side that conceded when the ball has fully
// crossed that side's boundary, or the empty Side otherwise.
func CheckScore(ball models.Ball, cfg models.GameConfig) models.Side {
	r := ball.Size / 2
	if ball.Position.X+r < 0 {
		return models.SideLeft
	}
	if ball.Position.X-r > cfg.CanvasWidth {
		return models.SideRight
	}
	return ""
}

// PredictBallPosition projects the ball's current trajectory to the given
// x coordinate, folding the path at the top and bottom walls with the same
// reflection law as HandleWallCollision, and returns the y coordinate on
// arrival. If the ball is not moving toward targetX the current y is
// returned.
func PredictBallPosition(ball models.Ball, cfg models.GameConfig, targetX float64) float64 {
	dx := targetX - ball.Position.X
	if ball.Velocity.X == 0 || dx*ball.Velocity.X < 0 {
		return ball.Position.Y
	}

	t := dx / ball.Velocity.X
	y := ball.Position.Y + ball.Velocity.Y*t

	// Fold the unbounded y back into the court, mirror style. The travel
	// band for the ball center is [r, canvasHeight-r].
	r := ball.Size / 2
	span := cfg.CanvasHeight - 2*r
	if span <= 0 {
		return ball.Position.Y
	}

	y -= r
	period := 2 * span
	y = math.Mod(y, period)
	if y < 0 {
		y += period
	}
	if y > span {
		y = period - y
	}
	return y + r
}

// UpdatePaddlePosition moves the paddle by its velocity sign over dt and
// clamps it to the court bounds.
func UpdatePaddlePosition(paddle models.Paddle, cfg models.GameConfig, dt float64) models.Paddle {
	paddle.Y += paddle.Velocity * cfg.PaddleSpeed * dt
	paddle.Y = math.Max(0, math.Min(cfg.CanvasHeight-paddle.Height, paddle.Y))
	return paddle
}
