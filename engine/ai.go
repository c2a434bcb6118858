package engine

import (
	"math"

	"github.com/Nihilantropy/ft-transcendence-sub006/models"
	"github.com/Nihilantropy/ft-transcendence-sub006/physics"
)

// The AI steers with the same three discrete inputs a human has: up,
// down, stop. The dead zone keeps it from jittering around the target.
const aiDeadZone = 10.0

// errorMagnitude maps difficulty to the size of the aiming error, in
// canvas units.
func errorMagnitude(d models.AIDifficulty) float64 {
	switch d {
	case models.DifficultyHard:
		return 5
	case models.DifficultyMedium:
		return 30
	default:
		return 100
	}
}

// runAI drives every AI occupant for the current tick: recompute the
// target if a think cycle is due, then steer toward it.
func (m *Match) runAI() {
	for _, p := range []*models.Player{m.leftPlayer, m.rightPlayer} {
		if p == nil || p.Kind != models.PlayerKindAI {
			continue
		}
		m.aiThink(p)
		m.aiSteer(p)
	}
}

// aiThink recomputes the target paddle position at most once per
// simulated second, regardless of tick rate. Between think cycles the
// last target stands.
func (m *Match) aiThink(p *models.Player) {
	if m.tickCount-p.LastThinkTick < int64(m.cfg.TickRate) {
		return
	}
	p.LastThinkTick = m.tickCount

	movingToward := (p.Side == models.SideRight && m.ball.Velocity.X > 0) ||
		(p.Side == models.SideLeft && m.ball.Velocity.X < 0)
	if !movingToward {
		// Ball heading the other way: drift back to center court.
		p.TargetY = m.cfg.CanvasHeight / 2
		return
	}

	var targetX float64
	if p.Side == models.SideLeft {
		targetX = m.cfg.PaddleWidth
	} else {
		targetX = m.cfg.CanvasWidth - m.cfg.PaddleWidth
	}

	predicted := physics.PredictBallPosition(m.ball, m.cfg, targetX)
	p.TargetY = predicted + (m.rng.Float64()-0.5)*errorMagnitude(p.Difficulty)
}

// aiSteer converts the distance to the target into a discrete paddle
// input, exactly like a held arrow key.
func (m *Match) aiSteer(p *models.Player) {
	paddle := m.paddleFor(p.Side)
	diff := p.TargetY - paddle.CenterY()
	switch {
	case math.Abs(diff) <= aiDeadZone:
		paddle.Velocity = 0
	case diff > 0:
		paddle.Velocity = 1
	default:
		paddle.Velocity = -1
	}
}
