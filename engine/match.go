// Package engine owns the per-match simulation: one goroutine per active
// match drives the fixed-rate tick loop and is the only writer of that
// match's state. Inputs, joins and lifecycle requests arrive as commands
// on a mailbox and are applied between ticks, so clients always observe
// fully consistent snapshots.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/Nihilantropy/ft-transcendence-sub006/models"
	"github.com/Nihilantropy/ft-transcendence-sub006/physics"
	"github.com/Nihilantropy/ft-transcendence-sub006/realtime"
)

const recordTimeout = 5 * time.Second

// localCompanionSuffix distinguishes the second paddle of a local match,
// which shares the one real client's connection.
const localCompanionSuffix = "/p2"

// Broadcaster fans a message out to every connection subscribed to a
// room. Satisfied by realtime.Hub.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message any)
}

// ResultSink receives the final record of a completed match. Persistence
// itself lives outside the engine.
type ResultSink interface {
	RecordCompletedGame(ctx context.Context, record models.CompletedGame) error
}

// Result summarizes a terminated match for the owner of the OnFinish hook.
type Result struct {
	GameID    string
	Mode      models.GameMode
	WinnerID  string
	Score     models.Score
	Duration  time.Duration
	Cancelled bool
}

// InputAction is a paddle steering command from a client.
type InputAction string

const (
	ActionUp   InputAction = "up"
	ActionDown InputAction = "down"
	ActionStop InputAction = "stop"
)

// Options carries everything a match needs at construction time.
type Options struct {
	ID          string
	Mode        models.GameMode
	Config      models.GameConfig
	Seed        int64
	Broadcaster Broadcaster
	Recorder    ResultSink
	Logger      *slog.Logger
	// AllowedPlayers restricts which human ids may take a seat. Empty
	// means the match is open to anyone.
	AllowedPlayers []string
	// ReservedOpponentID pre-seats the named player on the right side.
	// The seat is held, marked disconnected, until they join.
	ReservedOpponentID string
	// OnFinish runs once when the match reaches finished or cancelled.
	// Called outside the actor goroutine.
	OnFinish func(Result)
}

// Match is the aggregate root for one game session. All fields below the
// mailbox are owned by the actor goroutine; external callers interact
// through the exported methods only.
type Match struct {
	id          string
	mode        models.GameMode
	cfg         models.GameConfig
	broadcaster Broadcaster
	recorder    ResultSink
	onFinish    func(Result)
	logger      *slog.Logger

	inbox    chan any
	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once

	allowed map[string]bool // nil when the match is open

	status      models.GameStatus
	leftPlayer  *models.Player
	rightPlayer *models.Player
	ball        models.Ball
	leftPaddle  models.Paddle
	rightPaddle models.Paddle
	score       models.Score
	tickCount   int64
	startTime   *time.Time
	endTime     *time.Time
	winnerID    *string
	rng         *rand.Rand
	ticker      *time.Ticker
}

// Mailbox commands. Reply channels are buffered with capacity 1 so the
// actor never blocks on a departed caller.
type joinCmd struct {
	id         string
	username   string
	preferred  models.Side
	kind       models.PlayerKind
	difficulty models.AIDifficulty
	reply      chan joinReply
}

type joinReply struct {
	side models.Side
	err  error
}

type readyCmd struct {
	id    string
	ready bool
	reply chan error
}

type inputCmd struct {
	id     string
	side   models.Side // set only in local mode to address a paddle
	action InputAction
}

type pauseCmd struct{ reply chan error }
type resumeCmd struct{ reply chan error }
type leaveCmd struct{ id string }
type disconnectCmd struct{ id string }
type cancelCmd struct{ reason string }
type stateCmd struct{ reply chan models.GameSnapshot }

// NewMatch builds a match in the waiting state. Run must be called for
// the match to make progress.
func NewMatch(opts Options) *Match {
	cfg := opts.Config
	if cfg.TickRate <= 0 {
		cfg = models.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Match{
		id:          opts.ID,
		mode:        opts.Mode,
		cfg:         cfg,
		broadcaster: opts.Broadcaster,
		recorder:    opts.Recorder,
		onFinish:    opts.OnFinish,
		logger:      logger.With(slog.String("game_id", opts.ID)),
		inbox:       make(chan any, 256),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		status:      models.GameStatusWaiting,
		rng:         rand.New(rand.NewSource(opts.Seed)),
	}
	m.ball = physics.NewBall(cfg)
	m.leftPaddle = physics.NewPaddle(cfg, models.SideLeft)
	m.rightPaddle = physics.NewPaddle(cfg, models.SideRight)

	if len(opts.AllowedPlayers) > 0 {
		m.allowed = make(map[string]bool, len(opts.AllowedPlayers))
		for _, id := range opts.AllowedPlayers {
			m.allowed[id] = true
		}
	}
	if opts.ReservedOpponentID != "" {
		if m.allowed != nil {
			m.allowed[opts.ReservedOpponentID] = true
		}
		// Seated before Run starts, so no mailbox round-trip is needed.
		m.rightPlayer = &models.Player{
			ID:   opts.ReservedOpponentID,
			Side: models.SideRight,
			Kind: models.PlayerKindHuman,
		}
	}
	return m
}

// ID returns the match identifier.
func (m *Match) ID() string { return m.id }

// Mode returns the match mode.
func (m *Match) Mode() models.GameMode { return m.mode }

// Run is the actor loop. A panic inside a tick is contained here: the
// match transitions to cancelled and other matches are unaffected.
func (m *Match) Run() {
	defer close(m.done)
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("match tick panicked", slog.Any("panic", r))
			m.cancel(fmt.Sprintf("internal error: %v", r))
		}
	}()

	for {
		select {
		case <-m.quit:
			m.stopTicker()
			return
		case cmd := <-m.inbox:
			m.handleCommand(cmd)
		case <-m.tickC():
			m.tick()
		}
	}
}

// Stop terminates the actor. Idempotent.
func (m *Match) Stop() {
	m.quitOnce.Do(func() { close(m.quit) })
}

// tickC returns nil while the scheduler is stopped; a nil channel never
// fires in the select above.
func (m *Match) tickC() <-chan time.Time {
	if m.ticker == nil {
		return nil
	}
	return m.ticker.C
}

func (m *Match) startTicker() {
	if m.ticker == nil {
		m.ticker = time.NewTicker(time.Second / time.Duration(m.cfg.TickRate))
	}
}

func (m *Match) stopTicker() {
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}

// send delivers a command unless the actor has already exited.
func (m *Match) send(cmd any) bool {
	select {
	case m.inbox <- cmd:
		return true
	case <-m.done:
		return false
	}
}

// Join assigns the player a side. The preferred side is honored when
// free; otherwise the first free side is used.
func (m *Match) Join(id, username string, preferred models.Side) (models.Side, error) {
	return m.join(joinCmd{id: id, username: username, preferred: preferred, kind: models.PlayerKindHuman})
}

// JoinAI seats an AI occupant on the given side.
func (m *Match) JoinAI(side models.Side, difficulty models.AIDifficulty) (models.Side, error) {
	return m.join(joinCmd{
		id:         "ai-" + m.id,
		username:   "AI",
		preferred:  side,
		kind:       models.PlayerKindAI,
		difficulty: difficulty,
	})
}

func (m *Match) join(cmd joinCmd) (models.Side, error) {
	cmd.reply = make(chan joinReply, 1)
	if !m.send(cmd) {
		return "", ErrMatchClosed
	}
	select {
	case r := <-cmd.reply:
		return r.side, r.err
	case <-m.done:
		return "", ErrMatchClosed
	}
}

// SetReady flips an occupant's readiness. When both occupants are ready
// in the waiting state the match starts playing.
func (m *Match) SetReady(id string, ready bool) error {
	cmd := readyCmd{id: id, ready: ready, reply: make(chan error, 1)}
	if !m.send(cmd) {
		return ErrMatchClosed
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-m.done:
		return ErrMatchClosed
	}
}

// HandleInput steers an occupant's paddle. Ignored outside the playing
// state; never blocks the tick loop.
func (m *Match) HandleInput(id string, action InputAction) {
	m.enqueueInput(inputCmd{id: id, action: action})
}

// HandleInputForSide steers a specific paddle of a local match, where
// one connection owns both sides.
func (m *Match) HandleInputForSide(id string, side models.Side, action InputAction) {
	m.enqueueInput(inputCmd{id: id, side: side, action: action})
}

func (m *Match) enqueueInput(cmd inputCmd) {
	select {
	case m.inbox <- cmd:
	default:
		// Inbox full: dropping a single steering command is harmless,
		// blocking the transport reader is not.
	}
}

// Pause stops the tick scheduler. Valid only while playing.
func (m *Match) Pause() error {
	cmd := pauseCmd{reply: make(chan error, 1)}
	if !m.send(cmd) {
		return ErrMatchClosed
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-m.done:
		return ErrMatchClosed
	}
}

// Resume restarts the tick scheduler. Valid only while paused.
func (m *Match) Resume() error {
	cmd := resumeCmd{reply: make(chan error, 1)}
	if !m.send(cmd) {
		return ErrMatchClosed
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-m.done:
		return ErrMatchClosed
	}
}

// Leave removes the player. During play a leaving occupant forfeits.
func (m *Match) Leave(id string) {
	m.send(leaveCmd{id: id})
}

// MarkDisconnected flags the occupant as disconnected without ending the
// match; their paddle stops receiving input.
func (m *Match) MarkDisconnected(id string) {
	m.send(disconnectCmd{id: id})
}

// Cancel force-terminates a non-finished match.
func (m *Match) Cancel(reason string) {
	m.send(cancelCmd{reason: reason})
}

// State returns a consistent snapshot, serialized through the mailbox so
// it never observes a half-applied tick.
func (m *Match) State() (models.GameSnapshot, error) {
	cmd := stateCmd{reply: make(chan models.GameSnapshot, 1)}
	if !m.send(cmd) {
		return models.GameSnapshot{}, ErrMatchClosed
	}
	select {
	case snap := <-cmd.reply:
		return snap, nil
	case <-m.done:
		return models.GameSnapshot{}, ErrMatchClosed
	}
}

func (m *Match) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		side, err := m.addOccupant(c)
		c.reply <- joinReply{side: side, err: err}
	case readyCmd:
		c.reply <- m.setReady(c.id, c.ready)
	case inputCmd:
		m.applyInput(c)
	case pauseCmd:
		c.reply <- m.pause()
	case resumeCmd:
		c.reply <- m.resume()
	case leaveCmd:
		m.handleLeave(c.id)
	case disconnectCmd:
		m.handleDisconnect(c.id)
	case cancelCmd:
		m.cancel(c.reason)
	case stateCmd:
		c.reply <- m.snapshot()
	}
}

func (m *Match) addOccupant(c joinCmd) (models.Side, error) {
	if existing := m.occupantByID(c.id); existing != nil {
		// A held reservation or a dropped socket lands here: the player
		// reclaims their seat, even mid-game.
		if existing.IsConnected {
			return "", ErrAlreadyJoined
		}
		existing.IsConnected = true
		if c.username != "" {
			existing.Username = c.username
		}
		m.broadcast(realtime.TypePlayerJoined, realtime.PlayerJoinedPayload{
			GameID:   m.id,
			PlayerID: existing.ID,
			Username: existing.Username,
			Side:     existing.Side,
		})
		m.maybeStart()
		return existing.Side, nil
	}
	if m.allowed != nil && c.kind == models.PlayerKindHuman && !m.allowed[c.id] {
		return "", ErrNotEligible
	}
	if m.status != models.GameStatusWaiting {
		return "", ErrMatchAlreadyStarted
	}

	var side models.Side
	switch {
	case c.preferred == models.SideLeft && m.leftPlayer == nil:
		side = models.SideLeft
	case c.preferred == models.SideRight && m.rightPlayer == nil:
		side = models.SideRight
	case m.leftPlayer == nil:
		side = models.SideLeft
	case m.rightPlayer == nil:
		side = models.SideRight
	default:
		return "", ErrMatchFull
	}

	p := &models.Player{
		ID:          c.id,
		Username:    c.username,
		Side:        side,
		Kind:        c.kind,
		IsConnected: true,
	}
	if c.kind == models.PlayerKindAI {
		p.Difficulty = c.difficulty
		if p.Difficulty == "" {
			p.Difficulty = models.DifficultyMedium
		}
		// Due for a think cycle on the very first tick.
		p.LastThinkTick = -int64(m.cfg.TickRate)
		p.TargetY = m.cfg.CanvasHeight / 2
		p.IsReady = true
	}
	if side == models.SideLeft {
		m.leftPlayer = p
	} else {
		m.rightPlayer = p
	}

	m.broadcast(realtime.TypePlayerJoined, realtime.PlayerJoinedPayload{
		GameID:   m.id,
		PlayerID: p.ID,
		Username: p.Username,
		Side:     side,
	})

	// Local mode is one client driving both paddles: the joining player
	// gets a companion seat on the other side, addressed by side in
	// input commands.
	if m.mode == models.ModeLocal && c.kind == models.PlayerKindHuman {
		if free := side.Opposite(); m.occupantBySide(free) == nil {
			companion := &models.Player{
				ID:          c.id + localCompanionSuffix,
				Username:    c.username + " (P2)",
				Side:        free,
				Kind:        models.PlayerKindHuman,
				IsConnected: true,
			}
			if free == models.SideLeft {
				m.leftPlayer = companion
			} else {
				m.rightPlayer = companion
			}
			m.broadcast(realtime.TypePlayerJoined, realtime.PlayerJoinedPayload{
				GameID:   m.id,
				PlayerID: companion.ID,
				Username: companion.Username,
				Side:     companion.Side,
			})
		}
	}

	m.maybeStart()
	return side, nil
}

func (m *Match) setReady(id string, ready bool) error {
	if m.status != models.GameStatusWaiting {
		// Toggling readiness after start is a no-op, not a fault.
		return nil
	}
	p := m.occupantByID(id)
	if p == nil {
		return ErrNotAnOccupant
	}
	p.IsReady = ready
	if m.mode == models.ModeLocal {
		if companion := m.occupantByID(id + localCompanionSuffix); companion != nil {
			companion.IsReady = ready
		}
	}
	m.broadcast(realtime.TypePlayerReady, realtime.PlayerReadyPayload{PlayerID: id, IsReady: ready})
	m.maybeStart()
	return nil
}

// maybeStart transitions waiting -> playing once both sides are seated
// and ready.
func (m *Match) maybeStart() {
	if m.status != models.GameStatusWaiting {
		return
	}
	if m.leftPlayer == nil || m.rightPlayer == nil {
		return
	}
	if !m.leftPlayer.IsReady || !m.rightPlayer.IsReady {
		return
	}

	now := time.Now()
	m.startTime = &now
	m.status = models.GameStatusPlaying
	m.ball = physics.ResetBall(m.cfg, m.rng, "")
	m.broadcast(realtime.TypeGameStarting, realtime.GameStatePayload{
		Ball:        m.ball,
		LeftPaddle:  m.leftPaddle,
		RightPaddle: m.rightPaddle,
		Score:       m.score,
	})
	m.startTicker()
	m.logger.Info("match started",
		slog.String("mode", string(m.mode)),
		slog.String("left", m.leftPlayer.ID),
		slog.String("right", m.rightPlayer.ID))
}

func (m *Match) applyInput(c inputCmd) {
	if m.status != models.GameStatusPlaying {
		return
	}
	p := m.occupantByID(c.id)
	if p == nil || !p.IsConnected {
		return
	}
	target := p.Side
	if c.side != "" {
		// Side addressing is only meaningful when one client owns both
		// paddles.
		if m.mode != models.ModeLocal {
			return
		}
		target = c.side
	}
	paddle := m.paddleFor(target)
	switch c.action {
	case ActionUp:
		paddle.Velocity = -1
	case ActionDown:
		paddle.Velocity = 1
	case ActionStop:
		paddle.Velocity = 0
	}
}

func (m *Match) pause() error {
	if m.status != models.GameStatusPlaying {
		return ErrInvalidStateTransition
	}
	m.status = models.GameStatusPaused
	m.stopTicker()
	m.broadcast(realtime.TypeGamePaused, nil)
	return nil
}

func (m *Match) resume() error {
	if m.status != models.GameStatusPaused {
		return ErrInvalidStateTransition
	}
	m.status = models.GameStatusPlaying
	m.startTicker()
	m.broadcast(realtime.TypeGameResumed, nil)
	return nil
}

func (m *Match) handleLeave(id string) {
	p := m.occupantByID(id)
	if p == nil {
		return
	}
	switch m.status {
	case models.GameStatusWaiting:
		if p.Side == models.SideLeft {
			m.leftPlayer = nil
		} else {
			m.rightPlayer = nil
		}
		if m.mode == models.ModeLocal {
			// The companion seat has no client of its own.
			if companion := m.occupantByID(id + localCompanionSuffix); companion != nil {
				if companion.Side == models.SideLeft {
					m.leftPlayer = nil
				} else {
					m.rightPlayer = nil
				}
			}
		}
	case models.GameStatusPlaying, models.GameStatusPaused:
		if m.mode == models.ModeLocal {
			// Both paddles belong to the leaver, so there is nobody to
			// forfeit to.
			m.cancel("player left")
			return
		}
		// Leaving mid-game forfeits.
		if opponent := m.occupantBySide(p.Side.Opposite()); opponent != nil {
			m.endMatch(opponent.ID)
		} else {
			m.cancel("opponent left")
		}
	}
}

func (m *Match) handleDisconnect(id string) {
	p := m.occupantByID(id)
	if p == nil || !p.IsConnected {
		return
	}
	p.IsConnected = false
	m.paddleFor(p.Side).Velocity = 0
	m.broadcast(realtime.TypePlayerDisconnected, realtime.PlayerDisconnectedPayload{PlayerID: id})
}

// tick advances the simulation by one fixed step. dt is a logical unit,
// never wall-clock elapsed time.
func (m *Match) tick() {
	if m.status != models.GameStatusPlaying {
		return
	}
	const dt = 1.0
	m.tickCount++

	m.runAI()

	m.leftPaddle = physics.UpdatePaddlePosition(m.leftPaddle, m.cfg, dt)
	m.rightPaddle = physics.UpdatePaddlePosition(m.rightPaddle, m.cfg, dt)
	m.ball = physics.UpdateBallPosition(m.ball, dt)

	if physics.CheckWallCollision(m.ball, m.cfg) {
		m.ball = physics.HandleWallCollision(m.ball, m.cfg)
	}
	if physics.CheckPaddleCollision(m.ball, m.leftPaddle, m.cfg) && m.ball.Velocity.X < 0 {
		m.ball = physics.HandlePaddleCollision(m.ball, m.leftPaddle, m.cfg)
	}
	if physics.CheckPaddleCollision(m.ball, m.rightPaddle, m.cfg) && m.ball.Velocity.X > 0 {
		m.ball = physics.HandlePaddleCollision(m.ball, m.rightPaddle, m.cfg)
	}

	if conceding := physics.CheckScore(m.ball, m.cfg); conceding != "" {
		m.applyScore(conceding)
		if m.status != models.GameStatusPlaying {
			return
		}
	}

	m.broadcast(realtime.TypeGameState, realtime.GameStatePayload{
		Ball:        m.ball,
		LeftPaddle:  m.leftPaddle,
		RightPaddle: m.rightPaddle,
		Score:       m.score,
		TickCount:   m.tickCount,
	})
}

// applyScore increments the non-conceding side, ends the match when the
// win condition is met, and otherwise serves the ball back toward the
// side that just conceded.
func (m *Match) applyScore(conceding models.Side) {
	var scorer *models.Player
	if conceding == models.SideLeft {
		m.score.Right++
		scorer = m.rightPlayer
	} else {
		m.score.Left++
		scorer = m.leftPlayer
	}

	// First to ScoreToWin wins; no win-by-two margin.
	if m.score.Left >= m.cfg.ScoreToWin || m.score.Right >= m.cfg.ScoreToWin {
		if scorer != nil {
			m.endMatch(scorer.ID)
		}
		return
	}

	m.ball = physics.ResetBall(m.cfg, m.rng, conceding)
	m.leftPaddle.Velocity = 0
	m.rightPaddle.Velocity = 0
}

// endMatch is the single point that freezes state, stops the scheduler
// and hands the result to the persistence sink and the finish hook.
func (m *Match) endMatch(winnerID string) {
	now := time.Now()
	m.endTime = &now
	m.status = models.GameStatusFinished
	m.winnerID = &winnerID
	m.stopTicker()

	var duration time.Duration
	if m.startTime != nil {
		duration = now.Sub(*m.startTime)
	}

	m.broadcast(realtime.TypeGameEnded, realtime.GameEndedPayload{
		WinnerID:   winnerID,
		FinalScore: m.score,
		DurationMs: duration.Milliseconds(),
	})
	m.logger.Info("match finished",
		slog.String("winner_id", winnerID),
		slog.Int("left_score", m.score.Left),
		slog.Int("right_score", m.score.Right),
		slog.Int64("ticks", m.tickCount))

	record := models.CompletedGame{
		GameID:       m.id,
		Mode:         m.mode,
		Participants: m.participantIDs(),
		LeftScore:    m.score.Left,
		RightScore:   m.score.Right,
		WinnerID:     winnerID,
		DurationMs:   duration.Milliseconds(),
		FinishedAt:   now,
	}
	result := Result{
		GameID:   m.id,
		Mode:     m.mode,
		WinnerID: winnerID,
		Score:    m.score,
		Duration: duration,
	}
	m.notifyFinished(record, &result)
}

func (m *Match) cancel(reason string) {
	switch m.status {
	case models.GameStatusFinished, models.GameStatusCancelled:
		return
	}
	m.status = models.GameStatusCancelled
	now := time.Now()
	m.endTime = &now
	m.stopTicker()
	m.broadcast(realtime.TypeError, realtime.ErrorPayload{Message: reason})
	m.logger.Warn("match cancelled", slog.String("reason", reason))
	m.notifyFinished(models.CompletedGame{}, &Result{
		GameID:    m.id,
		Mode:      m.mode,
		Score:     m.score,
		Cancelled: true,
	})
}

// notifyFinished runs persistence and the finish hook off the actor
// goroutine so a slow sink never stalls the mailbox.
func (m *Match) notifyFinished(record models.CompletedGame, result *Result) {
	recorder := m.recorder
	onFinish := m.onFinish
	logger := m.logger
	go func() {
		if recorder != nil && !result.Cancelled {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			if err := recorder.RecordCompletedGame(ctx, record); err != nil {
				logger.Error("failed to record completed game", slog.Any("error", err))
			}
		}
		if onFinish != nil {
			onFinish(*result)
		}
	}()
}

func (m *Match) occupantByID(id string) *models.Player {
	if m.leftPlayer != nil && m.leftPlayer.ID == id {
		return m.leftPlayer
	}
	if m.rightPlayer != nil && m.rightPlayer.ID == id {
		return m.rightPlayer
	}
	return nil
}

func (m *Match) occupantBySide(side models.Side) *models.Player {
	if side == models.SideLeft {
		return m.leftPlayer
	}
	return m.rightPlayer
}

func (m *Match) paddleFor(side models.Side) *models.Paddle {
	if side == models.SideLeft {
		return &m.leftPaddle
	}
	return &m.rightPaddle
}

func (m *Match) participantIDs() []string {
	ids := make([]string, 0, 2)
	if m.leftPlayer != nil {
		ids = append(ids, m.leftPlayer.ID)
	}
	if m.rightPlayer != nil {
		ids = append(ids, m.rightPlayer.ID)
	}
	return ids
}

func (m *Match) snapshot() models.GameSnapshot {
	snap := models.GameSnapshot{
		ID:          m.id,
		Mode:        m.mode,
		Status:      m.status,
		Config:      m.cfg,
		Ball:        m.ball,
		LeftPaddle:  m.leftPaddle,
		RightPaddle: m.rightPaddle,
		Score:       m.score,
		TickCount:   m.tickCount,
		StartTime:   m.startTime,
		EndTime:     m.endTime,
		WinnerID:    m.winnerID,
	}
	if m.leftPlayer != nil {
		p := *m.leftPlayer
		snap.LeftPlayer = &p
	}
	if m.rightPlayer != nil {
		p := *m.rightPlayer
		snap.RightPlayer = &p
	}
	return snap
}

func (m *Match) roomID() string {
	return "game_" + m.id
}

func (m *Match) broadcast(msgType string, payload any) {
	if m.broadcaster == nil {
		return
	}
	m.broadcaster.BroadcastToRoom(m.roomID(), realtime.Message{Type: msgType, Payload: payload})
}
