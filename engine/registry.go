package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Nihilantropy/ft-transcendence-sub006/models"
)

// How long a terminal match stays queryable before the janitor removes it.
const finishedRetention = 5 * time.Minute

// Registry is the only process-wide mutable structure: the map from
// match id to running match. Match state itself is never touched here;
// the registry only creates, looks up and retires actors.
type Registry struct {
	mu      sync.RWMutex
	matches map[string]*matchEntry

	broadcaster Broadcaster
	recorder    ResultSink
	logger      *slog.Logger
	seedFn      func() int64
}

type matchEntry struct {
	match      *Match
	finishedAt time.Time // zero until terminal
}

// NewRegistry builds an empty registry. The broadcaster and recorder are
// handed to every match it creates.
func NewRegistry(broadcaster Broadcaster, recorder ResultSink, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		matches:     make(map[string]*matchEntry),
		broadcaster: broadcaster,
		recorder:    recorder,
		logger:      logger,
		seedFn:      func() int64 { return time.Now().UnixNano() },
	}
}

// CreateMatchParams describes a match to create.
type CreateMatchParams struct {
	Mode       models.GameMode
	Config     *models.GameConfig // nil means defaults
	Difficulty models.AIDifficulty
	// AllowedPlayers closes the match to everyone outside the list.
	AllowedPlayers []string
	// OpponentID reserves the right seat for a specific player.
	OpponentID string
	// OnFinish is invoked once when the match terminates, after the
	// registry has flagged the entry for cleanup.
	OnFinish func(Result)
}

// CreateMatch registers a new match actor and starts its goroutine. For
// AI mode the right side is seated with an AI occupant immediately.
func (r *Registry) CreateMatch(params CreateMatchParams) (*Match, error) {
	cfg := models.DefaultConfig()
	if params.Config != nil {
		cfg = *params.Config
	}

	id := uuid.NewString()
	var m *Match
	m = NewMatch(Options{
		ID:                 id,
		Mode:               params.Mode,
		Config:             cfg,
		Seed:               r.seedFn(),
		Broadcaster:        r.broadcaster,
		Recorder:           r.recorder,
		Logger:             r.logger,
		AllowedPlayers:     params.AllowedPlayers,
		ReservedOpponentID: params.OpponentID,
		OnFinish: func(res Result) {
			r.markFinished(id)
			if params.OnFinish != nil {
				params.OnFinish(res)
			}
		},
	})

	r.mu.Lock()
	r.matches[id] = &matchEntry{match: m}
	r.mu.Unlock()

	go m.Run()

	if params.Mode == models.ModeAI {
		if _, err := m.JoinAI(models.SideRight, params.Difficulty); err != nil {
			r.Remove(id)
			return nil, err
		}
	}

	r.logger.Info("match created", slog.String("game_id", id), slog.String("mode", string(params.Mode)))
	return m, nil
}

// Get returns the match with the given id.
func (r *Registry) Get(id string) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.matches[id]
	if !ok {
		return nil, false
	}
	return e.match, true
}

// List snapshots every registered match. Entries mid-removal are never
// observed: the map is read under the lock and snapshots come from the
// actors afterwards.
func (r *Registry) List() []models.GameSnapshot {
	r.mu.RLock()
	matches := make([]*Match, 0, len(r.matches))
	for _, e := range r.matches {
		matches = append(matches, e.match)
	}
	r.mu.RUnlock()

	out := make([]models.GameSnapshot, 0, len(matches))
	for _, m := range matches {
		snap, err := m.State()
		if err != nil {
			continue
		}
		out = append(out, snap)
	}
	return out
}

// Remove stops the match actor and drops it from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.matches[id]
	if ok {
		delete(r.matches, id)
	}
	r.mu.Unlock()
	if ok {
		e.match.Stop()
	}
}

func (r *Registry) markFinished(id string) {
	r.mu.Lock()
	if e, ok := r.matches[id]; ok {
		e.finishedAt = time.Now()
	}
	r.mu.Unlock()
}

// RunJanitor periodically retires terminal matches that have outlived the
// retention window. Blocks until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(time.Now())
		}
	}
}

func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	var expired []*matchEntry
	for id, e := range r.matches {
		if !e.finishedAt.IsZero() && now.Sub(e.finishedAt) > finishedRetention {
			expired = append(expired, e)
			delete(r.matches, id)
		}
	}
	r.mu.Unlock()

	for _, e := range expired {
		e.match.Stop()
		r.logger.Info("retired finished match", slog.String("game_id", e.match.ID()))
	}
}

// Shutdown stops every match concurrently and waits for the actors to
// exit or the context to expire.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	matches := make([]*Match, 0, len(r.matches))
	for _, e := range r.matches {
		matches = append(matches, e.match)
	}
	r.matches = make(map[string]*matchEntry)
	r.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, m := range matches {
		m := m
		g.Go(func() error {
			m.Stop()
			select {
			case <-m.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	return g.Wait()
}
