package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nihilantropy/ft-transcendence-sub006/brackets"
	"github.com/Nihilantropy/ft-transcendence-sub006/engine"
	"github.com/Nihilantropy/ft-transcendence-sub006/models"
)

var validMaxPlayers = map[int]bool{2: true, 4: true, 8: true, 16: true, 32: true}

// Broadcaster pushes tournament updates to subscribed clients.
// Satisfied by realtime.Hub.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message any)
}

// MatchCreator spawns engine matches for bracket pairings. Satisfied by
// engine.Registry.
type MatchCreator interface {
	CreateMatch(params engine.CreateMatchParams) (*engine.Match, error)
}

// Archiver stores a completed tournament outside the process. Optional.
type Archiver interface {
	ArchiveTournament(ctx context.Context, tournament *models.Tournament) error
}

type CreateTournamentInput struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
}

type JoinTournamentInput struct {
	Alias     string  `json:"alias"`
	UserID    *string `json:"user_id,omitempty"`
	SessionID *string `json:"session_id,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, creatorID *string, input CreateTournamentInput) (*models.Tournament, error)
	JoinTournament(ctx context.Context, tournamentID string, input JoinTournamentInput) (*models.TournamentParticipant, error)
	StartTournament(ctx context.Context, tournamentID string, requesterID *string) (*models.Tournament, error)
	GetTournament(ctx context.Context, tournamentID string) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
	RecordMatchResult(ctx context.Context, tournamentID, matchUID, winnerRef string) error
}

// tournamentEntry pairs a tournament with the mutex that serializes all
// of its bracket mutations. Tournaments never share state, so locks are
// strictly per-entry.
type tournamentEntry struct {
	mu         sync.Mutex
	tournament *models.Tournament
}

type tournamentService struct {
	mu      sync.RWMutex
	entries map[string]*tournamentEntry

	generator   brackets.Generator
	matches     MatchCreator
	broadcaster Broadcaster
	archiver    Archiver
	logger      *slog.Logger
	rng         *rand.Rand
	rngMu       sync.Mutex
}

func NewTournamentService(
	generator brackets.Generator,
	matches MatchCreator,
	broadcaster Broadcaster,
	archiver Archiver,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		entries:     make(map[string]*tournamentEntry),
		generator:   generator,
		matches:     matches,
		broadcaster: broadcaster,
		archiver:    archiver,
		logger:      logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, creatorID *string, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if !validMaxPlayers[input.MaxPlayers] {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxPlayers, input.MaxPlayers)
	}

	t := &models.Tournament{
		ID:         uuid.NewString(),
		Name:       input.Name,
		Status:     models.TournamentRegistration,
		MaxPlayers: input.MaxPlayers,
		CreatorID:  creatorID,
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	s.entries[t.ID] = &tournamentEntry{tournament: t}
	s.mu.Unlock()

	s.logger.Info("tournament created",
		slog.String("tournament_id", t.ID),
		slog.String("name", t.Name),
		slog.Int("max_players", t.MaxPlayers))
	return cloneTournament(t), nil
}

func (s *tournamentService) JoinTournament(ctx context.Context, tournamentID string, input JoinTournamentInput) (*models.TournamentParticipant, error) {
	if input.Alias == "" {
		return nil, ErrAliasRequired
	}

	e, err := s.entry(tournamentID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.tournament

	if t.Status != models.TournamentRegistration {
		return nil, ErrTournamentAlreadyStarted
	}
	if len(t.Participants) >= t.MaxPlayers {
		return nil, ErrTournamentFull
	}
	if t.ParticipantByAlias(input.Alias) != nil {
		return nil, fmt.Errorf("%w: %q", ErrAliasTaken, input.Alias)
	}
	if input.UserID != nil {
		for _, p := range t.Participants {
			if p.UserID != nil && *p.UserID == *input.UserID {
				return nil, ErrDuplicateJoin
			}
		}
	}

	p := &models.TournamentParticipant{
		ID:    uuid.NewString(),
		Alias: input.Alias,
	}
	switch {
	case input.UserID != nil:
		p.UserID = input.UserID
		p.ParticipantType = models.ParticipantRegistered
	default:
		p.ParticipantType = models.ParticipantAnonymous
		if input.SessionID != nil {
			p.SessionID = input.SessionID
		} else {
			sid := uuid.NewString()
			p.SessionID = &sid
		}
	}
	t.Participants = append(t.Participants, p)

	s.logger.Info("participant joined",
		slog.String("tournament_id", t.ID),
		slog.String("alias", p.Alias),
		slog.String("type", string(p.ParticipantType)))

	out := *p
	return &out, nil
}

func (s *tournamentService) StartTournament(ctx context.Context, tournamentID string, requesterID *string) (*models.Tournament, error) {
	e, err := s.entry(tournamentID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.tournament

	if t.CreatorID != nil && (requesterID == nil || *requesterID != *t.CreatorID) {
		return nil, ErrForbiddenOperation
	}
	if t.Status != models.TournamentRegistration {
		return nil, ErrTournamentAlreadyStarted
	}
	if len(t.Participants) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	// Seeds are the join order shuffled once at start time.
	seeded := make([]*models.TournamentParticipant, len(t.Participants))
	copy(seeded, t.Participants)
	s.rngMu.Lock()
	s.rng.Shuffle(len(seeded), func(i, j int) { seeded[i], seeded[j] = seeded[j], seeded[i] })
	s.rngMu.Unlock()
	for i, p := range seeded {
		p.Seed = i + 1
	}
	sort.Slice(t.Participants, func(i, j int) bool { return t.Participants[i].Seed < t.Participants[j].Seed })

	bracket, err := s.generator.GenerateBracket(ctx, brackets.GenerateParams{
		Tournament:   t,
		Participants: seeded,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate bracket: %w", err)
	}
	t.Bracket = bracket
	t.Status = models.TournamentActive
	now := time.Now()
	t.StartedAt = &now

	s.createGamesLocked(t)
	s.broadcastBracket(t)

	s.logger.Info("tournament started",
		slog.String("tournament_id", t.ID),
		slog.Int("participants", len(t.Participants)),
		slog.Int("rounds", bracket.Rounds))
	return cloneTournament(t), nil
}

func (s *tournamentService) GetTournament(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	e, err := s.entry(tournamentID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneTournament(e.tournament), nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	s.mu.RLock()
	entries := make([]*tournamentEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*models.Tournament, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, cloneTournament(e.tournament))
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *tournamentService) RecordMatchResult(ctx context.Context, tournamentID, matchUID, winnerRef string) error {
	e, err := s.entry(tournamentID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.tournament

	switch t.Status {
	case models.TournamentActive:
	case models.TournamentCompleted:
		return ErrTournamentAlreadyComplete
	default:
		return ErrTournamentNotStarted
	}
	// Engine results carry whatever id the player was seated under, a
	// JWT user id or an anonymous session id, so resolve it back to the
	// bracket's participant id before advancing.
	winner := resolveParticipant(t, winnerRef)
	if winner == nil {
		return fmt.Errorf("%w: %s", ErrWinnerNotParticipant, winnerRef)
	}

	bm := t.Bracket.MatchByUID(matchUID)
	if bm == nil {
		return ErrMatchNotFound
	}
	loserRef := otherRef(bm, winner.ID)

	changed, finished, err := brackets.Advance(t.Bracket, matchUID, winner.ID)
	if err != nil {
		switch {
		case errors.Is(err, brackets.ErrResultConflict):
			return ErrResultConflict
		case errors.Is(err, brackets.ErrWinnerNotInMatch):
			return fmt.Errorf("%w: %s not in match %s", ErrWinnerNotParticipant, winnerRef, matchUID)
		default:
			return err
		}
	}
	if !changed {
		return nil
	}

	if loserRef != nil {
		if loser := t.ParticipantByID(*loserRef); loser != nil {
			loser.Eliminated = true
		}
	}

	if finished {
		s.completeLocked(t, winner.ID)
	} else {
		s.createGamesLocked(t)
	}
	s.broadcastBracket(t)
	return nil
}

// createGamesLocked spawns an engine match for every bracket pairing
// that became playable and does not have one yet. Caller holds the
// tournament lock.
func (s *tournamentService) createGamesLocked(t *models.Tournament) {
	if s.matches == nil {
		return
	}
	for _, bm := range brackets.ReadyMatches(t.Bracket) {
		if bm.GameID != nil {
			continue
		}
		tournamentID := t.ID
		matchUID := bm.UID
		match, err := s.matches.CreateMatch(engine.CreateMatchParams{
			Mode:           models.ModeTournament,
			AllowedPlayers: pairingIdentities(t, bm),
			OnFinish: func(res engine.Result) {
				if res.Cancelled {
					return
				}
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.RecordMatchResult(ctx, tournamentID, matchUID, res.WinnerID); err != nil {
					s.logger.Error("failed to record tournament match result",
						slog.String("tournament_id", tournamentID),
						slog.String("match_uid", matchUID),
						slog.Any("error", err))
				}
			},
		})
		if err != nil {
			s.logger.Error("failed to create game for bracket match",
				slog.String("tournament_id", t.ID),
				slog.String("match_uid", bm.UID),
				slog.Any("error", err))
			continue
		}
		gameID := match.ID()
		bm.GameID = &gameID
	}
}

// completeLocked finalizes a decided tournament. Caller holds the
// tournament lock.
func (s *tournamentService) completeLocked(t *models.Tournament, winnerRef string) {
	t.Status = models.TournamentCompleted
	now := time.Now()
	t.CompletedAt = &now
	ref := winnerRef
	t.WinnerID = &ref
	for _, p := range t.Participants {
		if p.ID != winnerRef {
			p.Eliminated = true
		}
	}

	s.logger.Info("tournament completed",
		slog.String("tournament_id", t.ID),
		slog.String("winner_ref", winnerRef))

	if s.archiver != nil {
		archived := cloneTournament(t)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.archiver.ArchiveTournament(ctx, archived); err != nil {
				s.logger.Error("failed to archive tournament",
					slog.String("tournament_id", archived.ID),
					slog.Any("error", err))
			}
		}()
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(tournamentRoom(t.ID), map[string]any{
			"type": "tournament_completed",
			"payload": map[string]any{
				"tournament_id": t.ID,
				"winner_ref":    winnerRef,
			},
		})
	}
}

func (s *tournamentService) broadcastBracket(t *models.Tournament) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToRoom(tournamentRoom(t.ID), map[string]any{
		"type":    "bracket_updated",
		"payload": cloneTournament(t),
	})
}

func (s *tournamentService) entry(id string) (*tournamentEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return e, nil
}

func tournamentRoom(id string) string {
	return "tournament_" + id
}

// resolveParticipant accepts any identity a player competes under:
// their participant id, their authenticated user id, or the session id
// handed out at anonymous registration.
func resolveParticipant(t *models.Tournament, ref string) *models.TournamentParticipant {
	if p := t.ParticipantByID(ref); p != nil {
		return p
	}
	for _, p := range t.Participants {
		if p.UserID != nil && *p.UserID == ref {
			return p
		}
		if p.SessionID != nil && *p.SessionID == ref {
			return p
		}
	}
	return nil
}

// pairingIdentities lists every id either entrant of a bracket match may
// connect under, used to close the match to outsiders.
func pairingIdentities(t *models.Tournament, bm *models.TournamentMatch) []string {
	var ids []string
	for _, ref := range []*string{bm.Player1Ref, bm.Player2Ref} {
		if ref == nil {
			continue
		}
		p := t.ParticipantByID(*ref)
		if p == nil {
			continue
		}
		ids = append(ids, p.ID)
		if p.UserID != nil {
			ids = append(ids, *p.UserID)
		}
		if p.SessionID != nil {
			ids = append(ids, *p.SessionID)
		}
	}
	return ids
}

func otherRef(m *models.TournamentMatch, winnerRef string) *string {
	if m.Player1Ref != nil && *m.Player1Ref != winnerRef {
		return m.Player1Ref
	}
	if m.Player2Ref != nil && *m.Player2Ref != winnerRef {
		return m.Player2Ref
	}
	return nil
}

// cloneTournament deep-copies a tournament so callers never alias the
// service's internal state.
func cloneTournament(t *models.Tournament) *models.Tournament {
	out := *t
	out.Participants = make([]*models.TournamentParticipant, len(t.Participants))
	for i, p := range t.Participants {
		cp := *p
		out.Participants[i] = &cp
	}
	if t.Bracket != nil {
		b := &models.TournamentBracket{Rounds: t.Bracket.Rounds}
		b.Matches = make([]*models.TournamentMatch, len(t.Bracket.Matches))
		for i, m := range t.Bracket.Matches {
			cm := *m
			b.Matches[i] = &cm
		}
		out.Bracket = b
	}
	return &out
}
