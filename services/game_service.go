package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Nihilantropy/ft-transcendence-sub006/engine"
	"github.com/Nihilantropy/ft-transcendence-sub006/models"
	"github.com/Nihilantropy/ft-transcendence-sub006/repositories"
)

// CreateGameInput is the management-surface request for a new match.
type CreateGameInput struct {
	Mode       models.GameMode     `json:"mode"`
	Difficulty models.AIDifficulty `json:"difficulty,omitempty"`
	// OpponentID reserves the right seat for a known player. Only valid
	// for multiplayer matches; the seat is held until they connect.
	OpponentID *string `json:"opponent_id,omitempty"`
}

// GameService exposes match lifecycle management to the HTTP surface.
// The realtime path talks to the engine registry directly.
type GameService interface {
	CreateGame(ctx context.Context, input CreateGameInput) (models.GameSnapshot, error)
	GetGame(ctx context.Context, id string) (models.GameSnapshot, error)
	ListGames(ctx context.Context) ([]models.GameSnapshot, error)
	CancelGame(ctx context.Context, id string) error
	GetUserStats(ctx context.Context, userID string) (*models.UserStats, error)
}

type gameService struct {
	registry *engine.Registry
	gameRepo repositories.GameRepository
	logger   *slog.Logger
}

func NewGameService(registry *engine.Registry, gameRepo repositories.GameRepository, logger *slog.Logger) GameService {
	if logger == nil {
		logger = slog.Default()
	}
	return &gameService{
		registry: registry,
		gameRepo: gameRepo,
		logger:   logger,
	}
}

func (s *gameService) CreateGame(ctx context.Context, input CreateGameInput) (models.GameSnapshot, error) {
	switch input.Mode {
	case models.ModeLocal, models.ModeMultiplayer, models.ModeAI:
	case models.ModeTournament:
		// Tournament games are created by the tournament service when
		// the bracket pairs players up, never directly.
		return models.GameSnapshot{}, fmt.Errorf("%w: tournament games are created by the bracket", ErrInvalidGameMode)
	default:
		return models.GameSnapshot{}, fmt.Errorf("%w: %q", ErrInvalidGameMode, input.Mode)
	}

	if input.Mode == models.ModeAI {
		switch input.Difficulty {
		case "", models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		default:
			return models.GameSnapshot{}, fmt.Errorf("%w: %q", ErrInvalidDifficulty, input.Difficulty)
		}
	}

	var opponentID string
	if input.OpponentID != nil && *input.OpponentID != "" {
		if input.Mode != models.ModeMultiplayer {
			return models.GameSnapshot{}, fmt.Errorf("%w: opponent_id applies to multiplayer games only", ErrValidationFailed)
		}
		opponentID = *input.OpponentID
	}

	match, err := s.registry.CreateMatch(engine.CreateMatchParams{
		Mode:       input.Mode,
		Difficulty: input.Difficulty,
		OpponentID: opponentID,
	})
	if err != nil {
		return models.GameSnapshot{}, fmt.Errorf("failed to create match: %w", err)
	}
	return match.State()
}

func (s *gameService) GetGame(ctx context.Context, id string) (models.GameSnapshot, error) {
	match, ok := s.registry.Get(id)
	if !ok {
		return models.GameSnapshot{}, ErrGameNotFound
	}
	snap, err := match.State()
	if err != nil {
		return models.GameSnapshot{}, ErrGameNotFound
	}
	return snap, nil
}

func (s *gameService) ListGames(ctx context.Context) ([]models.GameSnapshot, error) {
	return s.registry.List(), nil
}

func (s *gameService) CancelGame(ctx context.Context, id string) error {
	match, ok := s.registry.Get(id)
	if !ok {
		return ErrGameNotFound
	}
	match.Cancel("cancelled by request")
	return nil
}

func (s *gameService) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	stats, err := s.gameRepo.GetUserStats(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNoStats) {
			return &models.UserStats{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to load stats for user %s: %w", userID, err)
	}
	return stats, nil
}
