package services

import "errors"

// Shared sentinel errors, mapped to HTTP status codes in the handlers
// package.
var (
	// Not found
	ErrNotFound           = errors.New("requested resource not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("bracket match not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrNameRequired         = errors.New("tournament name is required")
	ErrAliasRequired        = errors.New("participant alias is required")
	ErrInvalidMaxPlayers    = errors.New("max players must be one of 2, 4, 8, 16, 32")
	ErrInvalidGameMode      = errors.New("invalid game mode")
	ErrInvalidDifficulty    = errors.New("invalid AI difficulty")
	ErrNotEnoughPlayers     = errors.New("at least 2 participants are required to start")
	ErrWinnerNotParticipant = errors.New("winner is not a participant of this tournament")

	// Conflicts
	ErrGameFull                  = errors.New("game already has two players")
	ErrTournamentFull            = errors.New("tournament registration is full")
	ErrTournamentAlreadyStarted  = errors.New("tournament has already started")
	ErrTournamentNotStarted      = errors.New("tournament has not started yet")
	ErrAliasTaken                = errors.New("alias is already in use in this tournament")
	ErrDuplicateJoin             = errors.New("participant already joined this tournament")
	ErrResultConflict            = errors.New("match result conflicts with a previously recorded one")
	ErrInvalidStatusTransition   = errors.New("invalid status transition")
	ErrTournamentAlreadyComplete = errors.New("tournament is already completed")

	// Authorization
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)
