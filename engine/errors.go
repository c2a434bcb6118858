package engine

import "errors"

var (
	ErrMatchFull              = errors.New("match already has two occupants")
	ErrMatchAlreadyStarted    = errors.New("match has already started")
	ErrAlreadyJoined          = errors.New("player already joined this match")
	ErrNotAnOccupant          = errors.New("player is not an occupant of this match")
	ErrNotEligible            = errors.New("player is not eligible for this match")
	ErrInvalidStateTransition = errors.New("operation not valid in the current match state")
	ErrMatchClosed            = errors.New("match is no longer running")
	ErrMatchNotFound          = errors.New("match not found")
)
