// Package brackets builds and advances single-elimination tournament
// trees. Brackets reference participants by id only; the tournament
// service owns all cross-entity lookups.
package brackets

import (
	"context"

	"github.com/Nihilantropy/ft-transcendence-sub006/models"
)

type GenerateParams struct {
	Tournament *models.Tournament
	// Participants in seed order. May be shorter than the tournament's
	// MaxPlayers; missing slots become byes.
	Participants []*models.TournamentParticipant
}

type Generator interface {
	GenerateBracket(ctx context.Context, params GenerateParams) (*models.TournamentBracket, error)

	Name() string
}
