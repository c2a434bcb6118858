package brackets

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Nihilantropy/ft-transcendence-sub006/models"
)

var (
	ErrNotEnoughParticipants = errors.New("not enough participants to generate a bracket (minimum 2)")
	ErrTooManyParticipants   = errors.New("participant count exceeds the bracket size")
	ErrMatchNotInBracket     = errors.New("match not found in bracket")
	ErrWinnerNotInMatch      = errors.New("winner is not a participant of this match")
	ErrResultConflict        = errors.New("match already completed with a different winner")
)

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

// GenerateBracket builds the full tree for the tournament's MaxPlayers:
// exactly MaxPlayers-1 matches over log2(MaxPlayers) rounds, match UIDs
// "R<round>M<number>". Participants fill round 1 in seed order, adjacent
// seeds paired; empty slots become byes whose lone participant advances
// immediately, cascading through later rounds as far as needed.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateParams) (*models.TournamentBracket, error) {
	size := params.Tournament.MaxPlayers
	n := len(params.Participants)

	if n < 2 {
		return nil, ErrNotEnoughParticipants
	}
	if n > size {
		return nil, fmt.Errorf("%w: %d participants for bracket of %d", ErrTooManyParticipants, n, size)
	}

	rounds := int(math.Log2(float64(size)))

	bracket := &models.TournamentBracket{Rounds: rounds}
	matchesInRound := size / 2
	for r := 1; r <= rounds; r++ {
		for i := 1; i <= matchesInRound; i++ {
			bracket.Matches = append(bracket.Matches, &models.TournamentMatch{
				UID:         fmt.Sprintf("R%dM%d", r, i),
				Round:       r,
				MatchNumber: i,
				Status:      models.TournamentMatchPending,
			})
		}
		matchesInRound /= 2
	}

	// Seed round 1: participant k takes slot k, adjacent seeds pair up.
	for i, p := range params.Participants {
		m := bracket.MatchByUID(fmt.Sprintf("R1M%d", i/2+1))
		ref := p.ID
		if i%2 == 0 {
			m.Player1Ref = &ref
		} else {
			m.Player2Ref = &ref
		}
	}

	// Settle round 1: a lone occupant walks over, an empty pairing
	// completes with no winner at all.
	for _, m := range bracket.Matches {
		if m.Round != 1 {
			break
		}
		switch {
		case m.Player1Ref != nil && m.Player2Ref != nil:
			m.Status = models.TournamentMatchReady
		case m.Player1Ref != nil:
			completeBye(m, m.Player1Ref)
		default:
			completeBye(m, nil)
		}
	}

	// Settle upper rounds in order: feeders are always decided before
	// the matches they feed, so byes cascade as far as they must.
	for r := 2; r <= rounds; r++ {
		for _, m := range bracket.Matches {
			if m.Round != r {
				continue
			}
			f1 := feederMatch(bracket, m, 1)
			f2 := feederMatch(bracket, m, 2)
			if f1.Status == models.TournamentMatchCompleted {
				m.Player1Ref = f1.WinnerRef
			}
			if f2.Status == models.TournamentMatchCompleted {
				m.Player2Ref = f2.WinnerRef
			}
			if f1.Status != models.TournamentMatchCompleted || f2.Status != models.TournamentMatchCompleted {
				continue
			}
			switch {
			case m.Player1Ref != nil && m.Player2Ref != nil:
				m.Status = models.TournamentMatchReady
			case m.Player1Ref != nil:
				completeBye(m, m.Player1Ref)
			case m.Player2Ref != nil:
				completeBye(m, m.Player2Ref)
			default:
				completeBye(m, nil)
			}
		}
	}

	return bracket, nil
}

// completeBye marks a match as a walkover for the (possibly nil) winner.
func completeBye(m *models.TournamentMatch, winner *string) {
	m.IsBye = true
	m.Status = models.TournamentMatchCompleted
	m.WinnerRef = winner
}

// feederMatch returns the previous-round match feeding the given slot.
func feederMatch(b *models.TournamentBracket, m *models.TournamentMatch, slot int) *models.TournamentMatch {
	number := m.MatchNumber*2 - 1
	if slot == 2 {
		number = m.MatchNumber * 2
	}
	return b.MatchByUID(fmt.Sprintf("R%dM%d", m.Round-1, number))
}

// NextSlot returns the UID of the match fed by the winner of the given
// match and which of its two slots receives the winner. ok is false for
// the final.
func NextSlot(b *models.TournamentBracket, m *models.TournamentMatch) (uid string, slot int, ok bool) {
	if m.Round >= b.Rounds {
		return "", 0, false
	}
	uid = fmt.Sprintf("R%dM%d", m.Round+1, (m.MatchNumber+1)/2)
	slot = 2 - m.MatchNumber%2
	return uid, slot, true
}

// propagate places a winner into the next round's slot. A downstream
// match whose other slot is already settled as a bye resolves in turn.
func propagate(b *models.TournamentBracket, m *models.TournamentMatch, winner *string) {
	uid, slot, ok := NextSlot(b, m)
	if !ok {
		return
	}
	next := b.MatchByUID(uid)
	if slot == 1 {
		next.Player1Ref = winner
	} else {
		next.Player2Ref = winner
	}

	if next.Player1Ref != nil && next.Player2Ref != nil {
		next.Status = models.TournamentMatchReady
		return
	}

	// The sibling slot never gets an occupant when its entire subtree
	// was empty; the newly placed winner walks over.
	sibling := 1
	if slot == 1 {
		sibling = 2
	}
	feeder := feederMatch(b, next, sibling)
	if feeder != nil && feeder.Status == models.TournamentMatchCompleted && feeder.WinnerRef == nil {
		next.IsBye = true
		next.Status = models.TournamentMatchCompleted
		next.WinnerRef = winner
		propagate(b, next, winner)
	}
}

// Advance records a winner for a bracket match and moves the winner into
// the next round. Recording the same result again is a no-op; recording
// a conflicting winner is an error. Returns whether the bracket changed
// and whether the tournament is decided.
func Advance(b *models.TournamentBracket, matchUID string, winnerRef string) (changed bool, finished bool, err error) {
	m := b.MatchByUID(matchUID)
	if m == nil {
		return false, false, ErrMatchNotInBracket
	}

	if m.Status == models.TournamentMatchCompleted {
		if m.WinnerRef != nil && *m.WinnerRef == winnerRef {
			final := b.MatchByUID(fmt.Sprintf("R%dM1", b.Rounds))
			return false, final != nil && final.Status == models.TournamentMatchCompleted, nil
		}
		return false, false, ErrResultConflict
	}

	valid := (m.Player1Ref != nil && *m.Player1Ref == winnerRef) ||
		(m.Player2Ref != nil && *m.Player2Ref == winnerRef)
	if !valid {
		return false, false, ErrWinnerNotInMatch
	}

	ref := winnerRef
	m.WinnerRef = &ref
	m.Status = models.TournamentMatchCompleted
	propagate(b, m, &ref)

	// A walkover cascade can decide the final even when the advanced
	// match itself is in an earlier round.
	final := b.MatchByUID(fmt.Sprintf("R%dM1", b.Rounds))
	return true, final != nil && final.Status == models.TournamentMatchCompleted, nil
}

// ReadyMatches returns the matches that have both slots filled and no
// result yet.
func ReadyMatches(b *models.TournamentBracket) []*models.TournamentMatch {
	var out []*models.TournamentMatch
	for _, m := range b.Matches {
		if m.Status == models.TournamentMatchReady {
			out = append(out, m)
		}
	}
	return out
}
