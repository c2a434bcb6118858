package brackets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Nihilantropy/ft-transcendence-sub006/models"
)

func participants(aliases ...string) []*models.TournamentParticipant {
	out := make([]*models.TournamentParticipant, len(aliases))
	for i, a := range aliases {
		out[i] = &models.TournamentParticipant{ID: "id-" + a, Alias: a, Seed: i + 1}
	}
	return out
}

func generate(t *testing.T, maxPlayers int, aliases ...string) *models.TournamentBracket {
	t.Helper()
	gen := NewSingleEliminationGenerator()
	b, err := gen.GenerateBracket(context.Background(), GenerateParams{
		Tournament:   &models.Tournament{ID: "t1", MaxPlayers: maxPlayers},
		Participants: participants(aliases...),
	})
	if err != nil {
		t.Fatalf("GenerateBracket failed: %v", err)
	}
	return b
}

// For a bracket of N players: exactly N-1 matches, log2(N) rounds, and
// round r holds N/2^r matches.
func TestBracketSizeInvariant(t *testing.T) {
	for _, n := range []int{2, 4, 8, 16, 32} {
		aliases := make([]string, n)
		for i := range aliases {
			aliases[i] = fmt.Sprintf("p%d", i)
		}
		b := generate(t, n, aliases...)

		if len(b.Matches) != n-1 {
			t.Fatalf("N=%d: %d matches, want %d", n, len(b.Matches), n-1)
		}
		wantRounds := 0
		for s := n; s > 1; s >>= 1 {
			wantRounds++
		}
		if b.Rounds != wantRounds {
			t.Fatalf("N=%d: %d rounds, want %d", n, b.Rounds, wantRounds)
		}
		for r := 1; r <= b.Rounds; r++ {
			count := 0
			for _, m := range b.Matches {
				if m.Round == r {
					count++
				}
			}
			if count != n>>r {
				t.Fatalf("N=%d round %d: %d matches, want %d", n, r, count, n>>r)
			}
		}
	}
}

func TestGenerateRejectsTinyFields(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	_, err := gen.GenerateBracket(context.Background(), GenerateParams{
		Tournament:   &models.Tournament{MaxPlayers: 4},
		Participants: participants("solo"),
	})
	if !errors.Is(err, ErrNotEnoughParticipants) {
		t.Fatalf("expected ErrNotEnoughParticipants, got %v", err)
	}
}

// Four entrants: two first-round matches ready, the final pending, no
// results recorded anywhere.
func TestFourPlayerInitialBracket(t *testing.T) {
	b := generate(t, 4, "A", "B", "C", "D")

	ready := ReadyMatches(b)
	if len(ready) != 2 {
		t.Fatalf("expected 2 ready first-round matches, got %d", len(ready))
	}
	final := b.MatchByUID("R2M1")
	if final == nil || final.Status != models.TournamentMatchPending {
		t.Fatalf("final should exist and be pending: %+v", final)
	}
	for _, m := range b.Matches {
		if m.WinnerRef != nil {
			t.Fatalf("match %s has a premature winner", m.UID)
		}
	}

	// Adjacent seeds pair up.
	m1 := b.MatchByUID("R1M1")
	if *m1.Player1Ref != "id-A" || *m1.Player2Ref != "id-B" {
		t.Fatalf("R1M1 should pair seeds 1 and 2: %+v", m1)
	}
}

func TestAdvanceMovesWinnerThroughBracket(t *testing.T) {
	b := generate(t, 4, "A", "B", "C", "D")

	changed, finished, err := Advance(b, "R1M1", "id-A")
	if err != nil || !changed || finished {
		t.Fatalf("advance R1M1: changed=%v finished=%v err=%v", changed, finished, err)
	}
	final := b.MatchByUID("R2M1")
	if final.Player1Ref == nil || *final.Player1Ref != "id-A" {
		t.Fatalf("winner of R1M1 should land in the final's first slot: %+v", final)
	}

	changed, finished, err = Advance(b, "R1M2", "id-D")
	if err != nil || !changed || finished {
		t.Fatalf("advance R1M2: changed=%v finished=%v err=%v", changed, finished, err)
	}
	if final.Status != models.TournamentMatchReady {
		t.Fatalf("final should be ready once both slots fill, got %q", final.Status)
	}

	changed, finished, err = Advance(b, "R2M1", "id-D")
	if err != nil || !changed || !finished {
		t.Fatalf("advance final: changed=%v finished=%v err=%v", changed, finished, err)
	}
	if final.WinnerRef == nil || *final.WinnerRef != "id-D" {
		t.Fatalf("final winner wrong: %+v", final)
	}
}

// Recording the same result twice must not double-advance.
func TestAdvanceIdempotent(t *testing.T) {
	b := generate(t, 4, "A", "B", "C", "D")

	if _, _, err := Advance(b, "R1M1", "id-A"); err != nil {
		t.Fatalf("first advance failed: %v", err)
	}
	changed, _, err := Advance(b, "R1M1", "id-A")
	if err != nil {
		t.Fatalf("repeat advance errored: %v", err)
	}
	if changed {
		t.Fatal("repeat advance reported a change")
	}

	final := b.MatchByUID("R2M1")
	if final.Player2Ref != nil {
		t.Fatal("repeat advance leaked the winner into the second slot")
	}

	// A different winner for a settled match is a conflict.
	if _, _, err := Advance(b, "R1M1", "id-B"); !errors.Is(err, ErrResultConflict) {
		t.Fatalf("expected ErrResultConflict, got %v", err)
	}
}

func TestAdvanceRejectsOutsiders(t *testing.T) {
	b := generate(t, 4, "A", "B", "C", "D")
	if _, _, err := Advance(b, "R1M1", "id-C"); !errors.Is(err, ErrWinnerNotInMatch) {
		t.Fatalf("expected ErrWinnerNotInMatch, got %v", err)
	}
	if _, _, err := Advance(b, "R9M9", "id-A"); !errors.Is(err, ErrMatchNotInBracket) {
		t.Fatalf("expected ErrMatchNotInBracket, got %v", err)
	}
}

// Three entrants in a four-slot bracket: the unpaired seed walks over
// round 1 and waits in the final.
func TestByeAutoAdvances(t *testing.T) {
	b := generate(t, 4, "A", "B", "C")

	m2 := b.MatchByUID("R1M2")
	if !m2.IsBye || m2.Status != models.TournamentMatchCompleted {
		t.Fatalf("R1M2 should be a completed bye: %+v", m2)
	}
	if m2.WinnerRef == nil || *m2.WinnerRef != "id-C" {
		t.Fatalf("bye should advance C: %+v", m2)
	}
	final := b.MatchByUID("R2M1")
	if final.Player2Ref == nil || *final.Player2Ref != "id-C" {
		t.Fatalf("C should wait in the final: %+v", final)
	}
}

// Two entrants in an eight-slot bracket: byes cascade so the single real
// match effectively is the final.
func TestByeCascadeInSparseBracket(t *testing.T) {
	b := generate(t, 8, "A", "B")

	if len(ReadyMatches(b)) != 1 {
		t.Fatalf("only R1M1 should be playable, ready=%d", len(ReadyMatches(b)))
	}

	_, finished, err := Advance(b, "R1M1", "id-B")
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if !finished {
		t.Fatal("winning the only real match should decide the tournament")
	}
	final := b.MatchByUID("R3M1")
	if final.WinnerRef == nil || *final.WinnerRef != "id-B" {
		t.Fatalf("B should hold the title: %+v", final)
	}
}
