package models

import "time"

// TournamentStatus represents the lifecycle states of a tournament.
type TournamentStatus string

const (
	TournamentRegistration TournamentStatus = "registration"
	TournamentActive       TournamentStatus = "active"
	TournamentCompleted    TournamentStatus = "completed"
	TournamentCancelled    TournamentStatus = "cancelled"
)

type ParticipantType string

const (
	ParticipantRegistered ParticipantType = "registered"
	ParticipantAnonymous  ParticipantType = "anonymous"
)

// TournamentParticipant is one entrant. Alias is the identity inside the
// tournament; UserID is set for authenticated entrants, SessionID for
// anonymous ones.
type TournamentParticipant struct {
	ID              string          `json:"id"`
	Alias           string          `json:"alias"`
	UserID          *string         `json:"user_id,omitempty"`
	SessionID       *string         `json:"session_id,omitempty"`
	Seed            int             `json:"seed"`
	Eliminated      bool            `json:"eliminated"`
	ParticipantType ParticipantType `json:"participant_type"`
}

type TournamentMatchStatus string

const (
	TournamentMatchPending   TournamentMatchStatus = "pending"
	TournamentMatchReady     TournamentMatchStatus = "ready"
	TournamentMatchCompleted TournamentMatchStatus = "completed"
)

// TournamentMatch is one node of the bracket. Player slots hold
// participant IDs; empty slots wait for a winner from an earlier round.
type TournamentMatch struct {
	UID         string                `json:"uid"`
	Round       int                   `json:"round"`
	MatchNumber int                   `json:"match_number"`
	Player1Ref  *string               `json:"player1_ref,omitempty"`
	Player2Ref  *string               `json:"player2_ref,omitempty"`
	WinnerRef   *string               `json:"winner_ref,omitempty"`
	GameID      *string               `json:"game_id,omitempty"`
	Status      TournamentMatchStatus `json:"status"`
	IsBye       bool                  `json:"is_bye,omitempty"`
}

// TournamentBracket holds the full single-elimination tree, ordered by
// round then match number. For N max players it has exactly N-1 matches.
type TournamentBracket struct {
	Rounds  int                `json:"rounds"`
	Matches []*TournamentMatch `json:"matches"`
}

// MatchByUID returns the bracket match with the given UID, or nil.
func (b *TournamentBracket) MatchByUID(uid string) *TournamentMatch {
	for _, m := range b.Matches {
		if m.UID == uid {
			return m
		}
	}
	return nil
}

type Tournament struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Status       TournamentStatus         `json:"status"`
	MaxPlayers   int                      `json:"max_players"`
	CreatorID    *string                  `json:"creator_id,omitempty"`
	Participants []*TournamentParticipant `json:"participants"`
	Bracket      *TournamentBracket       `json:"bracket,omitempty"`
	WinnerID     *string                  `json:"winner_id,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	StartedAt    *time.Time               `json:"started_at,omitempty"`
	CompletedAt  *time.Time               `json:"completed_at,omitempty"`
}

// ParticipantByID returns the participant with the given ID, or nil.
func (t *Tournament) ParticipantByID(id string) *TournamentParticipant {
	for _, p := range t.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ParticipantByAlias returns the participant with the given alias, or nil.
func (t *Tournament) ParticipantByAlias(alias string) *TournamentParticipant {
	for _, p := range t.Participants {
		if p.Alias == alias {
			return p
		}
	}
	return nil
}
