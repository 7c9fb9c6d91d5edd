package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
)

// Slot values for NextMatchPosition: the winner feeds the top or bottom
// side of the following round's match.
const (
	TopSlot    = 1
	BottomSlot = 2
)

type Match struct {
	ID           uuid.UUID `db:"id"`
	TournamentID uuid.UUID `db:"tournament_id"`

	// Position in the tournament for reconstructing the bracket view.
	// RoundNumber and MatchNumber are 1-based, BracketPosition is the
	// 0-based slot index within the round.
	RoundNumber     int `db:"round_number"`
	MatchNumber     int `db:"match_number"`
	BracketPosition int `db:"bracket_position"`

	Status MatchStatus `db:"status"`

	// Nil only for the final round's match.
	NextMatchID       *uuid.UUID `db:"next_match_id"`
	NextMatchPosition *int       `db:"next_match_position"`

	// ID of the winning team or profile once the result is in.
	WinnerID *uuid.UUID `db:"winner_id"`

	// Set once the rating engine has applied this match, so a second
	// pass cannot double-apply the ELO delta.
	EloProcessed bool `db:"elo_processed"`

	CreatedAt time.Time `db:"created_at"`
}

func (m *Match) IsFinal() bool {
	return m.NextMatchID == nil
}
