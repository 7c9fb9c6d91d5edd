package bracket

import "github.com/google/uuid"

type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "loss"
)

// MatchParticipant ties a team or a profile (never both) to a match.
// Score and Result stay nil until the outcome is reported, except for
// byes which are marked as wins at bracket generation time.
type MatchParticipant struct {
	ID        uuid.UUID  `db:"id"`
	MatchID   uuid.UUID  `db:"match_id"`
	TeamID    *uuid.UUID `db:"team_id"`
	ProfileID *uuid.UUID `db:"profile_id"`

	// 1 = top side of the match, 2 = bottom side.
	Slot int `db:"slot"`

	Score  *int         `db:"score"`
	Result *MatchResult `db:"result"`
}

// EntityID returns whichever reference is set.
func (p *MatchParticipant) EntityID() uuid.UUID {
	if p.TeamID != nil {
		return *p.TeamID
	}
	if p.ProfileID != nil {
		return *p.ProfileID
	}
	return uuid.Nil
}
