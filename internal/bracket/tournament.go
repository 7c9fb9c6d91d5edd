package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentPending   TournamentStatus = "pending"
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
)

type BracketType string

const (
	SingleElimination BracketType = "single_elimination"
	DoubleElimination BracketType = "double_elimination"
)

type Tournament struct {
	ID   uuid.UUID `db:"id"`
	Name string    `db:"name"`

	// Game scopes the per-game ELO ratings of its matches. Empty means
	// the tournament is not tied to a specific title.
	Game string `db:"game"`

	Status      TournamentStatus `db:"status"`
	BracketType BracketType      `db:"bracket_type"`

	// Selects whether participant references point at teams or profiles.
	IsTeamTournament bool `db:"is_team_tournament"`

	CreatedAt time.Time `db:"created_at"`
}
