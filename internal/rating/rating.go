package rating

import (
	"time"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityTeam    EntityType = "team"
	EntityProfile EntityType = "profile"
)

// Entity is the rated side of a match: a team or an individual profile.
// The rating engine never dereferences the ID beyond using it as a key.
type Entity struct {
	Type EntityType
	ID   uuid.UUID
}

// OverallScope is the game value of the scope-independent rating row.
const OverallScope = ""

// Rating is one ELO value for an entity within a game scope. At most one
// row exists per (entity, game) pair, enforced by a unique index and
// upsert-on-conflict writes.
type Rating struct {
	ID         uuid.UUID  `db:"id"`
	EntityType EntityType `db:"entity_type"`
	EntityID   uuid.UUID  `db:"entity_id"`
	Game       string     `db:"game"`
	Rating     int        `db:"rating"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (r *Rating) Entity() Entity {
	return Entity{Type: r.EntityType, ID: r.EntityID}
}

// HistoryEntry is an append-only ledger row. Every rated match produces
// four entries: two entities times the game and overall scopes.
type HistoryEntry struct {
	ID           uuid.UUID  `db:"id"`
	MatchID      uuid.UUID  `db:"match_id"`
	EntityType   EntityType `db:"entity_type"`
	EntityID     uuid.UUID  `db:"entity_id"`
	Game         string     `db:"game"`
	RatingBefore int        `db:"rating_before"`
	RatingAfter  int        `db:"rating_after"`
	Delta        int        `db:"delta"`
	CreatedAt    time.Time  `db:"created_at"`
}
