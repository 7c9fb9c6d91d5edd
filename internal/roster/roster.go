package roster

import (
	"time"

	"github.com/google/uuid"
)

// Teams and profiles exist here only as referents: bracket generation and
// rating updates treat their IDs as opaque foreign keys.

type Team struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type Profile struct {
	ID        uuid.UUID `db:"id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}
