package store

import (
	"context"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/quansodmg/Tournament-sub002/internal/bracket"
	"github.com/quansodmg/Tournament-sub002/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func TestCreateAndGetTournament(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)

	tournament := &bracket.Tournament{
		ID:               uuid.New(),
		Name:             "Test Tournament",
		Game:             "valorant",
		Status:           bracket.TournamentPending,
		BracketType:      bracket.SingleElimination,
		IsTeamTournament: true,
		CreatedAt:        time.Now().UTC(),
	}

	err := store.CreateTournament(context.Background(), tournament)
	require.NoError(t, err)

	fetched, err := store.GetTournament(context.Background(), tournament.ID.String())
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, fetched.ID)
	assert.Equal(t, tournament.Name, fetched.Name)
	assert.Equal(t, tournament.Game, fetched.Game)
	assert.Equal(t, tournament.Status, fetched.Status)
	assert.Equal(t, tournament.BracketType, fetched.BracketType)
	assert.Equal(t, tournament.IsTeamTournament, fetched.IsTeamTournament)
}

func TestActivateTournamentTx(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	ctx := context.Background()

	tournament := &bracket.Tournament{
		ID:          uuid.New(),
		Name:        "Gate Test",
		Status:      bracket.TournamentPending,
		BracketType: bracket.SingleElimination,
	}
	require.NoError(t, store.CreateTournament(ctx, tournament))

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	activated, err := store.ActivateTournamentTx(ctx, tx, tournament.ID, bracket.SingleElimination)
	require.NoError(t, err)
	assert.True(t, activated)
	require.NoError(t, tx.Commit())

	// The tournament is no longer pending, so the gate closes.
	tx, err = db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	activated, err = store.ActivateTournamentTx(ctx, tx, tournament.ID, bracket.SingleElimination)
	require.NoError(t, err)
	assert.False(t, activated)
	require.NoError(t, tx.Commit())

	fetched, err := store.GetTournament(ctx, tournament.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentActive, fetched.Status)
}

func TestCreateMatches(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	ctx := context.Background()

	tournamentID := uuid.New()
	tournament := &bracket.Tournament{
		ID:          tournamentID,
		Name:        "Test Tournament",
		Status:      bracket.TournamentPending,
		BracketType: bracket.SingleElimination,
	}
	require.NoError(t, store.CreateTournament(ctx, tournament))

	// The final goes in first so the round-1 rows can reference it.
	finalID := uuid.New()
	matches := []bracket.Match{
		{
			ID:              finalID,
			TournamentID:    tournamentID,
			RoundNumber:     2,
			MatchNumber:     1,
			BracketPosition: 0,
			Status:          bracket.MatchPending,
		},
		{
			ID:                uuid.New(),
			TournamentID:      tournamentID,
			RoundNumber:       1,
			MatchNumber:       1,
			BracketPosition:   0,
			Status:            bracket.MatchScheduled,
			NextMatchID:       &finalID,
			NextMatchPosition: utils.Ptr(bracket.TopSlot),
		},
		{
			ID:                uuid.New(),
			TournamentID:      tournamentID,
			RoundNumber:       1,
			MatchNumber:       2,
			BracketPosition:   1,
			Status:            bracket.MatchScheduled,
			NextMatchID:       &finalID,
			NextMatchPosition: utils.Ptr(bracket.BottomSlot),
		},
	}

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateMatches(ctx, tx, matches))
	require.NoError(t, tx.Commit())

	fetched, err := store.GetMatches(ctx, tournamentID.String())
	require.NoError(t, err)
	require.Len(t, fetched, 3)

	assert.Equal(t, matches[1].ID, fetched[0].ID)
	require.NotNil(t, fetched[0].NextMatchID)
	assert.Equal(t, finalID, *fetched[0].NextMatchID)
	assert.Equal(t, bracket.TopSlot, *fetched[0].NextMatchPosition)

	assert.Equal(t, bracket.BottomSlot, *fetched[1].NextMatchPosition)

	assert.Equal(t, finalID, fetched[2].ID)
	assert.Nil(t, fetched[2].NextMatchID)
	assert.Nil(t, fetched[2].NextMatchPosition)
	assert.False(t, fetched[2].EloProcessed)
}

func TestMarkEloProcessedTx(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	ctx := context.Background()

	tournamentID := uuid.New()
	require.NoError(t, store.CreateTournament(ctx, &bracket.Tournament{
		ID:          tournamentID,
		Name:        "Test Tournament",
		Status:      bracket.TournamentActive,
		BracketType: bracket.SingleElimination,
	}))

	matchID := uuid.New()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateMatches(ctx, tx, []bracket.Match{{
		ID:              matchID,
		TournamentID:    tournamentID,
		RoundNumber:     1,
		MatchNumber:     1,
		BracketPosition: 0,
		Status:          bracket.MatchCompleted,
	}}))
	require.NoError(t, tx.Commit())

	tx, err = db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	processed, err := store.MarkEloProcessedTx(ctx, tx, matchID)
	require.NoError(t, err)
	assert.True(t, processed)
	require.NoError(t, tx.Commit())

	// Second attempt loses the gate.
	tx, err = db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	processed, err = store.MarkEloProcessedTx(ctx, tx, matchID)
	require.NoError(t, err)
	assert.False(t, processed)
	require.NoError(t, tx.Commit())
}
