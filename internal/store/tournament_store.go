package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/quansodmg/Tournament-sub002/internal/bracket"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tournament *bracket.Tournament) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, game, status, bracket_type, is_team_tournament)
        VALUES (:id, :name, :game, :status, :bracket_type, :is_team_tournament)`, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	return &tournament, err
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := tx.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	return &tournament, err
}

// ActivateTournamentTx flips a pending tournament to active and records
// the bracket type. It reports false when the tournament was not pending
// anymore, which is the atomic "bracket already generated" gate.
func (s *TournamentStore) ActivateTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, bracketType bracket.BracketType) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE tournaments SET status = ?, bracket_type = ? WHERE id = ? AND status = ?`,
		bracket.TournamentActive, bracketType, id, bracket.TournamentPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
	return err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, tournament_id, round_number, match_number, bracket_position, status, next_match_id, next_match_position, winner_id, elo_processed)
		VALUES (:id, :tournament_id, :round_number, :match_number, :bracket_position, :status, :next_match_id, :next_match_position, :winner_id, :elo_processed)`, matches)
	return err
}

func (s *TournamentStore) CreateMatchParticipants(ctx context.Context, tx *sqlx.Tx, participants []bracket.MatchParticipant) error {
	if len(participants) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO match_participants (id, match_id, team_id, profile_id, slot, score, result)
		VALUES (:id, :match_id, :team_id, :profile_id, :slot, :score, :result)`, participants)
	return err
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID string) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, "SELECT * FROM matches WHERE tournament_id = ? ORDER BY round_number ASC, bracket_position ASC", tournamentID)
	return matches, err
}

func (s *TournamentStore) GetMatch(ctx context.Context, id string) (*bracket.Match, error) {
	var match bracket.Match
	err := s.db.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	return &match, err
}

func (s *TournamentStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Match, error) {
	var match bracket.Match
	err := tx.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	return &match, err
}

func (s *TournamentStore) GetMatchParticipants(ctx context.Context, matchID string) ([]bracket.MatchParticipant, error) {
	var participants []bracket.MatchParticipant
	err := s.db.SelectContext(ctx, &participants, "SELECT * FROM match_participants WHERE match_id = ? ORDER BY slot ASC", matchID)
	return participants, err
}

func (s *TournamentStore) GetMatchParticipantsTx(ctx context.Context, tx *sqlx.Tx, matchID string) ([]bracket.MatchParticipant, error) {
	var participants []bracket.MatchParticipant
	err := tx.SelectContext(ctx, &participants, "SELECT * FROM match_participants WHERE match_id = ? ORDER BY slot ASC", matchID)
	return participants, err
}

func (s *TournamentStore) UpdateMatchTx(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE matches SET
		status = :status,
		winner_id = :winner_id
		WHERE id = :id`, match)
	return err
}

func (s *TournamentStore) UpdateParticipantTx(ctx context.Context, tx *sqlx.Tx, participant *bracket.MatchParticipant) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE match_participants SET
		score = :score,
		result = :result
		WHERE id = :id`, participant)
	return err
}

// MarkEloProcessedTx is the optimistic at-most-once gate for the rating
// engine: only the first caller inside a committed transaction wins.
func (s *TournamentStore) MarkEloProcessedTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx, "UPDATE matches SET elo_processed = 1 WHERE id = ? AND elo_processed = 0", matchID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ListUnprocessedMatches returns completed matches with a winner whose
// ratings have not been applied yet, oldest first.
func (s *TournamentStore) ListUnprocessedMatches(ctx context.Context) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, `SELECT * FROM matches
		WHERE status = ? AND elo_processed = 0 AND winner_id IS NOT NULL
		ORDER BY created_at ASC`, bracket.MatchCompleted)
	return matches, err
}
