package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/quansodmg/Tournament-sub002/internal/rating"
)

type RatingStore struct {
	db *sqlx.DB
}

func NewRatingStore(db *sqlx.DB) *RatingStore {
	return &RatingStore{db: db}
}

func (s *RatingStore) GetRatingTx(ctx context.Context, tx *sqlx.Tx, entity rating.Entity, game string) (*rating.Rating, error) {
	var r rating.Rating
	err := tx.GetContext(ctx, &r, "SELECT * FROM elo_ratings WHERE entity_type = ? AND entity_id = ? AND game = ?",
		entity.Type, entity.ID, game)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertRatingTx inserts or overwrites the single row keyed on
// (entity_type, entity_id, game).
func (s *RatingStore) UpsertRatingTx(ctx context.Context, tx *sqlx.Tx, r *rating.Rating) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO elo_ratings (id, entity_type, entity_id, game, rating, updated_at)
		VALUES (:id, :entity_type, :entity_id, :game, :rating, :updated_at)
		ON CONFLICT (entity_type, entity_id, game) DO UPDATE SET
		rating = excluded.rating,
		updated_at = excluded.updated_at`, r)
	return err
}

func (s *RatingStore) InsertHistoryTx(ctx context.Context, tx *sqlx.Tx, entries []rating.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO elo_history (id, match_id, entity_type, entity_id, game, rating_before, rating_after, delta, created_at)
		VALUES (:id, :match_id, :entity_type, :entity_id, :game, :rating_before, :rating_after, :delta, :created_at)`, entries)
	return err
}

func (s *RatingStore) TopRatings(ctx context.Context, game string, limit int) ([]rating.Rating, error) {
	var ratings []rating.Rating
	err := s.db.SelectContext(ctx, &ratings, "SELECT * FROM elo_ratings WHERE game = ? ORDER BY rating DESC LIMIT ?", game, limit)
	return ratings, err
}

func (s *RatingStore) GetHistory(ctx context.Context, entity rating.Entity, game string) ([]rating.HistoryEntry, error) {
	var entries []rating.HistoryEntry
	err := s.db.SelectContext(ctx, &entries, `SELECT * FROM elo_history
		WHERE entity_type = ? AND entity_id = ? AND game = ?
		ORDER BY created_at ASC`, entity.Type, entity.ID, game)
	return entries, err
}
