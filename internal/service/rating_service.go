package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/quansodmg/Tournament-sub002/internal/bracket"
	"github.com/quansodmg/Tournament-sub002/internal/elo"
	"github.com/quansodmg/Tournament-sub002/internal/rating"
	"github.com/quansodmg/Tournament-sub002/internal/store"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrNoWinner         = errors.New("match has no winner")
	ErrAlreadyProcessed = errors.New("ratings already applied for this match")
)

// RatingService recomputes ELO ratings after completed matches. Each
// match updates both entities in two scopes (the tournament's game and
// the overall scope) and appends one history row per entity per scope.
type RatingService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	ratings     *store.RatingStore
	clock       clockwork.Clock
}

func NewRatingService(db *sqlx.DB, tournaments *store.TournamentStore, ratings *store.RatingStore, clock clockwork.Clock) *RatingService {
	return &RatingService{db: db, tournaments: tournaments, ratings: ratings, clock: clock}
}

// UpdateRatingsForMatch applies the ELO update for a completed match
// with a declared winner. A match without a winner, an unknown match,
// and an already-processed match are normal negative results surfaced
// as typed errors, not panics. All writes happen in one transaction,
// guarded by the elo_processed flag so the delta cannot be applied
// twice.
func (s *RatingService) UpdateRatingsForMatch(ctx context.Context, matchID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	match, err := s.tournaments.GetMatchTx(ctx, tx, matchID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match: %w", err)
	}
	if match.WinnerID == nil {
		return ErrNoWinner
	}

	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, match.TournamentID.String())
	if err != nil {
		return fmt.Errorf("failed to get tournament: %w", err)
	}

	processed, err := s.tournaments.MarkEloProcessedTx(ctx, tx, matchID)
	if err != nil {
		return fmt.Errorf("failed to mark match as processed: %w", err)
	}
	if !processed {
		return ErrAlreadyProcessed
	}

	participants, err := s.tournaments.GetMatchParticipantsTx(ctx, tx, matchID.String())
	if err != nil {
		return fmt.Errorf("failed to get match participants: %w", err)
	}
	if len(participants) != 2 {
		return fmt.Errorf("match %s has %d participants, want 2", matchID, len(participants))
	}

	entity1 := entityOf(&participants[0])
	entity2 := entityOf(&participants[1])

	// Binary outcome from entity1's perspective. Draws have no
	// representation in this model.
	outcome := 0.0
	switch *match.WinnerID {
	case entity1.ID:
		outcome = 1.0
	case entity2.ID:
		outcome = 0.0
	default:
		return ErrWinnerNotInMatch
	}

	now := s.clock.Now().UTC()
	var history []rating.HistoryEntry

	// Per-game rating and overall rating are independent ledgers. A
	// tournament without a game only touches the overall scope once.
	scopes := []string{rating.OverallScope}
	if tournament.Game != rating.OverallScope {
		scopes = []string{tournament.Game, rating.OverallScope}
	}

	for _, game := range scopes {
		rating1, err := s.loadRatingTx(ctx, tx, entity1, game)
		if err != nil {
			return err
		}
		rating2, err := s.loadRatingTx(ctx, tx, entity2, game)
		if err != nil {
			return err
		}

		new1, new2 := elo.NewRatings(rating1, rating2, outcome, elo.DefaultK)

		for _, upd := range []struct {
			entity rating.Entity
			before int
			after  int
		}{
			{entity1, rating1, new1},
			{entity2, rating2, new2},
		} {
			if err := s.ratings.UpsertRatingTx(ctx, tx, &rating.Rating{
				ID:         uuid.New(),
				EntityType: upd.entity.Type,
				EntityID:   upd.entity.ID,
				Game:       game,
				Rating:     upd.after,
				UpdatedAt:  now,
			}); err != nil {
				return fmt.Errorf("failed to upsert rating: %w", err)
			}

			history = append(history, rating.HistoryEntry{
				ID:           uuid.New(),
				MatchID:      matchID,
				EntityType:   upd.entity.Type,
				EntityID:     upd.entity.ID,
				Game:         game,
				RatingBefore: upd.before,
				RatingAfter:  upd.after,
				Delta:        upd.after - upd.before,
				CreatedAt:    now,
			})
		}
	}

	if err := s.ratings.InsertHistoryTx(ctx, tx, history); err != nil {
		return fmt.Errorf("failed to insert rating history: %w", err)
	}

	return tx.Commit()
}

// ProcessPendingRatings sweeps completed matches whose ratings have not
// been applied yet. Per-match failures are logged and skipped so one
// bad match cannot stall the batch.
func (s *RatingService) ProcessPendingRatings(ctx context.Context) (int, error) {
	matches, err := s.tournaments.ListUnprocessedMatches(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unprocessed matches: %w", err)
	}

	processed := 0
	for _, m := range matches {
		if err := s.UpdateRatingsForMatch(ctx, m.ID); err != nil {
			slog.Warn("skipping match during rating sweep", "match_id", m.ID, "error", err)
			continue
		}
		processed++
	}

	return processed, nil
}

type LeaderboardEntry struct {
	Rating rating.Rating
	Tier   string
}

// Leaderboard returns the top rated entities for a game scope, with the
// display tier attached. Pass rating.OverallScope for the global board.
func (s *RatingService) Leaderboard(ctx context.Context, game string, limit int) ([]LeaderboardEntry, error) {
	ratings, err := s.ratings.TopRatings(ctx, game, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(ratings))
	for _, r := range ratings {
		entries = append(entries, LeaderboardEntry{Rating: r, Tier: elo.Tier(r.Rating)})
	}
	return entries, nil
}

// loadRatingTx reads the current rating for an entity in a scope,
// seeding unrated entities at the default 1200.
func (s *RatingService) loadRatingTx(ctx context.Context, tx *sqlx.Tx, entity rating.Entity, game string) (int, error) {
	r, err := s.ratings.GetRatingTx(ctx, tx, entity, game)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return elo.DefaultRating, nil
		}
		return 0, fmt.Errorf("failed to get rating: %w", err)
	}
	return r.Rating, nil
}

func entityOf(p *bracket.MatchParticipant) rating.Entity {
	if p.TeamID != nil {
		return rating.Entity{Type: rating.EntityTeam, ID: *p.TeamID}
	}
	return rating.Entity{Type: rating.EntityProfile, ID: *p.ProfileID}
}
