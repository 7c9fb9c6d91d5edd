package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/quansodmg/Tournament-sub002/internal/bracket"
	"github.com/quansodmg/Tournament-sub002/internal/store"
	"github.com/quansodmg/Tournament-sub002/internal/utils"
)

var (
	ErrMatchAlreadyCompleted = errors.New("match is already completed")
	ErrMatchNotReady         = errors.New("match does not have two participants yet")
	ErrWinnerNotInMatch      = errors.New("winner is not part of this match")
)

// MatchService drives matches after bracket generation: result
// reporting, winner advancement along the next-match linkage, and
// tournament completion when the final is decided.
type MatchService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore) *MatchService {
	return &MatchService{db: db, store: store}
}

type MatchData struct {
	Match        *bracket.Match
	Participants []bracket.MatchParticipant
}

func (s *MatchService) GetMatchData(ctx context.Context, matchID string) (*MatchData, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	participants, err := s.store.GetMatchParticipants(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match participants: %w", err)
	}

	return &MatchData{Match: match, Participants: participants}, nil
}

// ReportResult records scores and the winner for a scheduled match,
// moves the winner into its slot in the next round's match, and marks
// the tournament completed when the final has been decided.
func (s *MatchService) ReportResult(ctx context.Context, matchID, winnerEntityID uuid.UUID, winnerScore, loserScore int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID.String())
	if err != nil {
		return fmt.Errorf("failed to get match: %w", err)
	}
	if match.Status == bracket.MatchCompleted {
		return ErrMatchAlreadyCompleted
	}

	participants, err := s.store.GetMatchParticipantsTx(ctx, tx, matchID.String())
	if err != nil {
		return fmt.Errorf("failed to get match participants: %w", err)
	}
	if len(participants) != 2 {
		return ErrMatchNotReady
	}

	var winner, loser *bracket.MatchParticipant
	for i := range participants {
		if participants[i].EntityID() == winnerEntityID {
			winner = &participants[i]
		} else {
			loser = &participants[i]
		}
	}
	if winner == nil {
		return ErrWinnerNotInMatch
	}

	winner.Score = &winnerScore
	winner.Result = utils.Ptr(bracket.ResultWin)
	loser.Score = &loserScore
	loser.Result = utils.Ptr(bracket.ResultLoss)

	for _, p := range []*bracket.MatchParticipant{winner, loser} {
		if err := s.store.UpdateParticipantTx(ctx, tx, p); err != nil {
			return fmt.Errorf("failed to update participant: %w", err)
		}
	}

	match.Status = bracket.MatchCompleted
	match.WinnerID = &winnerEntityID
	if err := s.store.UpdateMatchTx(ctx, tx, match); err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	if match.IsFinal() {
		if err := s.store.UpdateTournamentStatusTx(ctx, tx, match.TournamentID, bracket.TournamentCompleted); err != nil {
			return fmt.Errorf("failed to complete tournament: %w", err)
		}
	} else {
		if err := s.advanceWinnerTx(ctx, tx, match, winner); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// PlaceByeWinners pushes the winners of auto-completed bye matches into
// their next-round slots. Bracket generation leaves later rounds empty,
// so this runs right after it to make byes playable.
func (s *MatchService) PlaceByeWinners(ctx context.Context, tournamentID uuid.UUID) error {
	matches, err := s.store.GetMatches(ctx, tournamentID.String())
	if err != nil {
		return fmt.Errorf("failed to get matches: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range matches {
		m := &matches[i]
		if m.Status != bracket.MatchCompleted || m.WinnerID == nil || m.IsFinal() {
			continue
		}

		participants, err := s.store.GetMatchParticipantsTx(ctx, tx, m.ID.String())
		if err != nil {
			return fmt.Errorf("failed to get match participants: %w", err)
		}

		var winner *bracket.MatchParticipant
		for j := range participants {
			if participants[j].EntityID() == *m.WinnerID {
				winner = &participants[j]
			}
		}
		if winner == nil {
			continue
		}

		if err := s.advanceWinnerTx(ctx, tx, m, winner); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// advanceWinnerTx copies the winning participant into the linked next
// match at the slot the linkage dictates, skipping the insert when the
// winner is already there. Once both sides are present the next match
// becomes scheduled.
func (s *MatchService) advanceWinnerTx(ctx context.Context, tx *sqlx.Tx, match *bracket.Match, winner *bracket.MatchParticipant) error {
	if match.NextMatchID == nil || match.NextMatchPosition == nil {
		return nil
	}

	existing, err := s.store.GetMatchParticipantsTx(ctx, tx, match.NextMatchID.String())
	if err != nil {
		return fmt.Errorf("failed to get next match participants: %w", err)
	}
	for _, p := range existing {
		if p.EntityID() == winner.EntityID() {
			return nil
		}
	}

	next := bracket.MatchParticipant{
		ID:        uuid.New(),
		MatchID:   *match.NextMatchID,
		TeamID:    winner.TeamID,
		ProfileID: winner.ProfileID,
		Slot:      *match.NextMatchPosition,
	}
	if err := s.store.CreateMatchParticipants(ctx, tx, []bracket.MatchParticipant{next}); err != nil {
		return fmt.Errorf("failed to advance winner to next match: %w", err)
	}

	if len(existing) == 1 {
		nextMatch, err := s.store.GetMatchTx(ctx, tx, match.NextMatchID.String())
		if err != nil {
			return fmt.Errorf("failed to get next match: %w", err)
		}
		nextMatch.Status = bracket.MatchScheduled
		if err := s.store.UpdateMatchTx(ctx, tx, nextMatch); err != nil {
			return fmt.Errorf("failed to schedule next match: %w", err)
		}
	}

	return nil
}
