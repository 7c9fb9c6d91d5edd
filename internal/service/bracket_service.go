package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/quansodmg/Tournament-sub002/internal/bracket"
	"github.com/quansodmg/Tournament-sub002/internal/store"
	"github.com/quansodmg/Tournament-sub002/internal/utils"
)

var (
	ErrTooFewParticipants     = errors.New("at least 2 participants are required")
	ErrBracketExists          = errors.New("bracket already generated for this tournament")
	ErrUnsupportedBracketType = errors.New("only single elimination brackets are supported")
)

type BracketService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewBracketService(db *sqlx.DB, store *store.TournamentStore) *BracketService {
	return &BracketService{db: db, store: store}
}

type TournamentData struct {
	Tournament *bracket.Tournament
	Matches    []bracket.Match
}

func (s *BracketService) GetTournamentData(ctx context.Context, id string) (*TournamentData, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.GetMatches(ctx, id)
	if err != nil {
		return nil, err
	}

	return &TournamentData{
		Tournament: tournament,
		Matches:    matches,
	}, nil
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// GenerateBracket seeds the participants into a single-elimination tree
// and persists the whole structure in one transaction: seeded round-1
// matches (byes resolved immediately), empty shells for later rounds,
// and the next-match linkage between them. The tournament moves from
// pending to active as part of the same transaction, so a second call
// for the same tournament fails with ErrBracketExists instead of
// writing a duplicate bracket.
func (s *BracketService) GenerateBracket(ctx context.Context, tournamentID uuid.UUID, participantIDs []uuid.UUID, isTeamTournament bool, bracketType bracket.BracketType) error {
	if len(participantIDs) < 2 {
		return ErrTooFewParticipants
	}
	if bracketType != bracket.SingleElimination {
		return ErrUnsupportedBracketType
	}

	// Random seeding. Fisher-Yates, so every permutation is equally likely.
	seeded := make([]uuid.UUID, len(participantIDs))
	copy(seeded, participantIDs)
	rand.Shuffle(len(seeded), func(i, j int) {
		seeded[i], seeded[j] = seeded[j], seeded[i]
	})

	n := len(seeded)
	bracketSize := calcBracketSize(n)
	totalRounds := int(math.Log2(float64(bracketSize)))

	matches, participants := buildSingleElimBracket(tournamentID, seeded, isTeamTournament, bracketSize, totalRounds)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	activated, err := s.store.ActivateTournamentTx(ctx, tx, tournamentID, bracketType)
	if err != nil {
		return fmt.Errorf("failed to activate tournament: %w", err)
	}
	if !activated {
		return ErrBracketExists
	}

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return fmt.Errorf("failed to create matches: %w", err)
	}

	if err := s.store.CreateMatchParticipants(ctx, tx, participants); err != nil {
		return fmt.Errorf("failed to create match participants: %w", err)
	}

	return tx.Commit()
}

// buildSingleElimBracket constructs the full match tree in memory. Round
// 1 pairs the shuffled list with the mirrored rule: slot i meets slot
// bracketSize-1-i, and a mirror index past the participant count is a
// bye. Later rounds are participant-less shells waiting for winners.
func buildSingleElimBracket(tournamentID uuid.UUID, seeded []uuid.UUID, isTeamTournament bool, bracketSize, totalRounds int) ([]bracket.Match, []bracket.MatchParticipant) {
	var matches []bracket.Match
	var participants []bracket.MatchParticipant

	n := len(seeded)

	// Match IDs per round keyed by bracket position, so earlier rounds
	// can point at their round+1 counterpart.
	roundIDs := make([]map[int]uuid.UUID, totalRounds+1)
	for r := totalRounds; r >= 1; r-- {
		matchesInRound := bracketSize >> r
		roundIDs[r] = make(map[int]uuid.UUID, matchesInRound)
		for pos := 0; pos < matchesInRound; pos++ {
			roundIDs[r][pos] = uuid.New()
		}
	}

	// Later rounds first: next_match_id references rows in the same bulk
	// insert, and sqlite checks foreign keys row by row.
	for r := totalRounds; r >= 1; r-- {
		matchesInRound := bracketSize >> r
		for pos := 0; pos < matchesInRound; pos++ {
			m := bracket.Match{
				ID:              roundIDs[r][pos],
				TournamentID:    tournamentID,
				RoundNumber:     r,
				MatchNumber:     pos + 1,
				BracketPosition: pos,
				Status:          bracket.MatchPending,
			}

			if r < totalRounds {
				nextID := roundIDs[r+1][pos/2]
				m.NextMatchID = &nextID
				if pos%2 == 0 {
					m.NextMatchPosition = utils.Ptr(bracket.TopSlot)
				} else {
					m.NextMatchPosition = utils.Ptr(bracket.BottomSlot)
				}
			}

			if r == 1 {
				side1 := pos
				side2 := bracketSize - 1 - pos

				// Both sides absent cannot happen for n >= 2, but a
				// degenerate input should not produce an empty match.
				if side1 >= n && side2 >= n {
					continue
				}

				switch {
				case side2 >= n:
					// Bye: the lone participant advances immediately.
					p := newParticipant(m.ID, seeded[side1], isTeamTournament, bracket.TopSlot)
					p.Result = utils.Ptr(bracket.ResultWin)
					participants = append(participants, p)

					winnerID := seeded[side1]
					m.WinnerID = &winnerID
					m.Status = bracket.MatchCompleted
				case side1 >= n:
					p := newParticipant(m.ID, seeded[side2], isTeamTournament, bracket.BottomSlot)
					p.Result = utils.Ptr(bracket.ResultWin)
					participants = append(participants, p)

					winnerID := seeded[side2]
					m.WinnerID = &winnerID
					m.Status = bracket.MatchCompleted
				default:
					participants = append(participants,
						newParticipant(m.ID, seeded[side1], isTeamTournament, bracket.TopSlot),
						newParticipant(m.ID, seeded[side2], isTeamTournament, bracket.BottomSlot))
					m.Status = bracket.MatchScheduled
				}
			}

			matches = append(matches, m)
		}
	}

	return matches, participants
}

func newParticipant(matchID, entityID uuid.UUID, isTeamTournament bool, slot int) bracket.MatchParticipant {
	p := bracket.MatchParticipant{
		ID:      uuid.New(),
		MatchID: matchID,
		Slot:    slot,
	}
	id := entityID
	if isTeamTournament {
		p.TeamID = &id
	} else {
		p.ProfileID = &id
	}
	return p
}
