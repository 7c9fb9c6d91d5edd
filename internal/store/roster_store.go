package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/quansodmg/Tournament-sub002/internal/roster"
)

const (
	createTeamQuery    = "INSERT INTO teams (id, name) VALUES (:id, :name)"
	getTeamQuery       = "SELECT * FROM teams WHERE id = ?"
	createProfileQuery = "INSERT INTO profiles (id, username) VALUES (:id, :username)"
	getProfileQuery    = "SELECT * FROM profiles WHERE id = ?"
)

type RosterStore struct {
	db *sqlx.DB
}

func NewRosterStore(db *sqlx.DB) *RosterStore {
	return &RosterStore{db: db}
}

func (s *RosterStore) CreateTeam(ctx context.Context, team *roster.Team) error {
	_, err := s.db.NamedExecContext(ctx, createTeamQuery, team)
	return err
}

func (s *RosterStore) GetTeam(ctx context.Context, id string) (*roster.Team, error) {
	var team roster.Team
	err := s.db.GetContext(ctx, &team, getTeamQuery, id)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *RosterStore) CreateProfile(ctx context.Context, profile *roster.Profile) error {
	_, err := s.db.NamedExecContext(ctx, createProfileQuery, profile)
	return err
}

func (s *RosterStore) GetProfile(ctx context.Context, id string) (*roster.Profile, error) {
	var profile roster.Profile
	err := s.db.GetContext(ctx, &profile, getProfileQuery, id)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
