package repository

import (
	"context"
	"errors"
	"fmt"

	"eventvote/internal/domain"
	"eventvote/pkg/database"

	"github.com/jackc/pgx/v5"
)

// TeamRepository manages team documents in the teams table.
type TeamRepository struct {
	db *database.PostgresDB
}

func NewTeamRepository(db *database.PostgresDB) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetByID looks up a team by its identifier. Returns (nil, nil) when the
// team does not exist.
func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (*domain.Team, error) {
	var team domain.Team
	query := `
		SELECT team_id, team_name, votes, created_at, qr_generated_by, qr_generated_at
		FROM teams
		WHERE team_id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, teamID).Scan(
		&team.TeamID,
		&team.TeamName,
		&team.Votes,
		&team.CreatedAt,
		&team.QRGeneratedBy,
		&team.QRGeneratedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// Upsert creates or updates a team from admin issuance. An existing tally is
// never reset here; only the engine's commit moves votes.
func (r *TeamRepository) Upsert(ctx context.Context, team *domain.Team) error {
	query := `
		INSERT INTO teams (team_id, team_name, votes, created_at, qr_generated_by, qr_generated_at)
		VALUES ($1, $2, 0, now(), $3, now())
		ON CONFLICT (team_id) DO UPDATE
		SET team_name = EXCLUDED.team_name,
		    qr_generated_by = EXCLUDED.qr_generated_by,
		    qr_generated_at = EXCLUDED.qr_generated_at
		RETURNING votes, created_at, qr_generated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		team.TeamID,
		team.TeamName,
		team.QRGeneratedBy,
	).Scan(&team.Votes, &team.CreatedAt, &team.QRGeneratedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	return nil
}

// Ranking returns all teams ordered by tally, highest first.
func (r *TeamRepository) Ranking(ctx context.Context) ([]domain.Team, error) {
	query := `
		SELECT team_id, team_name, votes, created_at, qr_generated_by, qr_generated_at
		FROM teams
		ORDER BY votes DESC, team_name ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get team ranking: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var team domain.Team
		err := rows.Scan(
			&team.TeamID,
			&team.TeamName,
			&team.Votes,
			&team.CreatedAt,
			&team.QRGeneratedBy,
			&team.QRGeneratedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}
