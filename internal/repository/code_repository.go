package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventvote/internal/domain"
	"eventvote/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CodeRepository manages voting-code documents in the voting_codes table.
type CodeRepository struct {
	db *database.PostgresDB
}

func NewCodeRepository(db *database.PostgresDB) *CodeRepository {
	return &CodeRepository{db: db}
}

// GetByCode looks up a voting code by its value. Returns (nil, nil) when the
// code does not exist.
func (r *CodeRepository) GetByCode(ctx context.Context, code string) (*domain.VotingCode, error) {
	var vc domain.VotingCode
	query := `
		SELECT code, created_at, expires_at, used_teams, last_vote_at, generated_by, generated_via
		FROM voting_codes
		WHERE code = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, code).Scan(
		&vc.Code,
		&vc.CreatedAt,
		&vc.ExpiresAt,
		&vc.UsedTeams,
		&vc.LastVoteAt,
		&vc.GeneratedBy,
		&vc.GeneratedVia,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voting code: %w", err)
	}

	return &vc, nil
}

// Create inserts a new voting code. The creation timestamp is assigned by
// the store. Returns domain.ErrCodeExists when the value is already taken.
func (r *CodeRepository) Create(ctx context.Context, vc *domain.VotingCode) error {
	query := `
		INSERT INTO voting_codes (code, created_at, expires_at, used_teams, generated_by, generated_via)
		VALUES ($1, now(), $2, '{}', $3, $4)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		vc.Code,
		vc.ExpiresAt,
		vc.GeneratedBy,
		vc.GeneratedVia,
	).Scan(&vc.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrCodeExists
		}
		return fmt.Errorf("failed to create voting code: %w", err)
	}

	vc.UsedTeams = []string{}
	return nil
}

// List returns all codes ordered by creation time, newest first.
func (r *CodeRepository) List(ctx context.Context) ([]domain.VotingCode, error) {
	query := `
		SELECT code, created_at, expires_at, used_teams, last_vote_at, generated_by, generated_via
		FROM voting_codes
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list voting codes: %w", err)
	}
	defer rows.Close()

	var codes []domain.VotingCode
	for rows.Next() {
		var vc domain.VotingCode
		err := rows.Scan(
			&vc.Code,
			&vc.CreatedAt,
			&vc.ExpiresAt,
			&vc.UsedTeams,
			&vc.LastVoteAt,
			&vc.GeneratedBy,
			&vc.GeneratedVia,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voting code: %w", err)
		}
		codes = append(codes, vc)
	}

	return codes, rows.Err()
}

// CountActive counts codes whose expiry is still in the future.
func (r *CodeRepository) CountActive(ctx context.Context, now time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM voting_codes WHERE expires_at > $1`

	if err := r.db.Pool.QueryRow(ctx, query, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active codes: %w", err)
	}

	return count, nil
}
