package repository

import (
	"context"
	"errors"
	"fmt"

	"eventvote/internal/domain"
	"eventvote/pkg/database"

	"github.com/jackc/pgx/v5"
)

// VoteRepository owns the append-only votes journal and the atomic commit
// the authorization engine runs once a submission has passed every check.
type VoteRepository struct {
	db *database.PostgresDB
}

func NewVoteRepository(db *database.PostgresDB) *VoteRepository {
	return &VoteRepository{db: db}
}

// CommitVote applies the accepted vote as one serializable transaction:
// create-or-increment the team, append the team to the code's used set and
// stamp last_vote_at, and record the audit vote. All three writes commit
// together or none do. used_teams is re-read under row lock right before
// the append so a concurrent same-code commit for the same team surfaces as
// domain.ErrTeamAlreadyCounted instead of a lost update.
func (r *VoteRepository) CommitVote(ctx context.Context, vote *domain.Vote) error {
	return r.db.WithSerializableTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Team: lazy-create on first vote, otherwise bump the tally.
		var votes int
		err := tx.QueryRow(ctx,
			`SELECT votes FROM teams WHERE team_id = $1 FOR UPDATE`,
			vote.TeamID,
		).Scan(&votes)

		switch {
		case errors.Is(err, pgx.ErrNoRows):
			_, err = tx.Exec(ctx,
				`INSERT INTO teams (team_id, team_name, votes, created_at) VALUES ($1, $2, 1, now())`,
				vote.TeamID, vote.TeamName,
			)
			if err != nil {
				return fmt.Errorf("failed to create team: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to read team: %w", err)
		default:
			_, err = tx.Exec(ctx,
				`UPDATE teams SET votes = votes + 1 WHERE team_id = $1`,
				vote.TeamID,
			)
			if err != nil {
				return fmt.Errorf("failed to increment team tally: %w", err)
			}
		}

		// Code: must still exist, and the team must not have slipped into
		// used_teams since the pre-commit check.
		var usedTeams []string
		err = tx.QueryRow(ctx,
			`SELECT used_teams FROM voting_codes WHERE code = $1 FOR UPDATE`,
			vote.Code,
		).Scan(&usedTeams)

		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCodeVanished
		}
		if err != nil {
			return fmt.Errorf("failed to read voting code: %w", err)
		}
		for _, id := range usedTeams {
			if id == vote.TeamID {
				return domain.ErrTeamAlreadyCounted
			}
		}

		_, err = tx.Exec(ctx,
			`UPDATE voting_codes SET used_teams = array_append(used_teams, $2), last_vote_at = now() WHERE code = $1`,
			vote.Code, vote.TeamID,
		)
		if err != nil {
			return fmt.Errorf("failed to update voting code: %w", err)
		}

		// Audit record, with the store-assigned timestamp echoed back.
		err = tx.QueryRow(ctx,
			`INSERT INTO votes (id, team_id, team_name, code, voted_at) VALUES ($1, $2, $3, $4, now()) RETURNING voted_at`,
			vote.ID, vote.TeamID, vote.TeamName, vote.Code,
		).Scan(&vote.VotedAt)
		if err != nil {
			return fmt.Errorf("failed to record vote: %w", err)
		}

		return nil
	})
}

// Count returns the total number of audit votes.
func (r *VoteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM votes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

// ListAll returns every audit vote, oldest first.
func (r *VoteRepository) ListAll(ctx context.Context) ([]domain.Vote, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, team_id, team_name, code, voted_at FROM votes ORDER BY voted_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var v domain.Vote
		if err := rows.Scan(&v.ID, &v.TeamID, &v.TeamName, &v.Code, &v.VotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}

	return votes, rows.Err()
}
