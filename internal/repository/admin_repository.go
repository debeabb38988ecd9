package repository

import (
	"context"
	"fmt"

	"eventvote/pkg/database"

	"github.com/jackc/pgx/v5"
)

// AdminRepository backs the destructive admin operations.
type AdminRepository struct {
	db *database.PostgresDB
}

func NewAdminRepository(db *database.PostgresDB) *AdminRepository {
	return &AdminRepository{db: db}
}

// DeleteAllData wipes votes, voting codes and teams in a single transaction
// and returns the number of records removed.
func (r *AdminRepository) DeleteAllData(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.db.WithSerializableTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		deleted = 0
		for _, table := range []string{"votes", "voting_codes", "teams"} {
			tag, err := tx.Exec(ctx, "DELETE FROM "+table)
			if err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
			deleted += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
