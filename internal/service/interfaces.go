package service

import (
	"context"
	"time"

	"eventvote/internal/domain"
)

// CodeRegistry is the voting-code store contract consumed by the engine and
// admin issuance.
type CodeRegistry interface {
	GetByCode(ctx context.Context, code string) (*domain.VotingCode, error)
	Create(ctx context.Context, vc *domain.VotingCode) error
	List(ctx context.Context) ([]domain.VotingCode, error)
	CountActive(ctx context.Context, now time.Time) (int, error)
}

// TeamLedger is the team store contract.
type TeamLedger interface {
	GetByID(ctx context.Context, teamID string) (*domain.Team, error)
	Upsert(ctx context.Context, team *domain.Team) error
	Ranking(ctx context.Context) ([]domain.Team, error)
}

// VoteStore owns the audit journal and the atomic commit.
type VoteStore interface {
	CommitVote(ctx context.Context, vote *domain.Vote) error
	Count(ctx context.Context) (int, error)
	ListAll(ctx context.Context) ([]domain.Vote, error)
}

// DataWiper performs the bulk admin wipe.
type DataWiper interface {
	DeleteAllData(ctx context.Context) (int64, error)
}
