package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"eventvote/internal/domain"
	"eventvote/pkg/database"
	apperrors "eventvote/pkg/errors"
	"eventvote/pkg/logger"
	"eventvote/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// voteCooldown is the global per-code minimum interval between any two
// accepted votes sharing the same code, regardless of target team.
const voteCooldown = 30 * time.Second

var codePattern = regexp.MustCompile(`^\d{2,3}$`)

// User-facing messages. Denial messages name the specific reason; store
// failures stay generic so internal error text never leaks.
const (
	msgInvalidFormat   = "Invalid code format. Please enter 2-3 digits."
	msgCodeNotFound    = "Invalid code. This code does not exist or has expired."
	msgDuplicateVote   = "You have already voted for this team. Try voting for other teams!"
	msgVoteAccepted    = "Vote submitted successfully!"
	msgTransientStore  = "Something went wrong. Please try again."
	msgPermissionIssue = "Permission denied. Please check the store access rules."
)

// VotingService is the vote authorization engine: it decides admit/deny for
// a (code, team) submission and performs the atomic state transition across
// the code registry, team ledger and audit journal. All collaborators are
// injected; tests swap in an in-memory store and a fake clock.
type VotingService struct {
	codes   CodeRegistry
	teams   TeamLedger
	votes   VoteStore
	cache   *CacheService
	metrics *metrics.VoteMetrics
	logger  *logger.Logger
	now     func() time.Time
}

func NewVotingService(codes CodeRegistry, teams TeamLedger, votes VoteStore, cache *CacheService, voteMetrics *metrics.VoteMetrics, log *logger.Logger) *VotingService {
	return &VotingService{
		codes:   codes,
		teams:   teams,
		votes:   votes,
		cache:   cache,
		metrics: voteMetrics,
		logger:  log,
		now:     time.Now,
	}
}

// SubmitVote runs the authorization sequence for one submission. Checks run
// cheapest first and each one short-circuits to a typed denial
// (*apperrors.AppError); only a fully admitted vote reaches the commit.
func (s *VotingService) SubmitVote(ctx context.Context, code, teamID, teamName string) (*domain.VoteReceipt, error) {
	// 1. Format. Denied before any store access.
	if !codePattern.MatchString(code) {
		s.metrics.RecordDenied(string(apperrors.ErrorTypeFormat))
		return nil, apperrors.NewFormatError(msgInvalidFormat)
	}
	if teamID == "" {
		s.metrics.RecordDenied(string(apperrors.ErrorTypeValidation))
		return nil, apperrors.NewValidationError("Team ID is required", nil)
	}
	if teamName == "" {
		teamName = teamID
	}

	// 2. Existence & expiry. A code without a parseable expiry is expired.
	vc, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return nil, s.storeFailure("code lookup failed", err)
	}
	now := s.now()
	if vc == nil || vc.Expired(now) {
		s.metrics.RecordDenied(string(apperrors.ErrorTypeNotFoundOrExpired))
		return nil, apperrors.NewNotFoundOrExpiredError(msgCodeNotFound)
	}

	// 3. Cooldown, global for the code. A code that has never voted (or
	// whose last-vote stamp is missing) passes.
	if remaining := vc.CooldownRemaining(now, voteCooldown); remaining > 0 {
		s.metrics.RecordDenied(string(apperrors.ErrorTypeRateLimited))
		return nil, apperrors.NewRateLimitedError(
			rateLimitMessage(remaining), remaining)
	}

	// 4. One vote per team per code.
	if vc.HasVotedFor(teamID) {
		s.metrics.RecordDenied(string(apperrors.ErrorTypeDuplicateVote))
		return nil, apperrors.NewDuplicateVoteError(msgDuplicateVote)
	}

	// 5. Atomic commit.
	vote := &domain.Vote{
		ID:       uuid.NewString(),
		TeamID:   teamID,
		TeamName: teamName,
		Code:     code,
	}
	if err := s.votes.CommitVote(ctx, vote); err != nil {
		switch {
		case errors.Is(err, domain.ErrTeamAlreadyCounted):
			// A concurrent submitter with the same code and team won.
			s.metrics.RecordDenied(string(apperrors.ErrorTypeDuplicateVote))
			return nil, apperrors.NewDuplicateVoteError(msgDuplicateVote)
		case errors.Is(err, domain.ErrCodeVanished):
			s.metrics.RecordDenied(string(apperrors.ErrorTypeIntegrity))
			s.logger.WithError(err).WithField("code", code).Error("Voting code vanished between check and commit")
			return nil, apperrors.NewIntegrityError(msgTransientStore, err)
		default:
			return nil, s.storeFailure("vote commit failed", err)
		}
	}

	s.metrics.RecordAccepted()
	s.cache.InvalidateVotingViews(ctx)

	s.logger.Logger.Info("Vote accepted",
		zap.String("code", code),
		zap.String("team_id", teamID),
		zap.String("vote_id", vote.ID))

	return &domain.VoteReceipt{
		VoteID:   vote.ID,
		TeamID:   teamID,
		TeamName: teamName,
		VotedAt:  vote.VotedAt,
		Message:  msgVoteAccepted,
	}, nil
}

// GetRankings returns the live ranking view, cached for a short interval.
func (s *VotingService) GetRankings(ctx context.Context) (*domain.Rankings, error) {
	if cached, ok := s.cache.GetRankings(ctx); ok {
		return cached, nil
	}

	teams, err := s.teams.Ranking(ctx)
	if err != nil {
		return nil, s.storeFailure("ranking query failed", err)
	}

	total := 0
	for _, team := range teams {
		total += team.Votes
	}

	rankings := &domain.Rankings{
		Teams:      buildRankings(teams, total),
		TotalVotes: total,
		LastUpdate: s.now(),
	}

	s.cache.SetRankings(ctx, rankings)
	return rankings, nil
}

// storeFailure logs the full cause and returns the sanitized denial. A
// permission problem gets its own operator-facing message; everything else
// is a generic transient error.
func (s *VotingService) storeFailure(msg string, err error) error {
	s.logger.WithError(err).Error("Store operation failed: " + msg)
	s.metrics.RecordDenied(string(apperrors.ErrorTypeTransientStore))
	if database.IsPermissionDenied(err) {
		return apperrors.NewTransientStoreError(msgPermissionIssue, err)
	}
	return apperrors.NewTransientStoreError(msgTransientStore, err)
}

func rateLimitMessage(remaining int) string {
	return fmt.Sprintf("Please wait %d seconds before voting again", remaining)
}

// buildRankings assigns ranks and vote shares, input already ordered by
// tally descending.
func buildRankings(teams []domain.Team, totalVotes int) []domain.TeamRanking {
	ranked := make([]domain.TeamRanking, len(teams))
	for i, team := range teams {
		percentage := 0.0
		if totalVotes > 0 {
			percentage = float64(team.Votes) / float64(totalVotes) * 100
		}
		ranked[i] = domain.TeamRanking{
			Team:       team,
			Rank:       i + 1,
			Percentage: percentage,
		}
	}
	return ranked
}
