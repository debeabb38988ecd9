package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"net/url"
	"strconv"
	"time"

	"eventvote/internal/domain"
	apperrors "eventvote/pkg/errors"
	"eventvote/pkg/logger"

	"go.uber.org/zap"
)

// maxCodeAttempts bounds retries when a freshly drawn random code collides
// with one already issued.
const maxCodeAttempts = 20

// AdminService covers the issuance and reporting surface: code generation,
// team registration for QR links, analytics, CSV export and the bulk wipe.
type AdminService struct {
	codes  CodeRegistry
	teams  TeamLedger
	votes  VoteStore
	wiper  DataWiper
	cache  *CacheService
	logger *logger.Logger

	origin        string // provenance tag for this deployment
	publicBaseURL string
	codeTTL       time.Duration
	passkey       string

	now func() time.Time
}

func NewAdminService(codes CodeRegistry, teams TeamLedger, votes VoteStore, wiper DataWiper, cache *CacheService, log *logger.Logger, origin, publicBaseURL string, codeTTL time.Duration, passkey string) *AdminService {
	return &AdminService{
		codes:         codes,
		teams:         teams,
		votes:         votes,
		wiper:         wiper,
		cache:         cache,
		logger:        log,
		origin:        origin,
		publicBaseURL: publicBaseURL,
		codeTTL:       codeTTL,
		passkey:       passkey,
		now:           time.Now,
	}
}

// GenerateCode issues a fresh random 2-3 digit code with the configured
// lifetime. Collisions with existing codes draw again rather than
// overwriting the old document.
func (s *AdminService) GenerateCode(ctx context.Context) (*domain.VotingCode, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := strconv.Itoa(rand.Intn(999-10+1) + 10)
		vc, err := s.IssueCode(ctx, code, domain.GeneratedViaManual)
		if err == domain.ErrCodeExists {
			continue
		}
		if err != nil {
			return nil, err
		}
		return vc, nil
	}
	return nil, apperrors.NewInternalError("Could not find a free code value", domain.ErrCodeExists)
}

// IssueCode registers a specific code value (manual generation retries, the
// paired device supplies its own values). Returns domain.ErrCodeExists when
// the value is already taken.
func (s *AdminService) IssueCode(ctx context.Context, code, via string) (*domain.VotingCode, error) {
	expiresAt := s.now().Add(s.codeTTL)
	vc := &domain.VotingCode{
		Code:         code,
		ExpiresAt:    &expiresAt,
		UsedTeams:    []string{},
		GeneratedBy:  s.origin,
		GeneratedVia: via,
	}

	if err := s.codes.Create(ctx, vc); err != nil {
		if err == domain.ErrCodeExists {
			return nil, err
		}
		s.logger.WithError(err).Error("Failed to issue voting code")
		return nil, apperrors.NewTransientStoreError(msgTransientStore, err)
	}

	s.cache.InvalidateVotingViews(ctx)

	s.logger.Logger.Info("Voting code issued",
		zap.String("code", code),
		zap.String("via", via),
		zap.Time("expires_at", expiresAt))

	return vc, nil
}

// ListCodes returns every issued code, newest first, with its computed
// status and consumed-vote count.
func (s *AdminService) ListCodes(ctx context.Context) ([]domain.CodeSummary, error) {
	codes, err := s.codes.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list voting codes")
		return nil, apperrors.NewTransientStoreError(msgTransientStore, err)
	}

	now := s.now()
	summaries := make([]domain.CodeSummary, len(codes))
	for i, vc := range codes {
		status := domain.CodeStatusActive
		if vc.Expired(now) {
			status = domain.CodeStatusExpired
		}
		summaries[i] = domain.CodeSummary{
			VotingCode: vc,
			Status:     status,
			VotesUsed:  len(vc.UsedTeams),
		}
	}
	return summaries, nil
}

// RegisterTeam creates or renames a team and returns the voting URL the
// frontend encodes into the team's QR code. An existing tally is preserved.
func (s *AdminService) RegisterTeam(ctx context.Context, teamID, teamName string) (*domain.TeamRegistration, error) {
	if teamID == "" || teamName == "" {
		return nil, apperrors.NewValidationError("Team ID and team name are required", nil)
	}

	team := &domain.Team{
		TeamID:        teamID,
		TeamName:      teamName,
		QRGeneratedBy: s.origin,
	}
	if err := s.teams.Upsert(ctx, team); err != nil {
		s.logger.WithError(err).Error("Failed to register team")
		return nil, apperrors.NewTransientStoreError(msgTransientStore, err)
	}

	s.cache.InvalidateVotingViews(ctx)

	return &domain.TeamRegistration{
		Team:      *team,
		VotingURL: s.votingURL(teamID, teamName),
	}, nil
}

// Analytics builds the dashboard summary, cached briefly.
func (s *AdminService) Analytics(ctx context.Context) (*domain.Analytics, error) {
	if cached, ok := s.cache.GetAnalytics(ctx); ok {
		return cached, nil
	}

	teams, err := s.teams.Ranking(ctx)
	if err != nil {
		return nil, apperrors.NewTransientStoreError(msgTransientStore, err)
	}
	totalVotes, err := s.votes.Count(ctx)
	if err != nil {
		return nil, apperrors.NewTransientStoreError(msgTransientStore, err)
	}
	activeCodes, err := s.codes.CountActive(ctx, s.now())
	if err != nil {
		return nil, apperrors.NewTransientStoreError(msgTransientStore, err)
	}

	analytics := &domain.Analytics{
		TotalVotes:  totalVotes,
		ActiveCodes: activeCodes,
		TotalTeams:  len(teams),
		LastUpdate:  s.now(),
	}
	if len(teams) > 0 {
		top := teams[0]
		bottom := teams[len(teams)-1]
		analytics.TopTeam = &top
		analytics.BottomTeam = &bottom
	}

	s.cache.SetAnalytics(ctx, analytics)
	return analytics, nil
}

// ExportRankingsCSV writes the current ranking as CSV.
func (s *AdminService) ExportRankingsCSV(ctx context.Context, w io.Writer) error {
	teams, err := s.teams.Ranking(ctx)
	if err != nil {
		return apperrors.NewTransientStoreError(msgTransientStore, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Rank", "Team ID", "Team Name", "Votes"}); err != nil {
		return apperrors.NewInternalError("Failed to write CSV", err)
	}
	for i, team := range teams {
		record := []string{
			strconv.Itoa(i + 1),
			team.TeamID,
			team.TeamName,
			strconv.Itoa(team.Votes),
		}
		if err := cw.Write(record); err != nil {
			return apperrors.NewInternalError("Failed to write CSV", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WipeAll deletes every team, code and vote. Guarded by the configured
// passkey on top of admin authentication; this is the only path that can
// lower a tally.
func (s *AdminService) WipeAll(ctx context.Context, passkey string) (int64, error) {
	if passkey != s.passkey {
		return 0, apperrors.NewAuthorizationError("Invalid passkey")
	}

	deleted, err := s.wiper.DeleteAllData(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Bulk data wipe failed")
		return 0, apperrors.NewTransientStoreError(msgTransientStore, err)
	}

	s.cache.InvalidateVotingViews(ctx)

	s.logger.Logger.Warn("All voting data deleted", zap.Int64("records", deleted))
	return deleted, nil
}

func (s *AdminService) votingURL(teamID, teamName string) string {
	return fmt.Sprintf("%s/vote?team=%s&name=%s",
		s.publicBaseURL, url.QueryEscape(teamID), url.QueryEscape(teamName))
}
