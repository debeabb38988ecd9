package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventvote/internal/domain"
	"eventvote/internal/service"
	"eventvote/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore implements the store contracts with canned data so the handler
// drives a real VotingService.
type stubStore struct {
	code  *domain.VotingCode
	teams []domain.Team
	votes []domain.Vote
}

func (s *stubStore) GetByCode(ctx context.Context, code string) (*domain.VotingCode, error) {
	if s.code != nil && s.code.Code == code {
		copied := *s.code
		return &copied, nil
	}
	return nil, nil
}

func (s *stubStore) Create(ctx context.Context, vc *domain.VotingCode) error { return nil }

func (s *stubStore) List(ctx context.Context) ([]domain.VotingCode, error) { return nil, nil }

func (s *stubStore) CountActive(ctx context.Context, now time.Time) (int, error) { return 0, nil }

func (s *stubStore) GetByID(ctx context.Context, teamID string) (*domain.Team, error) {
	return nil, nil
}

func (s *stubStore) Upsert(ctx context.Context, team *domain.Team) error { return nil }

func (s *stubStore) Ranking(ctx context.Context) ([]domain.Team, error) {
	return append([]domain.Team(nil), s.teams...), nil
}

func (s *stubStore) CommitVote(ctx context.Context, vote *domain.Vote) error {
	vote.VotedAt = time.Now()
	s.votes = append(s.votes, *vote)
	return nil
}

func (s *stubStore) Count(ctx context.Context) (int, error) { return len(s.votes), nil }

func (s *stubStore) ListAll(ctx context.Context) ([]domain.Vote, error) { return s.votes, nil }

func (s *stubStore) DeleteAllData(ctx context.Context) (int64, error) {
	deleted := int64(len(s.votes) + len(s.teams))
	s.votes = nil
	s.teams = nil
	s.code = nil
	return deleted, nil
}

func newVotingHandlerWithStore(store *stubStore) *VotingHandler {
	svc := service.NewVotingService(store, store, store, nil, nil, logger.NewNop())
	return NewVotingHandler(svc, logger.NewNop())
}

func activeCode(code string) *domain.VotingCode {
	exp := time.Now().Add(45 * time.Minute)
	return &domain.VotingCode{
		Code:      code,
		ExpiresAt: &exp,
		UsedTeams: []string{},
	}
}

func postVote(t *testing.T, h *VotingHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/votes", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.SubmitVote(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSubmitVote_Accepted(t *testing.T) {
	store := &stubStore{code: activeCode("42")}
	h := newVotingHandlerWithStore(store)

	rec := postVote(t, h, domain.VoteRequest{Code: "42", TeamID: "team-a", TeamName: "Alpha"})

	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Vote submitted successfully!", body["message"])

	vote, ok := body["vote"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "team-a", vote["team_id"])
	assert.NotEmpty(t, vote["vote_id"])

	require.Len(t, store.votes, 1)
}

func TestSubmitVote_FormatDenialEnvelope(t *testing.T) {
	h := newVotingHandlerWithStore(&stubStore{})

	rec := postVote(t, h, domain.VoteRequest{Code: "12345", TeamID: "team-a"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid code format. Please enter 2-3 digits.", body["message"])
	assert.Equal(t, "format", body["type"])
}

func TestSubmitVote_UnknownCodeEnvelope(t *testing.T) {
	h := newVotingHandlerWithStore(&stubStore{})

	rec := postVote(t, h, domain.VoteRequest{Code: "99", TeamID: "team-a"})

	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "not_found_or_expired", body["type"])
}

func TestSubmitVote_RateLimitEnvelopeCarriesRetryAfter(t *testing.T) {
	code := activeCode("42")
	lastVote := time.Now().Add(-5 * time.Second)
	code.LastVoteAt = &lastVote

	h := newVotingHandlerWithStore(&stubStore{code: code})

	rec := postVote(t, h, domain.VoteRequest{Code: "42", TeamID: "team-b"})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "rate_limited", body["type"])

	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(25), details["retry_after_seconds"])
}

func TestSubmitVote_DuplicateTeamEnvelope(t *testing.T) {
	code := activeCode("42")
	code.UsedTeams = []string{"team-a"}

	h := newVotingHandlerWithStore(&stubStore{code: code})

	rec := postVote(t, h, domain.VoteRequest{Code: "42", TeamID: "team-a"})

	assert.Equal(t, http.StatusConflict, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "duplicate_vote", body["type"])
}

func TestSubmitVote_MalformedBody(t *testing.T) {
	h := newVotingHandlerWithStore(&stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/votes", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.SubmitVote(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRankings_ETagRevalidation(t *testing.T) {
	store := &stubStore{
		teams: []domain.Team{
			{TeamID: "team-a", TeamName: "Alpha", Votes: 3},
			{TeamID: "team-b", TeamName: "Bravo", Votes: 1},
		},
	}
	h := newVotingHandlerWithStore(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rankings", nil)
	rec := httptest.NewRecorder()
	h.GetRankings(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var rankings domain.Rankings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rankings))
	require.Len(t, rankings.Teams, 2)
	assert.Equal(t, "team-a", rankings.Teams[0].TeamID)
	assert.Equal(t, 4, rankings.TotalVotes)

	// Conditional request with the same tag short-circuits.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/rankings", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.GetRankings(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}
