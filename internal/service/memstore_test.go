package service

import (
	"context"
	"sync"
	"time"

	"eventvote/internal/domain"
)

// memStore is an in-memory stand-in for the Postgres repositories. CommitVote
// mirrors the transactional semantics: the duplicate re-check, the tally
// increment and the used-team append happen under one lock.
type memStore struct {
	mu    sync.Mutex
	codes map[string]*domain.VotingCode
	teams map[string]*domain.Team
	votes []domain.Vote

	clock func() time.Time

	// commitBarrier, when set, runs after authorization but before the
	// commit mutates state. Lets tests line up racing submissions.
	commitBarrier func()

	failCommit error
	failLookup error
}

func newMemStore(clock func() time.Time) *memStore {
	return &memStore{
		codes: make(map[string]*domain.VotingCode),
		teams: make(map[string]*domain.Team),
		clock: clock,
	}
}

func (m *memStore) addCode(code string, expiresAt *time.Time) *domain.VotingCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	vc := &domain.VotingCode{
		Code:      code,
		CreatedAt: m.clock(),
		ExpiresAt: expiresAt,
		UsedTeams: []string{},
	}
	m.codes[code] = vc
	return vc
}

func (m *memStore) addTeam(teamID, teamName string, votes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[teamID] = &domain.Team{
		TeamID:    teamID,
		TeamName:  teamName,
		Votes:     votes,
		CreatedAt: m.clock(),
	}
}

// CodeRegistry

func (m *memStore) GetByCode(ctx context.Context, code string) (*domain.VotingCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLookup != nil {
		return nil, m.failLookup
	}
	vc, ok := m.codes[code]
	if !ok {
		return nil, nil
	}
	copied := *vc
	copied.UsedTeams = append([]string(nil), vc.UsedTeams...)
	return &copied, nil
}

func (m *memStore) Create(ctx context.Context, vc *domain.VotingCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[vc.Code]; ok {
		return domain.ErrCodeExists
	}
	vc.CreatedAt = m.clock()
	stored := *vc
	m.codes[vc.Code] = &stored
	return nil
}

func (m *memStore) List(ctx context.Context) ([]domain.VotingCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.VotingCode, 0, len(m.codes))
	for _, vc := range m.codes {
		out = append(out, *vc)
	}
	return out, nil
}

func (m *memStore) CountActive(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, vc := range m.codes {
		if !vc.Expired(now) {
			count++
		}
	}
	return count, nil
}

// TeamLedger

func (m *memStore) GetByID(ctx context.Context, teamID string) (*domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	team, ok := m.teams[teamID]
	if !ok {
		return nil, nil
	}
	copied := *team
	return &copied, nil
}

func (m *memStore) Upsert(ctx context.Context, team *domain.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.teams[team.TeamID]; ok {
		existing.TeamName = team.TeamName
		existing.QRGeneratedBy = team.QRGeneratedBy
		team.Votes = existing.Votes
		team.CreatedAt = existing.CreatedAt
		return nil
	}
	team.CreatedAt = m.clock()
	stored := *team
	m.teams[team.TeamID] = &stored
	return nil
}

func (m *memStore) Ranking(ctx context.Context) ([]domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Team, 0, len(m.teams))
	for _, team := range m.teams {
		out = append(out, *team)
	}
	// Insertion sort by votes descending, name ascending on ties.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			if out[j].Votes > out[j-1].Votes ||
				(out[j].Votes == out[j-1].Votes && out[j].TeamName < out[j-1].TeamName) {
				out[j], out[j-1] = out[j-1], out[j]
			} else {
				break
			}
		}
	}
	return out, nil
}

// VoteStore

func (m *memStore) CommitVote(ctx context.Context, vote *domain.Vote) error {
	if m.commitBarrier != nil {
		m.commitBarrier()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCommit != nil {
		return m.failCommit
	}

	vc, ok := m.codes[vote.Code]
	if !ok {
		return domain.ErrCodeVanished
	}
	for _, id := range vc.UsedTeams {
		if id == vote.TeamID {
			return domain.ErrTeamAlreadyCounted
		}
	}

	now := m.clock()

	team, ok := m.teams[vote.TeamID]
	if !ok {
		m.teams[vote.TeamID] = &domain.Team{
			TeamID:    vote.TeamID,
			TeamName:  vote.TeamName,
			Votes:     1,
			CreatedAt: now,
		}
	} else {
		team.Votes++
	}

	vc.UsedTeams = append(vc.UsedTeams, vote.TeamID)
	lastVote := now
	vc.LastVoteAt = &lastVote

	vote.VotedAt = now
	m.votes = append(m.votes, *vote)
	return nil
}

func (m *memStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.votes), nil
}

func (m *memStore) ListAll(ctx context.Context) ([]domain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Vote(nil), m.votes...), nil
}

// DataWiper

func (m *memStore) DeleteAllData(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := int64(len(m.votes) + len(m.codes) + len(m.teams))
	m.votes = nil
	m.codes = make(map[string]*domain.VotingCode)
	m.teams = make(map[string]*domain.Team)
	return deleted, nil
}

// fakeClock is a manually advanced clock for cooldown tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
