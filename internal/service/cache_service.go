package service

import (
	"context"
	"encoding/json"

	"eventvote/internal/domain"
	"eventvote/pkg/logger"
	"eventvote/pkg/redis"
)

// CacheService fronts Redis for the read-heavy views (rankings, analytics).
// A nil *CacheService is valid and disables caching entirely; cache failures
// must never fail the underlying operation.
type CacheService struct {
	redis  *redis.Client
	logger *logger.Logger
}

func NewCacheService(redisClient *redis.Client, log *logger.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: log,
	}
}

// GetRankings returns the cached ranking view, or (nil, false) on miss.
func (s *CacheService) GetRankings(ctx context.Context) (*domain.Rankings, bool) {
	if s == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, s.redis.KeyBuilder.KeyRankings())
	if err != nil || data == "" {
		return nil, false
	}
	var rankings domain.Rankings
	if err := json.Unmarshal([]byte(data), &rankings); err != nil {
		s.logger.WithError(err).Warn("Failed to decode cached rankings")
		return nil, false
	}
	return &rankings, true
}

// SetRankings caches the ranking view.
func (s *CacheService) SetRankings(ctx context.Context, rankings *domain.Rankings) {
	if s == nil {
		return
	}
	data, err := json.Marshal(rankings)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.redis.KeyBuilder.KeyRankings(), string(data), redis.TTLRankings); err != nil {
		s.logger.WithError(err).Warn("Failed to cache rankings")
	}
}

// GetAnalytics returns the cached admin summary, or (nil, false) on miss.
func (s *CacheService) GetAnalytics(ctx context.Context) (*domain.Analytics, bool) {
	if s == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, s.redis.KeyBuilder.KeyAnalytics())
	if err != nil || data == "" {
		return nil, false
	}
	var analytics domain.Analytics
	if err := json.Unmarshal([]byte(data), &analytics); err != nil {
		s.logger.WithError(err).Warn("Failed to decode cached analytics")
		return nil, false
	}
	return &analytics, true
}

// SetAnalytics caches the admin summary.
func (s *CacheService) SetAnalytics(ctx context.Context, analytics *domain.Analytics) {
	if s == nil {
		return
	}
	data, err := json.Marshal(analytics)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.redis.KeyBuilder.KeyAnalytics(), string(data), redis.TTLAnalytics); err != nil {
		s.logger.WithError(err).Warn("Failed to cache analytics")
	}
}

// InvalidateVotingViews drops every cached view derived from tallies. Called
// after any accepted vote or admin mutation.
func (s *CacheService) InvalidateVotingViews(ctx context.Context) {
	if s == nil {
		return
	}
	err := s.redis.Delete(ctx,
		s.redis.KeyBuilder.KeyRankings(),
		s.redis.KeyBuilder.KeyAnalytics(),
		s.redis.KeyBuilder.KeyCodeList(),
	)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate voting view caches")
	}
}

// HealthCheck pings the cache backend.
func (s *CacheService) HealthCheck(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.redis.Health(ctx)
}
