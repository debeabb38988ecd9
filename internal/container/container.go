package container

import (
	"context"

	"eventvote/internal/config"
	"eventvote/internal/repository"
	"eventvote/internal/service"
	"eventvote/pkg/database"
	"eventvote/pkg/logger"
	"eventvote/pkg/metrics"
	"eventvote/pkg/redis"

	"github.com/prometheus/client_golang/prometheus"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB
	RedisClient *redis.Client
	Registry    *prometheus.Registry

	VotingService *service.VotingService
	AdminService  *service.AdminService
	DeviceService *service.DeviceService
	CacheService  *service.CacheService
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Redis is optional; without it the views are computed on every request.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	var cacheService *service.CacheService
	if redisClient != nil {
		cacheService = service.NewCacheService(redisClient, log)
	}

	registry := prometheus.NewRegistry()
	voteMetrics := metrics.NewVoteMetrics(registry)

	codeRepo := repository.NewCodeRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	votingService := service.NewVotingService(codeRepo, teamRepo, voteRepo, cacheService, voteMetrics, log)
	adminService := service.NewAdminService(codeRepo, teamRepo, voteRepo, adminRepo, cacheService, log,
		cfg.Origin(), cfg.PublicBaseURL, cfg.CodeTTL, cfg.AdminPasskey)
	deviceService := service.NewDeviceService(adminService, log, cfg.DevicePollInterval)

	return &Container{
		Config:        cfg,
		Logger:        log,
		DB:            db,
		RedisClient:   redisClient,
		Registry:      registry,
		VotingService: votingService,
		AdminService:  adminService,
		DeviceService: deviceService,
		CacheService:  cacheService,
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// Close releases the container's long-lived resources.
func (c *Container) Close(ctx context.Context) {
	if c.DeviceService != nil {
		_ = c.DeviceService.Stop(ctx)
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close Redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
