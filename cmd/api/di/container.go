package di

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-crud-service/cmd/api/infrastructure"
	"user-crud-service/internal/adapter/cache"
	mongorepo "user-crud-service/internal/adapter/db/mongo"
	"user-crud-service/internal/adapter/db/postgres"
	ginhandler "user-crud-service/internal/adapter/gin/handler"
	"user-crud-service/internal/adapter/gin/middleware"
	"user-crud-service/internal/adapter/repository/cached"
	"user-crud-service/internal/config"
	"user-crud-service/internal/usecase/user"
	redisclient "user-crud-service/pkg/redis"
)

// Store is a primary user store.
type Store interface {
	user.Repository
	Ping(ctx context.Context) error
}

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB
	Mongo         *mongo.Client
	RedisClient   *redisclient.Client
	Store         Store
	UserUC        user.UserUsecase
	RateLimiter   *middleware.RateLimiter
	UserHandler   *ginhandler.UserHandler
	SystemHandler *ginhandler.SystemHandler

	migrate func(ctx context.Context) error
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	if err := c.initStore(ctx); err != nil {
		return nil, err
	}

	// Redis is best-effort; nil means no cache and no rate limiting.
	c.RedisClient = infrastructure.NewRedisClient(ctx, cfg, l)

	var repo user.Repository = c.Store
	if c.RedisClient != nil {
		userCache := cache.NewRedisUserCache(
			c.RedisClient.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewCachedUserRepository(c.Store, userCache, l)

		c.RateLimiter = middleware.NewRateLimiter(
			c.RedisClient.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
	}

	c.UserUC = user.New(repo, l)
	c.UserHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.SystemHandler = ginhandler.NewSystemHandler(c.Store, cfg.Logger.ServiceName, cfg.Logger.ServiceVersion, l)

	return c, nil
}

func (c *Container) initStore(ctx context.Context) error {
	switch c.Config.Store.Driver {
	case config.DriverMongo:
		client, err := infrastructure.NewMongo(ctx, c.Config, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize mongodb: %w", err)
		}
		c.Mongo = client

		repo := mongorepo.NewUserRepoMongo(
			client.Database(c.Config.Mongo.Database).Collection(c.Config.Mongo.Collection),
			c.Logger,
		)
		c.Store = repo
		c.migrate = repo.EnsureIndexes
	default:
		db, err := infrastructure.NewDatabase(c.Config, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db

		repo := postgres.NewUserRepoPG(db, c.Logger)
		c.Store = repo
		c.migrate = repo.Migrate
	}
	return nil
}

// Migrate creates the users table or collection indexes for the selected store.
func (c *Container) Migrate(ctx context.Context) error {
	if c.migrate == nil {
		return nil
	}
	if err := c.migrate(ctx); err != nil {
		return err
	}
	c.Logger.Info("store schema is up to date", zap.String("driver", c.Config.Store.Driver))
	return nil
}

// Close closes all resources held by the container
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if c.Mongo != nil {
		if err := infrastructure.CloseMongo(ctx, c.Mongo); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
