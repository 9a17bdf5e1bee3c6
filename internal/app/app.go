// Package app assembles the worker's components from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/config"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/database"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/feed"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/matcher"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/pool"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/storage"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/store"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/trigger"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = time.Second
)

// App holds the wired components. Redis-backed fields are nil when Redis is
// not configured.
type App struct {
	Config    *config.Config
	Mongo     *mongo.Client
	Gateway   *store.MongoGateway
	Pools     *pool.Manager
	Matcher   *matcher.Matcher
	Resolver  trigger.Resolver
	Redis     *redis.Client
	Source    *trigger.RedisSource
	Publisher *trigger.Publisher
}

// NewAdapter picks the feed adapter for cfg.
func NewAdapter(cfg config.FeedConfig) (feed.Adapter, error) {
	switch cfg.Provider {
	case "newsapi":
		return feed.NewNewsAPIClient(cfg.BaseURL, cfg.APIKey, cfg.Country, cfg.RPS), nil
	case "rss":
		return feed.NewRSSAdapter(cfg.RSSFeeds), nil
	}
	return nil, fmt.Errorf("unknown feed provider %q", cfg.Provider)
}

// Build connects to MongoDB (with retry), makes sure the pool document exists
// and wires every component. Redis and MinIO are optional.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	client, err := database.ConnectWithRetry(ctx, connectAttempts, connectBackoff, func(ctx context.Context) (*mongo.Client, error) {
		return database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	})
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	a.Mongo = client

	a.Gateway = store.NewMongoGateway(client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))
	if err := a.Gateway.EnsurePool(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}

	adapter, err := NewAdapter(cfg.Feed)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}
	a.Pools = pool.NewManager(a.Gateway, adapter, pool.NewCache(), cfg.Feed.Categories, cfg.Refresh.MaxGlobalStories)

	if cfg.MinIO.Enabled() {
		st, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			// archiving is optional
			logger.Warnf("MinIO unavailable, pool snapshots disabled: %v", err)
		} else {
			a.Pools.SetArchiver(storage.NewSnapshotArchiver(st))
		}
	}

	policy, err := matcher.PolicyByName(cfg.Refresh.TruncatePolicy)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}
	a.Matcher = matcher.New(a.Gateway, cfg.Refresh.MaxFilterStories, policy)

	if a.Resolver, err = trigger.ResolverByName(cfg.Refresh.Strategy, a.Gateway); err != nil {
		a.Close(context.Background())
		return nil, err
	}

	if addr := cfg.Redis.Addr(); addr != "" {
		rc := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.Warnf("Redis ping failed (%s): %v; on-demand refreshes disabled", addr, err)
			_ = rc.Close()
		} else {
			a.Redis = rc
			a.Source = trigger.NewRedisSource(rc, cfg.Redis.Channel)
			a.Publisher = trigger.NewPublisher(rc, cfg.Redis.Channel)
			logger.Infof("listening for refresh triggers on %s", cfg.Redis.Channel)
		}
	}
	return a, nil
}

// Close releases the database connections.
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warnf("close redis: %v", err)
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			logger.Warnf("disconnect mongo: %v", err)
		}
	}
}
