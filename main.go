package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/newswatcher/newswatcher/backend/news-worker/handlers"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/app"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/config"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/scheduler"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/worker"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/logger"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/metrics"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/middleware"
)

func main() {
	// initialize logging (LOG_LEVEL: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: provider=%s categories=%v redis=%v minio=%v",
		cfg.Feed.Provider, cfg.Feed.Categories, cfg.Redis.Addr() != "", cfg.MinIO.Enabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		logger.Fatalf("startup failed: %v", err)
	}
	defer a.Close(context.Background())

	sched, err := scheduler.New(cfg.Refresh.CronSpec())
	if err != nil {
		logger.Fatalf("invalid population schedule: %v", err)
	}

	opts := worker.Options{
		Pools:           a.Pools,
		Matcher:         a.Matcher,
		Gateway:         a.Gateway,
		Ticks:           sched.Ticks(),
		Resolver:        a.Resolver,
		PopulateOnStart: cfg.Refresh.OnStart,
	}
	if a.Source != nil {
		opts.Triggers = a.Source
	}
	w := worker.New(opts)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	srv := newOpsServer(cfg, a, w)
	go func() {
		logger.Infof("ops endpoints listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("ops server failed: %v", err)
		}
	}()

	sched.Start()
	logger.Infof("population schedule %q, next pass at %s", cfg.Refresh.CronSpec(), sched.Next().Format(time.RFC3339))

	if err := w.Run(ctx); err != nil {
		logger.Errorf("worker stopped: %v", err)
	}
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("ops server shutdown: %v", err)
	}
	logger.Infof("news worker stopped")
}

func newOpsServer(cfg *config.Config, a *app.App, w *worker.Worker) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RateLimitMiddleware(cfg.Health.RPS, cfg.Health.Burst))

	ops := handlers.NewOpsHandler(w.State, prometheus.DefaultGatherer)
	ops.AddCheck("mongo", func(ctx context.Context) error {
		return a.Mongo.Ping(ctx, readpref.Primary())
	})
	if a.Redis != nil {
		ops.AddCheck("redis", func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		})
	}
	ops.Register(r)
	handlers.RegisterSwagger(r)

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Health.Host, cfg.Health.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
