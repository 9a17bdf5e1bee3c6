package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/app"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/cli"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/config"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(func(ctx context.Context) (*cli.Env, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		a, err := app.Build(ctx, cfg)
		if err != nil {
			return nil, err
		}
		env := &cli.Env{
			Gateway: a.Gateway,
			Pools:   a.Pools,
			Matcher: a.Matcher,
			Close:   func() { a.Close(context.Background()) },
		}
		if a.Publisher != nil {
			env.Publisher = a.Publisher
		}
		return env, nil
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "newsctl:", err)
		os.Exit(1)
	}
}
