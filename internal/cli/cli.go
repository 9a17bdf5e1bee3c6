// Package cli implements newsctl, the operator tool for the news worker.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/matcher"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/pool"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/store"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/worker"
)

var version = "dev"

// Publisher sends a refresh request to running workers.
type Publisher interface {
	PublishRefresh(ctx context.Context, sub *models.Subscriber) (int64, error)
}

// Env is what the commands operate on. Publisher may be nil when no broker
// is configured.
type Env struct {
	Gateway   store.Gateway
	Pools     *pool.Manager
	Matcher   *matcher.Matcher
	Publisher Publisher
	Close     func()
}

// Opener builds an Env on demand so that help and version never touch a database.
type Opener func(ctx context.Context) (*Env, error)

// NewRootCommand returns the newsctl command tree.
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "newsctl",
		Short:         "Operate the news ingestion worker",
		Long:          "newsctl runs population passes and subscriber refreshes by hand, or asks running workers to do so.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newPopulateCommand(open),
		newRefreshCommand(open),
		newTriggerCommand(open),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "newsctl %s\n", version)
			},
		},
	)
	return root
}

func withEnv(open Opener, fn func(cmd *cobra.Command, env *Env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := open(cmd.Context())
		if err != nil {
			return err
		}
		if env.Close != nil {
			defer env.Close()
		}
		return fn(cmd, env, args)
	}
}

func newPopulateCommand(open Opener) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Run one population pass now",
		Long: `Fetch every configured category, merge the new stories into the global pool and persist it.

With --refresh the pass continues into a refresh of every subscriber, exactly as a scheduled pass does.`,
		Args: cobra.NoArgs,
		RunE: withEnv(open, func(cmd *cobra.Command, env *Env, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if refresh {
				w := worker.New(worker.Options{Pools: env.Pools, Matcher: env.Matcher, Gateway: env.Gateway})
				if err := w.ScheduledPass(ctx); err != nil {
					return err
				}
				fmt.Fprintf(out, "Pool holds %d stories; subscribers refreshed.\n", env.Pools.Cache().Load().Len())
				return nil
			}
			res, err := env.Pools.Populate(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Fetched %d article(s), discarded %d, added %d. Pool holds %d stories.\n",
				res.Fetched, res.Discarded, res.Added, res.Size)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refresh every subscriber after populating")
	return cmd
}

func newRefreshCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <subscriber-id>",
		Short: "Match one subscriber's filters against the stored pool",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(open, func(cmd *cobra.Command, env *Env, args []string) error {
			ctx := cmd.Context()
			sub, err := loadSubscriber(ctx, env.Gateway, args[0])
			if err != nil {
				return err
			}
			p, err := env.Pools.EnsureLoaded(ctx)
			if err != nil {
				return err
			}
			_, added, err := env.Matcher.Refresh(ctx, sub, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d story(ies) across %d filter(s) for %s.\n", added, len(sub.Filters), sub.ID)
			return nil
		}),
	}
}

func newTriggerCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger <subscriber-id>",
		Short: "Ask running workers to refresh one subscriber",
		Long:  "Publish a REFRESH_STORIES message carrying the subscriber's current record to the trigger channel.",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(open, func(cmd *cobra.Command, env *Env, args []string) error {
			if env.Publisher == nil {
				return errors.New("no trigger channel configured (set REDIS_HOST)")
			}
			ctx := cmd.Context()
			sub, err := loadSubscriber(ctx, env.Gateway, args[0])
			if err != nil {
				return err
			}
			n, err := env.Publisher.PublishRefresh(ctx, sub)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Published, but no worker is listening.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published refresh for %s to %d worker(s).\n", sub.ID, n)
			return nil
		}),
	}
}

func loadSubscriber(ctx context.Context, gw store.Gateway, id string) (*models.Subscriber, error) {
	sub, err := gw.LoadSubscriber(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("subscriber %s not found", id)
	}
	return sub, err
}
