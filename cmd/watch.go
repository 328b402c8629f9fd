package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/internal/gateway"
	"github.com/the1andoni/repowatch/internal/inspect"
	"github.com/the1andoni/repowatch/internal/ledger"
	"github.com/the1andoni/repowatch/internal/monitor"
	"github.com/the1andoni/repowatch/internal/notify"
	"github.com/the1andoni/repowatch/internal/repository"
)

var watchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the watcher loop",
	Long: `Starts the repowatch loop. On every pass the watcher will:
  1. List open pull requests and issues for each configured repository
  2. Check out and inspect each pull request's changed files
  3. Announce new items and unresolved findings to your channels
  4. Record every announcement in the ledger so nothing repeats

The loop runs until interrupted. A localhost status API is served
alongside it (see 'gateway' in the config).

Examples:
  repowatch watch             # run until Ctrl+C
  repowatch watch --once      # single pass, then exit`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false,
		"Run a single reconciliation pass and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on SIGINT/SIGTERM.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("\nShutting down watcher gracefully...")
		cancel()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := ledger.NewStore(cfg.Ledger)
	if err != nil {
		return fmt.Errorf("opening ledger store: %w", err)
	}
	led, err := ledger.Open(ctx, store)
	if err != nil {
		store.Close()
		return fmt.Errorf("loading ledger: %w", err)
	}
	defer led.Close()

	provider, err := repository.New(cfg)
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}

	profile := inspect.DefaultProfile()
	if cfg.Inspect.Profile != "" {
		profile, err = inspect.LoadProfile(cfg.Inspect.Profile)
		if err != nil {
			return fmt.Errorf("loading inspect profile: %w", err)
		}
	}
	runner := inspect.NewRunner(profile)

	dispatcher := notify.NewDispatcher(cfg.Notify,
		notify.NewComment(provider, cfg.Monitor.CommentOnFindings))
	if !dispatcher.IsAnyConfigured() {
		slog.Warn("no notification channel configured, announcements will only be logged")
	}

	mon := monitor.New(cfg.Monitor, provider, led, dispatcher, runner, monitor.Options{
		SuggestFormat: cfg.Inspect.SuggestFormat,
		OnFatal: func(err error) {
			slog.Error("authentication failure, stopping", "error", err)
			cancel()
		},
	})

	slog.Info("Starting watcher",
		"provider", provider.Name(),
		"repositories", cfg.Monitor.Repositories,
		"interval", cfg.Monitor.Interval,
	)

	if watchOnce {
		mon.RunOnce(ctx)
		return nil
	}

	fmt.Printf("repowatch starting (provider: %s, repositories: %d)\n",
		provider.Name(), len(cfg.Monitor.Repositories))
	fmt.Println("Press Ctrl+C to stop gracefully.")
	fmt.Println()

	gw := gateway.New(cfg.Gateway, mon, provider, Version)
	gwDone := make(chan error, 1)
	go func() { gwDone <- gw.Start(ctx) }()

	if err := mon.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watcher error: %w", err)
	}

	if err := <-gwDone; err != nil && ctx.Err() == nil {
		return fmt.Errorf("gateway error: %w", err)
	}

	fmt.Println("Watcher stopped.")
	return nil
}
