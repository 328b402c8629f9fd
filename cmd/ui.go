package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/internal/ledger"
	"github.com/the1andoni/repowatch/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the terminal dashboard",
	Long:  `Opens the interactive terminal UI for browsing the notification ledger and the watched repository list.`,
	RunE:  runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Each refresh reopens the store, so a concurrently running watcher's
	// writes show up without sharing a handle.
	load := func() (ledger.Snapshot, error) {
		return loadLedgerSnapshot(context.Background(), cfg)
	}

	app := tui.NewApp(cfg, load)
	return app.Run()
}
