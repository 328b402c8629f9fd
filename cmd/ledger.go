package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/internal/ledger"
)

var ledgerJSON bool

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show what has already been announced",
	Long: `Prints the notification ledger: every pull request and issue that has
been announced, with the time of the last notification. The ledger is
what keeps repeat announcements from going out.`,
	RunE: runLedger,
}

func init() {
	ledgerCmd.Flags().BoolVar(&ledgerJSON, "json", false,
		"Print the raw ledger as JSON")
}

func runLedger(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	snap, err := loadLedgerSnapshot(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if ledgerJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	printRecords("Pull requests", snap.Pulls)
	fmt.Println()
	printRecords("Issues", snap.Issues)
	return nil
}

// loadLedgerSnapshot opens the configured store read-only and returns a
// point-in-time copy. Shared with the terminal dashboard.
func loadLedgerSnapshot(ctx context.Context, cfg *config.Config) (ledger.Snapshot, error) {
	store, err := ledger.NewStore(cfg.Ledger)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("opening ledger store: %w", err)
	}
	defer store.Close()

	led, err := ledger.Open(ctx, store)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("loading ledger: %w", err)
	}
	return led.Snapshot(), nil
}

func printRecords(title string, records map[int64]ledger.Record) {
	fmt.Printf("%s (%d):\n", title, len(records))
	if len(records) == 0 {
		fmt.Println("  (none)")
		return
	}
	ids := make([]int64, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		rec := records[id]
		when := "unknown"
		if !rec.NotifiedAt.IsZero() {
			when = rec.NotifiedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("  #%-8d %-50.50s %-16.16s %s\n", id, rec.Title, rec.Author, when)
	}
}
