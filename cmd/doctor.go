package cmd

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/internal/inspect"
	"github.com/the1andoni/repowatch/internal/ledger"
	"github.com/the1andoni/repowatch/internal/repository"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify tools, credentials, and system health",
	Long: `Checks that the configured inspection tools are installed, the git
provider credentials work, and the ledger store can be opened.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	allOK := true

	fmt.Println("=== repowatch doctor ===")
	fmt.Println()

	// Check configuration
	fmt.Print("Configuration ............ ")
	if err := cfg.Validate(); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Println("OK")
	}

	// Check ledger store
	fmt.Print("Ledger store ............. ")
	store, err := ledger.NewStore(cfg.Ledger)
	if err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		led, err := ledger.Open(ctx, store)
		if err != nil {
			fmt.Printf("FAIL (%s)\n", err)
			allOK = false
		} else {
			driver := cfg.Ledger.Driver
			if driver == "" {
				driver = "json"
			}
			snap := led.Snapshot()
			fmt.Printf("OK (%s: %d pull requests, %d issues)\n",
				driver, len(snap.Pulls), len(snap.Issues))
		}
		store.Close()
	}

	// Check provider credentials with a live lookup.
	fmt.Print("Provider credentials ..... ")
	if err := checkProvider(ctx, cfg); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Println("OK")
	}

	// Check inspection tools
	fmt.Println()
	fmt.Println("Inspection tools:")
	profile := inspect.DefaultProfile()
	if cfg.Inspect.Profile != "" {
		profile, err = inspect.LoadProfile(cfg.Inspect.Profile)
		if err != nil {
			fmt.Printf("  FAIL loading profile %s: %s\n", cfg.Inspect.Profile, err)
			allOK = false
			profile = inspect.Profile{}
		}
	}
	tools := profile.Tools
	if profile.Formatter != nil {
		tools = append(tools, *profile.Formatter)
	}
	for _, t := range tools {
		fmt.Printf("  %-14s ... ", t.Name)
		if p, err := exec.LookPath(t.Command); err != nil {
			fmt.Println("MISSING (inspections using it will report nothing)")
		} else {
			fmt.Printf("OK (%s)\n", p)
		}
	}

	fmt.Println()
	if allOK {
		fmt.Println("All checks passed — repowatch is ready!")
	} else {
		fmt.Println("Some checks failed — run 'repowatch onboard' to fix.")
	}

	return nil
}

// checkProvider fetches the first watched repository to exercise the
// token end to end.
func checkProvider(ctx context.Context, cfg *config.Config) error {
	provider, err := repository.New(cfg)
	if err != nil {
		return err
	}
	if len(cfg.Monitor.Repositories) == 0 {
		return fmt.Errorf("no repositories configured")
	}
	owner, name, err := repository.SplitSlug(cfg.Monitor.Repositories[0])
	if err != nil {
		return err
	}
	if _, err := provider.GetRepo(ctx, owner, name); err != nil {
		return err
	}
	return nil
}
