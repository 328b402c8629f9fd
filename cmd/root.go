package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "repowatch",
	Short: "Watch repositories for new pull requests and issues",
	Long: `repowatch polls your repositories for open pull requests and issues,
inspects changed files with quality and security tools, and announces
each meaningful change exactly once to your chat channels.

Get started:
  repowatch onboard   Interactive setup wizard
  repowatch doctor    Verify tools and credentials
  repowatch watch     Run the watcher loop
  repowatch ledger    Show what has already been announced
  repowatch ui        Launch the terminal dashboard`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.repowatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")

	rootCmd.Version = Version
	rootCmd.AddCommand(
		onboardCmd,
		watchCmd,
		repoCmd,
		ledgerCmd,
		configCmd,
		doctorCmd,
		uiCmd,
	)
}

func initLogging() {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}
}
