package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/internal/repository"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage the watched repository list",
	Long:  `Add, remove, and list repositories the watcher polls.`,
}

// qualifySlug prepends the configured default owner to bare repo names,
// so "myrepo" becomes "the1andoni/myrepo".
func qualifySlug(cfg *config.Config, target string) string {
	if strings.Contains(target, "/") {
		return target
	}
	if cfg.Git.GitHub.DefaultOwner != "" {
		return cfg.Git.GitHub.DefaultOwner + "/" + target
	}
	return target
}

var repoAddCmd = &cobra.Command{
	Use:   "add <owner/repo>",
	Short: "Add a repository to the watch list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		target := qualifySlug(cfg, args[0])
		for _, r := range cfg.Monitor.Repositories {
			if r == target {
				fmt.Printf("%s is already being watched\n", target)
				return nil
			}
		}
		cfg.Monitor.Repositories = append(cfg.Monitor.Repositories, target)
		cfgPath, _ := config.ConfigPath(cfgFile)
		if err := config.Save(cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("Now watching %s\n", target)
		return nil
	},
}

var repoRemoveCmd = &cobra.Command{
	Use:   "remove <owner/repo>",
	Short: "Remove a repository from the watch list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		target := qualifySlug(cfg, args[0])
		newList := make([]string, 0, len(cfg.Monitor.Repositories))
		found := false
		for _, r := range cfg.Monitor.Repositories {
			if r == target {
				found = true
				continue
			}
			newList = append(newList, r)
		}
		if !found {
			fmt.Printf("%s is not being watched\n", target)
			return nil
		}
		cfg.Monitor.Repositories = newList
		cfgPath, _ := config.ConfigPath(cfgFile)
		if err := config.Save(cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("Stopped watching %s\n", target)
		return nil
	},
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all watched repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if len(cfg.Monitor.Repositories) == 0 {
			fmt.Println("No repositories watched. Add one with: repowatch repo add <owner/repo>")
			return nil
		}
		fmt.Println("Watched repositories:")
		for _, r := range cfg.Monitor.Repositories {
			fmt.Printf("  - %s\n", r)
		}
		return nil
	},
}

var repoShowCmd = &cobra.Command{
	Use:   "show <owner/repo>",
	Short: "Show live details for a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		provider, err := repository.New(cfg)
		if err != nil {
			return err
		}
		owner, name, err := repository.SplitSlug(qualifySlug(cfg, args[0]))
		if err != nil {
			return err
		}
		repo, err := provider.GetRepo(cmd.Context(), owner, name)
		if err != nil {
			return fmt.Errorf("fetching %s/%s: %w", owner, name, err)
		}
		fmt.Printf("%s\n", repo.FullName)
		if repo.Description != "" {
			fmt.Printf("  %s\n", repo.Description)
		}
		fmt.Printf("  URL:         %s\n", repo.HTMLURL)
		fmt.Printf("  Stars:       %d\n", repo.Stars)
		fmt.Printf("  Forks:       %d\n", repo.Forks)
		fmt.Printf("  Open issues: %d\n", repo.OpenIssues)
		return nil
	},
}

func init() {
	repoCmd.AddCommand(repoAddCmd, repoRemoveCmd, repoListCmd, repoShowCmd)
}
