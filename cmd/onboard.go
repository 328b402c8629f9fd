package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/the1andoni/repowatch/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Interactive setup wizard for repowatch",
	Long: `Walks you through configuring repowatch:
  - Git provider credentials (GitHub or GitLab)
  - Repositories to watch
  - Polling interval and draft handling
  - Notification channels (Discord, Slack, Telegram, webhook)`,
	RunE: runOnboard,
}

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#14B8A6")).
	MarginBottom(1)

var successStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#10B981"))

var warnStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#F59E0B"))

var dimStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#6B7280"))

func runOnboard(cmd *cobra.Command, args []string) error {
	fmt.Println()
	fmt.Println(headerStyle.Render("  repowatch — change request watcher"))
	fmt.Println(dimStyle.Render("  Announces new pull requests and issues, with quality and security checks.\n"))

	// Load existing config or start fresh.
	cfg, err := config.Load(cfgFile)
	if err != nil {
		cfg = &config.Config{}
	}

	if err := config.EnsureDir(); err != nil {
		return fmt.Errorf("creating repowatch directories: %w", err)
	}

	// --- Step 1: Git provider ---
	fmt.Println(headerStyle.Render("  Step 1/4 · Git provider"))

	providerChoice := cfg.Monitor.Provider
	if providerChoice == "" {
		providerChoice = "github"
	}
	token := cfg.Git.GitHub.Token
	if providerChoice == "gitlab" {
		token = cfg.Git.GitLab.Token
	}
	defaultOwner := cfg.Git.GitHub.DefaultOwner

	providerForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Hosting platform").
				Options(
					huh.NewOption("GitHub", "github"),
					huh.NewOption("GitLab", "gitlab"),
				).
				Value(&providerChoice),
			huh.NewInput().
				Title("Access token").
				Description("Needs read access to the repositories and permission to comment.").
				EchoMode(huh.EchoModePassword).
				Value(&token),
			huh.NewInput().
				Title("Default owner (optional)").
				Description("Prepended to bare repository names, e.g. 'repo add myrepo'.").
				Value(&defaultOwner),
		),
	)
	if err := providerForm.Run(); err != nil {
		return err
	}

	cfg.Monitor.Provider = providerChoice
	switch providerChoice {
	case "gitlab":
		cfg.Git.GitLab.Token = token
	default:
		cfg.Git.GitHub.Token = token
	}
	cfg.Git.GitHub.DefaultOwner = strings.TrimSpace(defaultOwner)

	// --- Step 2: Repositories ---
	fmt.Println(headerStyle.Render("  Step 2/4 · Repositories"))

	repoList := strings.Join(cfg.Monitor.Repositories, ", ")
	repoForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Repositories to watch").
				Description("Comma-separated owner/repo slugs, e.g. the1andoni/StatusBot, acme/api.").
				Placeholder("owner/repo, owner/other").
				Value(&repoList),
		),
	)
	if err := repoForm.Run(); err != nil {
		return err
	}
	cfg.Monitor.Repositories = nil
	for _, slug := range strings.Split(repoList, ",") {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		cfg.Monitor.Repositories = append(cfg.Monitor.Repositories, qualifySlug(cfg, slug))
	}

	// --- Step 3: Behaviour ---
	fmt.Println(headerStyle.Render("  Step 3/4 · Behaviour"))

	interval := cfg.Monitor.Interval
	if interval <= 0 {
		interval = config.DefaultInterval
	}
	intervalChoice := interval.String()
	skipDrafts := cfg.Monitor.SkipDrafts
	commentOnFindings := cfg.Monitor.CommentOnFindings

	behaviourForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Polling interval").
				Options(
					huh.NewOption("1 minute", "1m0s"),
					huh.NewOption("5 minutes (default)", "5m0s"),
					huh.NewOption("15 minutes", "15m0s"),
					huh.NewOption("1 hour", "1h0m0s"),
				).
				Value(&intervalChoice),
			huh.NewConfirm().
				Title("Skip draft pull requests?").
				Value(&skipDrafts),
			huh.NewConfirm().
				Title("Comment findings back onto pull requests?").
				Value(&commentOnFindings),
		),
	)
	if err := behaviourForm.Run(); err != nil {
		return err
	}
	if d, err := time.ParseDuration(intervalChoice); err == nil {
		cfg.Monitor.Interval = d
	}
	cfg.Monitor.SkipDrafts = skipDrafts
	cfg.Monitor.CommentOnFindings = commentOnFindings

	// --- Step 4: Notification channels ---
	fmt.Println(headerStyle.Render("  Step 4/4 · Notification channels"))
	fmt.Println(dimStyle.Render("  Leave a field blank to skip that channel.\n"))

	discordURL := cfg.Notify.Discord.WebhookURL
	slackURL := cfg.Notify.Slack.WebhookURL
	telegramToken := cfg.Notify.Telegram.BotToken
	telegramChat := cfg.Notify.Telegram.ChatID

	notifyForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Discord webhook URL").
				Placeholder("https://discord.com/api/webhooks/...  (optional)").
				Value(&discordURL),
			huh.NewInput().
				Title("Slack incoming webhook URL").
				Placeholder("https://hooks.slack.com/services/...  (optional)").
				Value(&slackURL),
			huh.NewInput().
				Title("Telegram bot token").
				Placeholder("123456:ABC-...  (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&telegramToken),
			huh.NewInput().
				Title("Telegram chat ID").
				Placeholder("-1001234567890  (optional)").
				Value(&telegramChat),
		),
	)
	if err := notifyForm.Run(); err != nil {
		return err
	}
	cfg.Notify.Discord.WebhookURL = strings.TrimSpace(discordURL)
	cfg.Notify.Slack.WebhookURL = strings.TrimSpace(slackURL)
	cfg.Notify.Telegram.BotToken = strings.TrimSpace(telegramToken)
	cfg.Notify.Telegram.ChatID = strings.TrimSpace(telegramChat)

	cfgPath, err := config.ConfigPath(cfgFile)
	if err != nil {
		return err
	}
	if err := config.Save(cfg, cfgPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("  Configuration saved to " + cfgPath))
	if err := cfg.Validate(); err != nil {
		fmt.Println(warnStyle.Render("  Note: " + err.Error()))
	} else {
		fmt.Println(dimStyle.Render("  Run 'repowatch doctor' to verify, then 'repowatch watch' to start."))
	}
	fmt.Println()
	return nil
}
