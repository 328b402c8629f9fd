package config

import "time"

// Config is the root configuration structure for repowatch.
// Serialised to ~/.repowatch/config.yaml.
type Config struct {
	Git     GitConfig     `mapstructure:"git"     json:"git"`
	Monitor MonitorConfig `mapstructure:"monitor" json:"monitor"`
	Ledger  LedgerConfig  `mapstructure:"ledger"  json:"ledger"`
	Inspect InspectConfig `mapstructure:"inspect" json:"inspect"`
	Notify  NotifyConfig  `mapstructure:"notify"  json:"notify"`
	Gateway GatewayConfig `mapstructure:"gateway" json:"gateway"`
}

// GitConfig holds credentials for each supported git hosting platform.
type GitConfig struct {
	GitHub GitHubConfig `mapstructure:"github" json:"github"`
	GitLab GitLabConfig `mapstructure:"gitlab" json:"gitlab"`
}

// GitHubConfig holds credentials for a single GitHub instance.
type GitHubConfig struct {
	Token string `mapstructure:"token" json:"token"`
	// Host allows enterprise GitHub (e.g. github.mycompany.com).
	Host string `mapstructure:"host"  json:"host"`
	// DefaultOwner is prepended to bare repo names in the repo command.
	DefaultOwner string `mapstructure:"default_owner" json:"default_owner"`
}

// GitLabConfig holds credentials for a single GitLab instance.
type GitLabConfig struct {
	Token string `mapstructure:"token" json:"token"`
	Host  string `mapstructure:"host"  json:"host"`
}

// MonitorConfig controls the reconciliation streams.
type MonitorConfig struct {
	// Provider selects the hosting platform: "github" (default) or "gitlab".
	Provider string `mapstructure:"provider" json:"provider"`
	// Repositories is the list of "owner/repo" slugs to watch. Repositories
	// are processed in this order on every pass.
	Repositories []string `mapstructure:"repositories" json:"repositories"`
	// Interval between reconciliation passes. Default 5m.
	Interval time.Duration `mapstructure:"interval" json:"interval"`
	// RealertCooldown suppresses repeat findings notifications for a pull
	// request for this long after the last one. Zero keeps the legacy
	// behaviour: re-notify on every pass while findings persist.
	RealertCooldown time.Duration `mapstructure:"realert_cooldown" json:"realert_cooldown"`
	// SkipDrafts excludes draft pull requests from tracking.
	SkipDrafts bool `mapstructure:"skip_drafts" json:"skip_drafts"`
	// CommentOnFindings posts the findings summary back onto the pull
	// request as a comment.
	CommentOnFindings bool `mapstructure:"comment_on_findings" json:"comment_on_findings"`
}

// LedgerConfig controls where sent-notification state is persisted.
type LedgerConfig struct {
	// Driver is "json" (default), "sqlite", or "mysql".
	Driver string `mapstructure:"driver" json:"driver"`
	// Dir is the directory holding the JSON documents (json driver).
	Dir string `mapstructure:"dir" json:"dir"`
	// Path is the SQLite file path (sqlite driver).
	Path string `mapstructure:"path" json:"path"`
	// DSN is the MySQL data source name (mysql driver).
	DSN string `mapstructure:"dsn" json:"dsn"`
}

// InspectConfig controls the per-file quality and security checks.
type InspectConfig struct {
	// Profile is a path to a YAML tool profile. Empty uses the built-in
	// default (flake8 + bandit).
	Profile string `mapstructure:"profile" json:"profile"`
	// SuggestFormat appends a formatter diff to PR comments when set.
	SuggestFormat bool `mapstructure:"suggest_format" json:"suggest_format"`
}

// NotifyConfig enables the outbound notification channels. Only channels
// with credentials set are active.
type NotifyConfig struct {
	Discord  DiscordNotifyConfig  `mapstructure:"discord"  json:"discord"`
	Slack    SlackNotifyConfig    `mapstructure:"slack"    json:"slack"`
	Telegram TelegramNotifyConfig `mapstructure:"telegram" json:"telegram"`
	Webhook  WebhookNotifyConfig  `mapstructure:"webhook"  json:"webhook"`
	// Templates optionally override the rendered message bodies. Supported
	// placeholders: {title}, {author}, {url}, {issues}.
	Templates TemplateConfig `mapstructure:"templates" json:"templates"`
}

// DiscordNotifyConfig configures the Discord webhook channel.
type DiscordNotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url" json:"webhook_url"`
	// Username overrides the webhook's display name.
	Username string `mapstructure:"username" json:"username"`
}

// SlackNotifyConfig configures the Slack incoming-webhook channel.
type SlackNotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url" json:"webhook_url"`
}

// TelegramNotifyConfig configures the Telegram bot channel.
type TelegramNotifyConfig struct {
	BotToken string `mapstructure:"bot_token" json:"bot_token"`
	ChatID   string `mapstructure:"chat_id"   json:"chat_id"`
}

// WebhookNotifyConfig configures the generic HTTP webhook channel.
type WebhookNotifyConfig struct {
	URL    string `mapstructure:"url"    json:"url"`
	Secret string `mapstructure:"secret" json:"secret"`
}

// TemplateConfig holds optional message templates.
type TemplateConfig struct {
	NewPullRequest string `mapstructure:"new_pull_request" json:"new_pull_request"`
	PullFindings   string `mapstructure:"pull_findings"    json:"pull_findings"`
	NewIssue       string `mapstructure:"new_issue"        json:"new_issue"`
}

// GatewayConfig controls the localhost status server.
type GatewayConfig struct {
	// Port is the localhost HTTP port (default: 6180). Zero disables it.
	Port int `mapstructure:"port" json:"port"`
}
