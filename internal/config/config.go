package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

const (
	DefaultConfigDir  = ".repowatch"
	DefaultConfigFile = "config.yaml"
	DefaultDataDir    = ".repowatch/data"
	DefaultDBFile     = ".repowatch/repowatch.db"

	DefaultInterval    = 5 * time.Minute
	DefaultGatewayPort = 6180
)

// Load reads the config file and returns a populated Config. The
// configPath flag may override the default location (~/.repowatch).
// A missing file is not an error; env vars and defaults still apply.
func Load(configPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("REPOWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
		v.AddConfigPath(".")
	}

	setDefaults(v, home)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	expandPaths(&cfg, home)
	return &cfg, nil
}

// Save writes the config as YAML. Durations are rendered as strings
// ("5m0s") so the file stays hand-editable.
func Save(cfg *Config, configPath string) error {
	if configPath == "" {
		p, err := ConfigPath("")
		if err != nil {
			return err
		}
		configPath = p
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Round-trip through JSON so the on-disk keys match the mapstructure
	// keys viper reads back.
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}
	if mon, ok := doc["monitor"].(map[string]any); ok {
		mon["interval"] = cfg.Monitor.Interval.String()
		mon["realert_cooldown"] = cfg.Monitor.RealertCooldown.String()
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}
	return os.WriteFile(configPath, out, 0o600)
}

// Validate fails fast on configuration the watcher cannot run without.
// Called at startup; a validation error aborts the process.
func (c *Config) Validate() error {
	switch c.Monitor.Provider {
	case "", "github":
		if c.Git.GitHub.Token == "" {
			return fmt.Errorf("git.github.token is required (run 'repowatch onboard')")
		}
	case "gitlab":
		if c.Git.GitLab.Token == "" {
			return fmt.Errorf("git.gitlab.token is required (run 'repowatch onboard')")
		}
	default:
		return fmt.Errorf("unsupported monitor.provider %q (supported: github, gitlab)", c.Monitor.Provider)
	}

	if len(c.Monitor.Repositories) == 0 {
		return fmt.Errorf("monitor.repositories must list at least one owner/repo")
	}
	for _, slug := range c.Monitor.Repositories {
		if strings.Count(slug, "/") != 1 || strings.HasPrefix(slug, "/") || strings.HasSuffix(slug, "/") {
			return fmt.Errorf("invalid repository slug %q (want owner/repo)", slug)
		}
	}

	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %s", c.Monitor.Interval)
	}
	if c.Monitor.RealertCooldown < 0 {
		return fmt.Errorf("monitor.realert_cooldown must not be negative")
	}

	switch c.Ledger.Driver {
	case "", "json", "sqlite":
	case "mysql":
		if c.Ledger.DSN == "" {
			return fmt.Errorf("ledger.dsn is required when ledger.driver is mysql")
		}
	default:
		return fmt.Errorf("unsupported ledger.driver %q (supported: json, sqlite, mysql)", c.Ledger.Driver)
	}

	return nil
}

// ConfigPath returns the effective config file path.
func ConfigPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// EnsureDir creates ~/.repowatch and its data directory if absent.
func EnsureDir() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dirs := []string{
		filepath.Join(home, DefaultConfigDir),
		filepath.Join(home, DefaultDataDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}
	return nil
}

// setDefaults populates viper with sensible out-of-the-box values.
func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("monitor.provider", "github")
	v.SetDefault("monitor.interval", DefaultInterval)
	v.SetDefault("monitor.realert_cooldown", time.Duration(0))
	v.SetDefault("monitor.skip_drafts", true)
	v.SetDefault("monitor.comment_on_findings", true)

	v.SetDefault("ledger.driver", "json")
	v.SetDefault("ledger.dir", filepath.Join(home, DefaultDataDir))
	v.SetDefault("ledger.path", filepath.Join(home, DefaultDBFile))

	v.SetDefault("gateway.port", DefaultGatewayPort)
}

// expandPaths resolves ~ and relative paths against the home directory.
func expandPaths(cfg *Config, home string) {
	cfg.Ledger.Dir = expandHome(cfg.Ledger.Dir, home)
	cfg.Ledger.Path = expandHome(cfg.Ledger.Path, home)
	cfg.Inspect.Profile = expandHome(cfg.Inspect.Profile, home)
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
