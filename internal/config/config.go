// ABOUTME: Configuration loading and parsing for minidg
// ABOUTME: Layers YAML files, .env files, and environment overrides with validation

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete minidg configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Discord   DiscordConfig   `yaml:"discord"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

// ServerConfig holds the HTTP listen address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DiscordConfig holds the bot credential and session timing configuration
type DiscordConfig struct {
	Token string `yaml:"token"`

	// ReadyTimeout bounds how long startup waits for the gateway session
	// to report ready before aborting the process.
	ReadyTimeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	ReadyTimeoutRaw string `yaml:"ready_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
	HTTPS     bool   `yaml:"https"`  // Serve TLS with Tailscale-provisioned certs
	Funnel    bool   `yaml:"funnel"` // Enable public Funnel (implies HTTPS)
}

// Default returns a Config populated with the built-in defaults:
// listen on :8000, wait up to 10s for the Discord session, colored
// info-level logs, Tailscale off.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: ":8000",
		},
		Discord: DiscordConfig{
			ReadyTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "color",
		},
		Tailscale: TailscaleConfig{
			Hostname: "minidg",
		},
	}
}

// Load builds the effective configuration. A non-empty path names a YAML
// file that is read on top of the defaults; an empty path means defaults
// plus environment only. Environment variables in the format ${VAR_NAME}
// are expanded inside the file, a .env file is honored if present, and
// DISCORD_TOKEN / API_PORT override whatever the file said.
func Load(path string) (*Config, error) {
	// Matches the original deployment habit of keeping the token in a
	// .env file next to the binary. A missing file is fine.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		// Expand environment variables in the raw YAML content
		expandedData := expandEnvVars(string(data))

		if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	// Parse duration fields
	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnvOverrides applies the environment variables the original
// deployment contract promises: DISCORD_TOKEN for the credential and
// API_PORT for the listen port. Both win over file values.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Discord.Token = token
	}
	if port := os.Getenv("API_PORT"); port != "" {
		cfg.Server.HTTPAddr = ":" + port
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required (set DISCORD_TOKEN)")
	}

	if c.Discord.ReadyTimeout <= 0 {
		return fmt.Errorf("discord.ready_timeout must be positive")
	}

	// The listen address is required unless Tailscale provides the listener
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "text", "json", "color":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json, color", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Discord.ReadyTimeoutRaw != "" {
		cfg.Discord.ReadyTimeout, err = time.ParseDuration(cfg.Discord.ReadyTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing ready_timeout %q: %w", cfg.Discord.ReadyTimeoutRaw, err)
		}
	}

	return nil
}
