package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Plex      PlexConfig      `toml:"plex"`
	Pairing   PairingConfig   `toml:"pairing"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
}

// PlexConfig contains plex.tv provider settings and media server client limits.
type PlexConfig struct {
	Product           string  `toml:"product"`
	Version           string  `toml:"version"`
	ProviderURL       string  `toml:"provider_url"`
	AuthAppURL        string  `toml:"auth_app_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// PairingConfig contains PIN polling cadence and the overall pairing deadline.
type PairingConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	TimeoutSeconds      int `toml:"timeout_seconds"`
}

// DashboardConfig contains dashboard polling intervals and chrome behavior.
type DashboardConfig struct {
	ProxyURL                string `toml:"proxy_url"`
	SessionsIntervalSeconds int    `toml:"sessions_interval_seconds"`
	StatsIntervalSeconds    int    `toml:"stats_interval_seconds"`
	RetryAttempts           int    `toml:"retry_attempts"`
	RetryDelaySeconds       int    `toml:"retry_delay_seconds"`
	ChromeHideSeconds       int    `toml:"chrome_hide_seconds"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Timeout returns the per-request timeout for media server calls.
func (p PlexConfig) Timeout() time.Duration {
	return seconds(p.TimeoutSeconds, 10)
}

// PollInterval returns the PIN status polling interval.
func (p PairingConfig) PollInterval() time.Duration {
	return seconds(p.PollIntervalSeconds, 2)
}

// Timeout returns the wall-clock limit for a pairing attempt.
func (p PairingConfig) Timeout() time.Duration {
	return seconds(p.TimeoutSeconds, 300)
}

// SessionsInterval returns the short polling interval (sessions and resources).
func (d DashboardConfig) SessionsInterval() time.Duration {
	return seconds(d.SessionsIntervalSeconds, 30)
}

// StatsInterval returns the long polling interval (library stats).
func (d DashboardConfig) StatsInterval() time.Duration {
	return seconds(d.StatsIntervalSeconds, 300)
}

// RetryDelay returns the fixed delay between resource poll retries.
func (d DashboardConfig) RetryDelay() time.Duration {
	return seconds(d.RetryDelaySeconds, 5)
}

// Retries returns the resource poll attempt cap.
func (d DashboardConfig) Retries() int {
	if d.RetryAttempts <= 0 {
		return 3
	}
	return d.RetryAttempts
}

// ChromeHideAfter returns how long the header stays visible without input.
func (d DashboardConfig) ChromeHideAfter() time.Duration {
	return seconds(d.ChromeHideSeconds, 3)
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadConfigOrDefault loads the config at path when it exists and falls back to defaults otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}
