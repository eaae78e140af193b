package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./mediastats.db" {
			t.Errorf("expected database path ./mediastats.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.Plex.ProviderURL != "https://plex.tv/api/v2" {
			t.Errorf("expected provider url https://plex.tv/api/v2, got %s", config.Plex.ProviderURL)
		}
		if config.Pairing.PollInterval() != 2*time.Second {
			t.Errorf("expected poll interval 2s, got %v", config.Pairing.PollInterval())
		}
		if config.Pairing.Timeout() != 5*time.Minute {
			t.Errorf("expected pairing timeout 5m, got %v", config.Pairing.Timeout())
		}
		if config.Dashboard.Retries() != 3 {
			t.Errorf("expected 3 retry attempts, got %d", config.Dashboard.Retries())
		}
		if config.Dashboard.RetryDelay() != 5*time.Second {
			t.Errorf("expected retry delay 5s, got %v", config.Dashboard.RetryDelay())
		}
	})

	t.Run("Zero Values Fall Back To Defaults", func(t *testing.T) {
		var config Config

		if got := config.Dashboard.SessionsInterval(); got != 30*time.Second {
			t.Errorf("expected sessions interval 30s, got %v", got)
		}
		if got := config.Dashboard.StatsInterval(); got != 5*time.Minute {
			t.Errorf("expected stats interval 5m, got %v", got)
		}
		if got := config.Dashboard.ChromeHideAfter(); got != 3*time.Second {
			t.Errorf("expected chrome hide 3s, got %v", got)
		}
		if got := config.Plex.Timeout(); got != 10*time.Second {
			t.Errorf("expected plex timeout 10s, got %v", got)
		}
	})

	t.Run("Server Addr", func(t *testing.T) {
		s := ServerConfig{Host: "127.0.0.1", Port: 8080}
		if s.Addr() != "127.0.0.1:8080" {
			t.Errorf("expected 127.0.0.1:8080, got %s", s.Addr())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[pairing]
poll_interval_seconds = 1

[dashboard]
proxy_url = "http://localhost:9090"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.Pairing.PollInterval() != time.Second {
			t.Errorf("expected poll interval 1s, got %v", config.Pairing.PollInterval())
		}
		if config.Pairing.Timeout() != 5*time.Minute {
			t.Errorf("expected default pairing timeout to survive partial file, got %v", config.Pairing.Timeout())
		}
		if config.Dashboard.ProxyURL != "http://localhost:9090" {
			t.Errorf("expected proxy url http://localhost:9090, got %s", config.Dashboard.ProxyURL)
		}
		if config.Plex.Product != "Media Stats" {
			t.Errorf("expected default product to survive partial file, got %s", config.Plex.Product)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nport = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfigOrDefault Missing File", func(t *testing.T) {
		config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected default port, got %d", config.Server.Port)
		}
	})
}
