package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./favtrack.db" {
			t.Errorf("expected database path ./favtrack.db, got %s", config.Database.Path)
		}

		if config.Player.Mode != "hybrid" {
			t.Errorf("expected player mode hybrid, got %s", config.Player.Mode)
		}

		if config.Engine.DebounceMS != 300 {
			t.Errorf("expected debounce 300ms, got %d", config.Engine.DebounceMS)
		}

		if config.Catalog.ClientID != "your_catalog_client_id" {
			t.Errorf("expected catalog client_id placeholder, got %s", config.Catalog.ClientID)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[player]
mode = "poll"
poll_interval_seconds = 1.5
poll_rate_limit = 4.0

[catalog]
base_url = "https://catalog.test/v1"
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"
storefront = "gb"

[engine]
debounce_ms = 150
cache_ttl_seconds = 60
search_limit = 3
event_buffer = 8
history_enabled = false

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10
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

		if config.Player.Mode != "poll" {
			t.Errorf("expected player mode poll, got %s", config.Player.Mode)
		}

		if config.Catalog.ClientID != "test_client_id" {
			t.Errorf("expected catalog client_id test_client_id, got %s", config.Catalog.ClientID)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		config.Player.Mode = "telepathy"

		if err := config.Validate(); err == nil {
			t.Error("expected invalid mode to fail validation")
		}
	})
}
