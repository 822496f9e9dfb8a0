package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Player   PlayerConfig   `toml:"player"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Engine   EngineConfig   `toml:"engine"`
	Database DatabaseConfig `toml:"database"`
}

// PlayerConfig controls how the local player is observed.
type PlayerConfig struct {
	// Mode selects the authoritative signal path: "push", "poll", or "hybrid".
	Mode            string  `toml:"mode"`
	PollIntervalSec float64 `toml:"poll_interval_seconds"`
	PollRateLimit   float64 `toml:"poll_rate_limit"`
}

// CatalogConfig contains catalog API credentials and endpoints.
type CatalogConfig struct {
	BaseURL      string `toml:"base_url"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	Storefront   string `toml:"storefront"`

	// Persisted after a successful OAuth login.
	AccessToken  string `toml:"access_token,omitempty"`
	RefreshToken string `toml:"refresh_token,omitempty"`
	TokenExpiry  string `toml:"token_expiry,omitempty"`
}

// Update stores the given OAuth token in the config for persistence.
func (c *CatalogConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: no access token to store", ErrMissingCredentials)
	}
	c.AccessToken = token.AccessToken
	c.RefreshToken = token.RefreshToken
	if !token.Expiry.IsZero() {
		c.TokenExpiry = token.Expiry.Format(time.RFC3339)
	}
	return nil
}

// Token reconstructs the persisted OAuth token, or nil when absent.
func (c *CatalogConfig) Token() *oauth2.Token {
	if c.AccessToken == "" {
		return nil
	}
	token := &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
	}
	if c.TokenExpiry != "" {
		if expiry, err := time.Parse(time.RFC3339, c.TokenExpiry); err == nil {
			token.Expiry = expiry
		}
	}
	return token
}

// EngineConfig contains reconciliation tuning knobs.
type EngineConfig struct {
	DebounceMS    int  `toml:"debounce_ms"`
	CacheTTLSec   int  `toml:"cache_ttl_seconds"`
	SearchLimit   int  `toml:"search_limit"`
	EventBuffer   int  `toml:"event_buffer"`
	HistoryEnable bool `toml:"history_enabled"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
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
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration back to the given path as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Player.Mode {
	case "push", "poll", "hybrid":
	default:
		return fmt.Errorf("%w: player.mode must be push, poll, or hybrid (got %q)", ErrInvalidConfig, c.Player.Mode)
	}

	if c.Player.PollIntervalSec <= 0 {
		return fmt.Errorf("%w: player.poll_interval_seconds must be positive", ErrInvalidConfig)
	}

	if c.Engine.DebounceMS < 0 {
		return fmt.Errorf("%w: engine.debounce_ms must not be negative", ErrInvalidConfig)
	}

	return nil
}
