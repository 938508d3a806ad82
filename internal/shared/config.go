package shared

import (
	"bytes"
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
	Credentials CredentialsConfig `toml:"credentials"`
	Cache       CacheConfig       `toml:"cache"`
	Match       MatchConfig       `toml:"match"`
	Transfer    TransferConfig    `toml:"transfer"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API credentials and, once authorized,
// the tokens persisted from the OAuth2 flow.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token,omitempty"`
	RefreshToken string `toml:"refresh_token,omitempty"`
	TokenExpiry  string `toml:"token_expiry,omitempty"`
}

// Map flattens the credentials into the map form services accept.
func (c SpotifyConfig) Map() map[string]string {
	m := map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"redirect_uri":  c.RedirectURI,
	}
	if c.AccessToken != "" {
		m["access_token"] = c.AccessToken
	}
	if c.RefreshToken != "" {
		m["refresh_token"] = c.RefreshToken
	}
	return m
}

// Update stores the tokens from a completed OAuth2 flow.
func (c *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrAuthFailed)
	}
	c.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		c.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		c.TokenExpiry = token.Expiry.Format(time.RFC3339)
	}
	return nil
}

// YouTubeConfig contains YouTube Music proxy settings.
type YouTubeConfig struct {
	ProxyURL string `toml:"proxy_url"`
	AuthFile string `toml:"auth_file"`
}

// CacheConfig contains playlist cache settings.
type CacheConfig struct {
	Path    string `toml:"path"`
	TTLDays int    `toml:"ttl_days"`
}

// TTL returns the cache time-to-live as a [time.Duration].
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// MatchConfig contains the match engine's scoring thresholds.
//
// Thresholds are fixed per run. The same search results always classify
// the same way.
type MatchConfig struct {
	AutoAcceptThreshold float64 `toml:"auto_accept_threshold"`
	ConsiderThreshold   float64 `toml:"consider_threshold"`
	SearchLimit         int     `toml:"search_limit"`
	DurationToleranceMS int     `toml:"duration_tolerance_ms"`
}

// TransferConfig contains write batching and retry tuning.
type TransferConfig struct {
	BatchSize         int     `toml:"batch_size"`
	MaxRetries        int     `toml:"max_retries"`
	RetryBaseMS       int     `toml:"retry_base_ms"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	SidecarPath       string  `toml:"sidecar_path"`
}

// RetryBase returns the initial backoff delay as a [time.Duration].
func (c TransferConfig) RetryBase() time.Duration {
	return time.Duration(c.RetryBaseMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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

// SaveConfig writes the configuration back to path as TOML. Used to
// persist tokens after an OAuth2 flow.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
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
