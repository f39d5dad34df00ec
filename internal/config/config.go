// Package config provides configuration management for deaddrop.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Home      string          `yaml:"home"`
	Network   NetworkConfig   `yaml:"network"`
	Relay     RelayConfig     `yaml:"relay"`
	Vault     VaultConfig     `yaml:"vault"`
	Fees      FeesConfig      `yaml:"fees"`
	Narration NarrationConfig `yaml:"narration"`
	Wallet    WalletConfig    `yaml:"wallet"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// NetworkConfig defines Solana RPC settings.
type NetworkConfig struct {
	RPC               string  `yaml:"rpc"`
	Cluster           string  `yaml:"cluster"`
	Explorer          string  `yaml:"explorer"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

// RelayConfig defines the relay service used for the second leg.
// When Enabled is false every transfer is a single direct leg to the vault.
type RelayConfig struct {
	Enabled        bool   `yaml:"enabled"`
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// VaultConfig holds the compiled-in fallback vault.
type VaultConfig struct {
	Address string `yaml:"address"`
}

// FeesConfig defines the service fee schedule.
type FeesConfig struct {
	ServicePercent float64 `yaml:"service_percent"`
	NetworkReserve float64 `yaml:"network_reserve"`
}

// NarrationConfig controls the progress animation.
type NarrationConfig struct {
	Enabled bool    `yaml:"enabled"`
	Speed   float64 `yaml:"speed"`
}

// WalletConfig defines keystore settings.
type WalletConfig struct {
	Keystore     string `yaml:"keystore"`
	CheckBalance bool   `yaml:"check_balance"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// GetHome returns the deaddrop home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetRPC returns the Solana RPC URL.
func (c *Config) GetRPC() string {
	return c.Network.RPC
}

// GetCluster returns the cluster name used for explorer links.
func (c *Config) GetCluster() string {
	return c.Network.Cluster
}

// GetExplorer returns the explorer base URL.
func (c *Config) GetExplorer() string {
	return c.Network.Explorer
}

// GetNetworkTimeout returns the per-request RPC timeout.
func (c *Config) GetNetworkTimeout() time.Duration {
	return seconds(c.Network.TimeoutSeconds, 30)
}

// IsRelayEnabled reports whether transfers take the two-leg relay route.
func (c *Config) IsRelayEnabled() bool {
	return c.Relay.Enabled
}

// GetRelayURL returns the relay service base URL.
func (c *Config) GetRelayURL() string {
	return c.Relay.URL
}

// GetRelayTimeout returns the relay request timeout.
func (c *Config) GetRelayTimeout() time.Duration {
	return seconds(c.Relay.TimeoutSeconds, 60)
}

// GetVaultAddress returns the compiled-in vault address.
func (c *Config) GetVaultAddress() string {
	return c.Vault.Address
}

// GetKeystore returns the name of the active keystore.
func (c *Config) GetKeystore() string {
	return c.Wallet.Keystore
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path. An empty path
// means deaddrop.log in the home directory.
func (c *Config) GetLoggingFile() string {
	if c.Logging.File == "" {
		return filepath.Join(c.GetHome(), DefaultLogFile)
	}
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// DefaultHome returns the default deaddrop home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deaddrop"
	}
	return filepath.Join(home, ".deaddrop")
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
