package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome         = "DEADDROP_HOME"
	EnvRPC          = "DEADDROP_RPC"
	EnvCluster      = "DEADDROP_CLUSTER"
	EnvRelayURL     = "DEADDROP_RELAY_URL"
	EnvRelayEnabled = "DEADDROP_RELAY_ENABLED"
	EnvVault        = "DEADDROP_VAULT"
	EnvKeystore     = "DEADDROP_KEYSTORE"
	EnvPassword     = "DEADDROP_KEYSTORE_PASSWORD" // #nosec G101 -- false positive, this is a const name not a credential
	EnvOutputFormat = "DEADDROP_OUTPUT_FORMAT"
	EnvVerbose      = "DEADDROP_VERBOSE"
	EnvLogLevel     = "DEADDROP_LOG_LEVEL"
	EnvNarration    = "DEADDROP_NARRATION"
	EnvNoColor      = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvRPC); v != "" {
		cfg.Network.RPC = SanitizeURL(v)
	}

	if v := os.Getenv(EnvCluster); v != "" {
		cfg.Network.Cluster = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvRelayURL); v != "" {
		cfg.Relay.URL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvRelayEnabled); v != "" {
		cfg.Relay.Enabled = parseBool(v)
	}

	if v := os.Getenv(EnvVault); v != "" {
		cfg.Vault.Address = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvKeystore); v != "" {
		cfg.Wallet.Keystore = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvNarration); v != "" {
		cfg.Narration.Enabled = parseBool(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL cleans a URL string picked up from copy-paste. Surrounding
// whitespace is trimmed and every character outside the URL-safe set
// (letters, digits and -_/:.,?&@=#%) is dropped, so embedded spaces and
// control characters disappear.
func SanitizeURL(raw string) string {
	return strings.Map(func(r rune) rune {
		if isURLRune(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(raw))
}

func isURLRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_/:.,?&@=#%", r)
}
