package config

// DefaultRPCURL is the default Solana RPC endpoint.
const DefaultRPCURL = "https://api.devnet.solana.com"

// DefaultVaultAddress is the compiled-in vault used when the relay is disabled.
const DefaultVaultAddress = "JChojPahR9scTF63ETisQ6YGTuhkq5B1Ud9w1XkanyRT"

// DefaultExplorerURL is the transaction explorer base URL.
const DefaultExplorerURL = "https://explorer.solana.com"

// DefaultLogFile is the log file name under the home directory.
const DefaultLogFile = "deaddrop.log"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.deaddrop",
		Network: NetworkConfig{
			RPC:               DefaultRPCURL,
			Cluster:           "devnet",
			Explorer:          DefaultExplorerURL,
			RequestsPerSecond: 5,
			Burst:             10,
			TimeoutSeconds:    30,
		},
		Relay: RelayConfig{
			Enabled:        false,
			URL:            "http://localhost:3000",
			TimeoutSeconds: 60,
		},
		Vault: VaultConfig{
			Address: DefaultVaultAddress,
		},
		Fees: FeesConfig{
			ServicePercent: 0.35,
			NetworkReserve: 0.000005,
		},
		Narration: NarrationConfig{
			Enabled: true,
			Speed:   1,
		},
		Wallet: WalletConfig{
			Keystore:     "default",
			CheckBalance: true,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level:      "error",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   false,
		},
	}
}
