// Package cli implements the deaddrop command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deaddrop/internal/config"
	"github.com/mrz1836/deaddrop/internal/output"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	colorMode    string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "deaddrop",
	Short: "Send SOL through a vault and relay",
	Long: `deaddrop sends SOL from a local keypair to a destination address.

Each transfer is quoted up front: the amount, a 0.35% service fee and a small
network reserve. The amount plus the fee goes to the vault in a signed
transaction that is broadcast without waiting for confirmation. When the relay
is enabled it is then asked to deliver the amount to the destination; if it
does not answer the drop still completes at the vault.

Example:
  deaddrop wallet import main --keygen-file ~/.config/solana/id.json
  deaddrop quote 1.5
  deaddrop send --to 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM --amount 1.5`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initGlobals(); err != nil {
			return err
		}
		SetCmdContext(cmd, NewCommandContext(cfg, logger, formatter))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if cc := cmdContextFrom(cmd); cc != nil {
			_ = cc.Close()
		}
		cleanup()
	},
}

// reportedError is an error the command has already written for the user.
// Execute keeps its exit code but does not print it again.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		var reported *reportedError
		if errors.As(err, &reported) {
			return err
		}

		// Format and print error
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return droperr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals() error {
	// Determine home directory
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	// Load or create config
	configPath := config.Path(expandHome(home))
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return droperr.WithDetails(droperr.WithCause(droperr.ErrConfigInvalid, err), map[string]string{
				"path": configPath,
			})
		}
		cfg = config.Defaults()
		cfg.Home = home
	}

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if homeDir != "" {
		cfg.Home = homeDir
	}
	cfg.Home = expandHome(cfg.Home)
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}
	if colorMode != "" && colorMode != "auto" {
		cfg.Output.Color = colorMode
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize logger
	cfg.Logging.File = expandHome(cfg.GetLoggingFile())
	logger, err = config.NewLoggerFromConfig(cfg.Logging)
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	// Initialize formatter
	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, os.Stdout)
	formatter.SetColor(output.DetectColor(os.Stdout, cfg.Output.Color))

	logger.Debug("deaddrop home %s, rpc %s, relay enabled %t", cfg.GetHome(), cfg.GetRPC(), cfg.IsRelayEnabled())
	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "deaddrop data directory (default: ~/.deaddrop)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "colored output: auto, always, never")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
