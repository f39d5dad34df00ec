package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deaddrop/internal/chain"
	"github.com/mrz1836/deaddrop/internal/config"
	"github.com/mrz1836/deaddrop/internal/output"
	"github.com/mrz1836/deaddrop/internal/relay"
	"github.com/mrz1836/deaddrop/internal/wallet/keystore"
)

// keystoreDirName is the directory under the home directory holding keypairs.
const keystoreDirName = "keystores"

// CommandContext holds dependencies for CLI commands. Network and relay
// clients are created on first use so commands that only read local files
// never dial out.
type CommandContext struct {
	Config    *config.Config
	Logger    *config.Logger
	Formatter *output.Formatter
	Store     *keystore.Store
	Network   chain.Network
	Relay     RelayService

	limiter *chain.RateLimiter
	closers []func() error
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(
	cfg *config.Config,
	logger *config.Logger,
	formatter *output.Formatter,
) *CommandContext {
	cc := &CommandContext{
		Config:    cfg,
		Logger:    logger,
		Formatter: formatter,
	}
	if cfg != nil {
		cc.Store = keystore.NewStore(filepath.Join(cfg.GetHome(), keystoreDirName))
	}
	return cc
}

// WithStore sets the keystore directory.
func (c *CommandContext) WithStore(s *keystore.Store) *CommandContext {
	c.Store = s
	return c
}

// WithNetwork sets the Solana network client.
func (c *CommandContext) WithNetwork(n chain.Network) *CommandContext {
	c.Network = n
	return c
}

// WithRelay sets the relay client.
func (c *CommandContext) WithRelay(r RelayService) *CommandContext {
	c.Relay = r
	return c
}

// network returns the Solana client, dialing the configured RPC on first use.
func (c *CommandContext) network() chain.Network {
	if c.Network == nil {
		client := chain.NewClient(c.Config.GetRPC(), &chain.ClientOptions{
			Timeout:     c.Config.GetNetworkTimeout(),
			RateLimiter: c.rateLimiter(),
		})
		c.closers = append(c.closers, client.Close)
		c.Network = client
	}
	return c.Network
}

// relay returns the relay client for the configured URL.
func (c *CommandContext) relay() RelayService {
	if c.Relay == nil {
		c.Relay = relay.NewClient(c.Config.GetRelayURL(), &relay.ClientOptions{
			Timeout:     c.Config.GetRelayTimeout(),
			RateLimiter: c.rateLimiter(),
		})
	}
	return c.Relay
}

// rateLimiter is shared by the RPC and relay clients.
func (c *CommandContext) rateLimiter() *chain.RateLimiter {
	if c.limiter == nil {
		c.limiter = chain.NewRateLimiter(c.Config.Network.RequestsPerSecond, c.Config.Network.Burst)
	}
	return c.limiter
}

// log returns the logger, or a null logger when none is set.
func (c *CommandContext) log() *config.Logger {
	if c.Logger == nil {
		return config.NullLogger()
	}
	return c.Logger
}

// Close releases network clients opened by the context.
func (c *CommandContext) Close() error {
	var first error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

type cmdContextKey struct{}

// SetCmdContext attaches cc to the command.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cmdContextKey{}, cc))
}

// GetCmdContext returns the command's context, falling back to one built
// from the globals.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	if cc := cmdContextFrom(cmd); cc != nil {
		return cc
	}
	return NewCommandContext(cfg, logger, formatter)
}

func cmdContextFrom(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	cc, _ := ctx.Value(cmdContextKey{}).(*CommandContext)
	return cc
}

// contextWithTimeout returns a timeout context rooted in the command context.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(commandContext(cmd), d)
}

// commandContext returns the command's context, or Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
