package config

import (
	"fmt"
	"math"
	"net/url"

	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// Validate checks the configuration for values the transfer flow cannot run with.
func (c *Config) Validate() error {
	if err := validateHTTPURL("network.rpc", c.Network.RPC); err != nil {
		return err
	}

	if c.Relay.Enabled {
		if err := validateHTTPURL("relay.url", c.Relay.URL); err != nil {
			return err
		}
	} else if c.Vault.Address == "" {
		return droperr.WithSuggestion(
			droperr.ErrConfigInvalid,
			"vault.address is required when the relay is disabled",
		)
	}

	if c.Fees.ServicePercent < 0 || c.Fees.ServicePercent >= 100 || math.IsNaN(c.Fees.ServicePercent) {
		return droperr.WithDetails(droperr.ErrConfigInvalid, map[string]string{
			"fees.service_percent": fmt.Sprintf("%v", c.Fees.ServicePercent),
		})
	}

	if c.Fees.NetworkReserve < 0 || math.IsNaN(c.Fees.NetworkReserve) {
		return droperr.WithDetails(droperr.ErrConfigInvalid, map[string]string{
			"fees.network_reserve": fmt.Sprintf("%v", c.Fees.NetworkReserve),
		})
	}

	if c.Narration.Speed < 0 {
		return droperr.WithDetails(droperr.ErrConfigInvalid, map[string]string{
			"narration.speed": fmt.Sprintf("%v", c.Narration.Speed),
		})
	}

	return nil
}

func validateHTTPURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return droperr.WithSuggestion(
			droperr.WithDetails(droperr.ErrConfigInvalid, map[string]string{key: raw}),
			fmt.Sprintf("set %s to an http(s) URL", key),
		)
	}
	return nil
}
