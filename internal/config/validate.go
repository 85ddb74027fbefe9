package config

import (
	"errors"
	"fmt"
	"net/url"

	"tokenark/internal/nft"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateChains(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDownload() error {
	for _, gateway := range c.Download.Gateways {
		parsed, err := url.Parse(gateway)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("download.gateways: %q is not an absolute URL", gateway)
		}
	}
	if c.Download.RetryMaxSeconds < c.Download.RetryBaseSeconds {
		return errors.New("download.retry_max_seconds must be >= download.retry_base_seconds")
	}
	return nil
}

func (c *Config) validateChains() error {
	seen := make(map[string]struct{}, len(c.Chains))
	for _, chain := range c.Chains {
		if chain.Name == "" {
			return errors.New("chains: every chain needs a name")
		}
		if _, dup := seen[chain.Name]; dup {
			return fmt.Errorf("chains: duplicate chain name %q", chain.Name)
		}
		seen[chain.Name] = struct{}{}
		if !nft.ValidFamily(chain.Family) {
			return fmt.Errorf("chains: chain %q has unknown family %q", chain.Name, chain.Family)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
