package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDownload()
	c.normalizeDiscovery()
	c.normalizeNaming()
	c.normalizeLogging()
	c.normalizeChains()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDownload() {
	gateways := make([]string, 0, len(c.Download.Gateways))
	for _, gateway := range c.Download.Gateways {
		trimmed := strings.TrimSpace(gateway)
		if trimmed == "" {
			continue
		}
		if !strings.HasSuffix(trimmed, "/") {
			trimmed += "/"
		}
		gateways = append(gateways, trimmed)
	}
	if len(gateways) == 0 {
		gateways = append(gateways, defaultGateways...)
	}
	c.Download.Gateways = gateways

	if c.Download.MaxRetries <= 0 {
		c.Download.MaxRetries = defaultMaxRetries
	}
	if c.Download.RetryBaseSeconds <= 0 {
		c.Download.RetryBaseSeconds = defaultRetryBaseSeconds
	}
	if c.Download.RetryMaxSeconds <= 0 {
		c.Download.RetryMaxSeconds = defaultRetryMaxSeconds
	}
	if c.Download.AttemptTimeoutSeconds <= 0 {
		c.Download.AttemptTimeoutSeconds = defaultAttemptTimeoutSeconds
	}
	c.IPFS.NodeURL = strings.TrimSpace(c.IPFS.NodeURL)
}

func (c *Config) normalizeDiscovery() {
	if c.EVM.APIKey == "" {
		if value, ok := os.LookupEnv("TOKENARK_EVM_API_KEY"); ok {
			c.EVM.APIKey = value
		}
	}
	c.EVM.APIKey = strings.TrimSpace(c.EVM.APIKey)
	c.EVM.BaseURL = strings.TrimRight(strings.TrimSpace(c.EVM.BaseURL), "/")
	if c.EVM.BaseURL == "" {
		c.EVM.BaseURL = defaultEVMBaseURL
	}
	c.Tezos.BaseURL = strings.TrimRight(strings.TrimSpace(c.Tezos.BaseURL), "/")
	if c.Tezos.BaseURL == "" {
		c.Tezos.BaseURL = defaultTezosBaseURL
	}
}

func (c *Config) normalizeNaming() {
	c.Naming.BaseURL = strings.TrimRight(strings.TrimSpace(c.Naming.BaseURL), "/")
	if c.Naming.BaseURL == "" {
		c.Naming.BaseURL = defaultNamingBaseURL
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeChains() {
	if len(c.Chains) == 0 {
		c.Chains = Default().Chains
	}
	for i := range c.Chains {
		c.Chains[i].Name = strings.ToLower(strings.TrimSpace(c.Chains[i].Name))
		c.Chains[i].Family = strings.ToLower(strings.TrimSpace(c.Chains[i].Family))
	}
}
