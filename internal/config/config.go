package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"tokenark/internal/nft"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Backup contains policy settings for what gets fetched during a run.
type Backup struct {
	// AtRiskOnly limits media downloads to URLs classified as at risk.
	// Metadata and storage reports are always written.
	AtRiskOnly bool `toml:"at_risk_only"`
}

// Download contains gateway and retry configuration for the asset fetcher.
type Download struct {
	Gateways              []string `toml:"gateways"`
	MaxRetries            int      `toml:"max_retries"`
	RetryBaseSeconds      int      `toml:"retry_base_seconds"`
	RetryMaxSeconds       int      `toml:"retry_max_seconds"`
	AttemptTimeoutSeconds int      `toml:"attempt_timeout_seconds"`
}

// IPFS contains optional local IPFS node settings. When NodeURL is set the
// downloader tries the node's API before any HTTP gateway.
type IPFS struct {
	NodeURL string `toml:"node_url"`
}

// EVM contains configuration for the EVM-family discovery API.
type EVM struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// Tezos contains configuration for the Tezos-family discovery API.
type Tezos struct {
	BaseURL string `toml:"base_url"`
}

// Naming contains configuration for human-readable name resolution.
type Naming struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Chain declares one backed-up network.
type Chain struct {
	ID     int64  `toml:"id"`
	Name   string `toml:"name"`
	Family string `toml:"family"`
}

// Config encapsulates all configuration values for tokenark.
//
// Configuration sections by subsystem:
//   - Paths: output root and log directory
//   - Backup: fetch policy
//   - Download: IPFS gateways, retries, timeouts
//   - IPFS: optional local node
//   - EVM / Tezos: discovery API endpoints
//   - Naming: human-readable name resolution
//   - Logging: log format and level
//   - Chains: the declared networks
type Config struct {
	Paths    Paths    `toml:"paths"`
	Backup   Backup   `toml:"backup"`
	Download Download `toml:"download"`
	IPFS     IPFS     `toml:"ipfs"`
	EVM      EVM      `toml:"evm"`
	Tezos    Tezos    `toml:"tezos"`
	Naming   Naming   `toml:"naming"`
	Logging  Logging  `toml:"logging"`
	Chains   []Chain  `toml:"chains"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/tokenark/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tokenark.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ChainByName resolves a declared chain by its (case-insensitive) name.
func (c *Config) ChainByName(name string) (nft.Chain, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nft.Chain{}, errors.New("chain name required")
	}
	for _, chain := range c.Chains {
		if strings.ToLower(chain.Name) == needle {
			return nft.Chain{ID: chain.ID, Name: chain.Name, Family: nft.Family(chain.Family)}, nil
		}
	}
	return nft.Chain{}, fmt.Errorf("unknown chain %q (declare it under [[chains]])", name)
}

// CreateSample writes the embedded sample configuration to the given path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves a leading ~ against the current user's home directory
// and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return abs, nil
}
