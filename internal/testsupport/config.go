package testsupport

import (
	"path/filepath"
	"testing"

	"tokenark/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "archive")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.EVM.APIKey = "test"
	cfgVal.Naming.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithEVMAPIKey sets the EVM indexer API key on the test config.
func WithEVMAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.EVM.APIKey = key
	}
}

// WithGateways overrides the download gateways on the test config.
func WithGateways(gateways ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Download.Gateways = gateways
	}
}

// WithAtRiskOnly enables the at-risk-only download policy.
func WithAtRiskOnly() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backup.AtRiskOnly = true
	}
}

// WithChains replaces the configured chain list.
func WithChains(chains ...config.Chain) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Chains = chains
	}
}
