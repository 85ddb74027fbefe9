package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"tokenark/internal/config"
	"tokenark/internal/discovery"
	"tokenark/internal/download"
	"tokenark/internal/logging"
	"tokenark/internal/manifest"
	"tokenark/internal/naming"
	"tokenark/internal/nft"
	"tokenark/internal/queue"
	"tokenark/internal/services"
	"tokenark/internal/storage"
)

// ErrLocked indicates another backup run holds the output lock.
var ErrLocked = errors.New("another backup run holds the lock")

// Runner drives backup runs against one output root.
type Runner struct {
	cfg        *config.Config
	store      *manifest.Store
	ledger     *queue.Store
	registry   *discovery.Registry
	resolver   naming.Resolver
	downloader *download.Client
	logger     *slog.Logger
	now        func() time.Time
	newRunID   func() string
	lock       *flock.Flock
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithManifestStore overrides the manifest store.
func WithManifestStore(store *manifest.Store) RunnerOption {
	return func(r *Runner) {
		if store != nil {
			r.store = store
		}
	}
}

// WithLedger overrides the backup ledger.
func WithLedger(ledger *queue.Store) RunnerOption {
	return func(r *Runner) {
		if ledger != nil {
			r.ledger = ledger
		}
	}
}

// WithRegistry overrides the discovery provider registry.
func WithRegistry(registry *discovery.Registry) RunnerOption {
	return func(r *Runner) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// WithResolver overrides the wallet name resolver.
func WithResolver(resolver naming.Resolver) RunnerOption {
	return func(r *Runner) {
		if resolver != nil {
			r.resolver = resolver
		}
	}
}

// WithDownloader overrides the asset download client.
func WithDownloader(client *download.Client) RunnerOption {
	return func(r *Runner) {
		if client != nil {
			r.downloader = client
		}
	}
}

// WithLogger overrides the runner logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRunID overrides run id generation.
func WithRunID(generate func() string) RunnerOption {
	return func(r *Runner) {
		if generate != nil {
			r.newRunID = generate
		}
	}
}

// NewRunner builds a runner wired from configuration. Unset collaborators
// default to the production implementations; the ledger database is opened
// lazily on the first run when none was supplied.
func NewRunner(cfg *config.Config, opts ...RunnerOption) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("backup runner requires configuration")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	runner := &Runner{
		cfg:      cfg,
		logger:   logging.NewNop(),
		now:      time.Now,
		newRunID: uuid.NewString,
		lock:     flock.New(filepath.Join(cfg.Paths.LogDir, "tokenark.lock")),
	}
	for _, opt := range opts {
		opt(runner)
	}
	if runner.store == nil {
		runner.store = manifest.NewStore(cfg.Paths.OutputDir, manifest.WithLogger(runner.logger))
	}
	if runner.registry == nil {
		runner.registry = discovery.NewRegistry(cfg)
	}
	if runner.resolver == nil {
		runner.resolver = naming.NewResolver(cfg)
	}
	if runner.downloader == nil {
		runner.downloader = download.NewClientFromConfig(cfg, runner.logger)
	}
	if runner.ledger == nil {
		ledger, err := queue.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open backup ledger: %w", err)
		}
		runner.ledger = ledger
	}
	return runner, nil
}

// Close releases runner resources.
func (r *Runner) Close() error {
	return r.ledger.Close()
}

// ChainOutcome summarizes one chain's portion of a run.
type ChainOutcome struct {
	Chain        nft.Chain
	ManifestPath string
	Summary      manifest.Summary
	Err          error
}

// Outcome is the result of one backup run.
type Outcome struct {
	RunID         string
	WalletInput   string
	WalletAddress string
	DisplayName   string
	Chains        []ChainOutcome
}

// Failed reports whether any chain of the run failed outright.
func (o *Outcome) Failed() bool {
	for _, chain := range o.Chains {
		if chain.Err != nil {
			return true
		}
	}
	return false
}

// Run executes a backup for one wallet across the requested chains. An
// empty chain list means every configured chain.
func (r *Runner) Run(ctx context.Context, walletInput string, chainNames []string) (*Outcome, error) {
	locked, err := r.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	defer func() {
		_ = r.lock.Unlock()
	}()

	runID := r.newRunID()
	ctx = services.WithRequestID(ctx, runID)

	address, displayName, err := r.resolver.Resolve(ctx, walletInput)
	if err != nil {
		return nil, fmt.Errorf("resolve wallet %q: %w", walletInput, err)
	}
	ctx = services.WithWallet(ctx, address)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "backup"))

	chains, err := r.selectChains(chainNames)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		RunID:         runID,
		WalletInput:   strings.TrimSpace(walletInput),
		WalletAddress: address,
		DisplayName:   displayName,
	}
	logger.Info("backup run starting", "chains", len(chains))

	for _, chain := range chains {
		chainOutcome := r.runChain(services.WithChain(ctx, chain.Name), runID, chain, address, displayName)
		outcome.Chains = append(outcome.Chains, chainOutcome)
		if chainOutcome.Err != nil && services.IsFatal(chainOutcome.Err) {
			// Validation and configuration errors would repeat on every
			// remaining chain; stop the run instead of grinding through.
			logger.Error("aborting run", logging.FieldChain, chainOutcome.Chain.Name, "error", chainOutcome.Err)
			return outcome, fmt.Errorf("chain %s: %w", chainOutcome.Chain.Name, chainOutcome.Err)
		}
	}

	logger.Info("backup run finished", "failed", outcome.Failed())
	return outcome, nil
}

func (r *Runner) selectChains(names []string) ([]nft.Chain, error) {
	if len(names) == 0 {
		chains := make([]nft.Chain, 0, len(r.cfg.Chains))
		for _, chain := range r.cfg.Chains {
			chains = append(chains, nft.Chain{ID: chain.ID, Name: chain.Name, Family: nft.Family(chain.Family)})
		}
		return chains, nil
	}
	chains := make([]nft.Chain, 0, len(names))
	for _, name := range names {
		chain, err := r.cfg.ChainByName(name)
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)
	}
	return chains, nil
}

func (r *Runner) runChain(ctx context.Context, runID string, chain nft.Chain, address, displayName string) ChainOutcome {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "backup"))
	outcome := ChainOutcome{Chain: chain}

	provider, err := r.registry.Provider(chain)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	assets, err := provider.Assets(ctx, address)
	if err != nil {
		outcome.Err = fmt.Errorf("discover %s assets: %w", chain.Name, err)
		logger.Error("discovery failed", "error", err)
		return outcome
	}
	logger.Info("assets discovered", "count", len(assets))

	m := &manifest.Manifest{
		WalletAddress: address,
		DisplayName:   displayName,
		ChainName:     chain.Name,
		ChainID:       chain.ID,
		BackupDate:    r.now().UTC().Format(time.RFC3339),
		NFTs:          make([]manifest.Entry, 0, len(assets)),
	}

	for _, asset := range assets {
		entry := r.processAsset(services.WithAssetID(ctx, asset.Ref.ID()), runID, chain, address, asset)
		m.NFTs = append(m.NFTs, entry)
	}
	m.Summary = summarize(m.NFTs)

	path, err := r.store.WriteWithHistory(chain.Name, address, m)
	if err != nil {
		outcome.Err = fmt.Errorf("write %s manifest: %w", chain.Name, err)
		return outcome
	}
	outcome.ManifestPath = path
	outcome.Summary = m.Summary
	return outcome
}

func summarize(entries []manifest.Entry) manifest.Summary {
	summary := manifest.Summary{TotalNFTs: len(entries)}
	for _, entry := range entries {
		switch entry.StorageStatus {
		case string(storage.StatusDecentralized):
			summary.FullyDecentralized++
		default:
			summary.AtRisk++
		}
		if entry.Error == "" {
			summary.BackedUp++
		} else {
			summary.Failed++
		}
	}
	return summary
}
