package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tokenark/internal/fileutil"
	"tokenark/internal/logging"
	"tokenark/internal/services"
)

const (
	// HistoryLimit caps the snapshots retained per (chain, wallet) pair.
	HistoryLimit = 2

	manifestsDirName = "manifests"
	historyDirName   = "history"
	runsDirName      = "runs"

	indexFileName  = "index.json"
	bundleFileName = "gallery-data.json"

	// formatVersion is stamped into the index and bundle.
	formatVersion = 1

	snapshotTimeLayout = "2006-01-02T15-04-05"
)

// Store owns every manifest-related file under its root directory. No other
// component reads or writes them directly.
type Store struct {
	root         string
	historyLimit int
	logger       *slog.Logger
	now          func() time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithHistoryLimit overrides the snapshot retention count.
func WithHistoryLimit(limit int) StoreOption {
	return func(s *Store) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithLogger attaches a logger for scan diagnostics.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "manifest")
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a manifest store rooted at the given output directory.
func NewStore(root string, opts ...StoreOption) *Store {
	store := &Store{
		root:         root,
		historyLimit: HistoryLimit,
		logger:       logging.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// CanonicalPath returns the canonical manifest path for a (chain, wallet)
// pair, validating both segments.
func (s *Store) CanonicalPath(chain, wallet string) (string, error) {
	chainSeg, err := SafeSegment(chain)
	if err != nil {
		return "", err
	}
	walletSeg, err := SafeSegment(wallet)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, manifestsDirName, canonicalName(chainSeg, walletSeg)), nil
}

// WriteWithHistory persists a new canonical manifest for (chain, wallet),
// snapshotting the previous version, appending a delta run record, and
// regenerating the index and gallery bundle. It returns the canonical path.
func (s *Store) WriteWithHistory(chain, wallet string, m *Manifest) (string, error) {
	if m == nil {
		return "", services.Wrap(services.ErrValidation, "manifest", "write", "nil manifest", nil)
	}
	chainSeg, err := SafeSegment(chain)
	if err != nil {
		return "", err
	}
	walletSeg, err := SafeSegment(wallet)
	if err != nil {
		return "", err
	}

	manifestsDir := filepath.Join(s.root, manifestsDirName)
	historyDir := filepath.Join(manifestsDir, historyDirName)
	runsDir := filepath.Join(manifestsDir, runsDirName)
	for _, dir := range []string{manifestsDir, historyDir, runsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}

	canonicalPath := filepath.Join(manifestsDir, canonicalName(chainSeg, walletSeg))

	// Snapshot the existing file before it is overwritten. The previous
	// manifest it contains is the delta baseline; when no file exists the
	// baseline is empty and there is nothing to snapshot.
	var previous *Manifest
	if _, statErr := os.Stat(canonicalPath); statErr == nil {
		previous, err = s.LoadManifestFile(canonicalPath)
		if err != nil {
			return "", err
		}
		if err := s.snapshot(historyDir, chainSeg, walletSeg, canonicalPath); err != nil {
			return "", err
		}
		if err := s.pruneHistory(historyDir, chainSeg, walletSeg); err != nil {
			return "", err
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return "", fmt.Errorf("stat canonical manifest: %w", statErr)
	}

	delta := computeDelta(previous, m)
	if err := s.writeRunRecord(runsDir, chainSeg, walletSeg, m, delta); err != nil {
		return "", err
	}

	if err := writeJSON(canonicalPath, m); err != nil {
		return "", fmt.Errorf("write canonical manifest: %w", err)
	}

	if err := s.regenerateDerived(manifestsDir); err != nil {
		return "", err
	}
	return canonicalPath, nil
}

// LoadManifestFile reads and parses one canonical manifest. Parse failures
// are fatal here: the caller explicitly asked for this file.
func (s *Store) LoadManifestFile(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// LoadIndex reads the current manifest index.
func (s *Store) LoadIndex() (*Index, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, manifestsDirName, indexFileName))
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var index Index
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return &index, nil
}

// LoadBundle reads the current gallery data bundle.
func (s *Store) LoadBundle() (*Bundle, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, manifestsDirName, bundleFileName))
	if err != nil {
		return nil, fmt.Errorf("read gallery bundle: %w", err)
	}
	var bundle Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("parse gallery bundle: %w", err)
	}
	return &bundle, nil
}

// LoadRunRecords returns every run record for a (chain, wallet) pair in
// filename (timestamp) order.
func (s *Store) LoadRunRecords(chain, wallet string) ([]RunRecord, error) {
	chainSeg, err := SafeSegment(chain)
	if err != nil {
		return nil, err
	}
	walletSeg, err := SafeSegment(wallet)
	if err != nil {
		return nil, err
	}
	runsDir := filepath.Join(s.root, manifestsDirName, runsDirName)
	prefix := fmt.Sprintf("run.%s.%s.", chainSeg, walletSeg)

	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read runs directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if matchesTimestamped(name, prefix) {
			names = append(names, name)
		}
	}
	sortTimestamped(names, prefix)

	records := make([]RunRecord, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(runsDir, name))
		if err != nil {
			return nil, fmt.Errorf("read run record %s: %w", name, err)
		}
		var record RunRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("parse run record %s: %w", name, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Store) snapshot(historyDir, chainSeg, walletSeg, canonicalPath string) error {
	base := fmt.Sprintf("manifest.%s.%s.%s", chainSeg, walletSeg, s.now().UTC().Format(snapshotTimeLayout))
	target := uniquePath(historyDir, base, ".json")
	if err := fileutil.CopyFileVerified(canonicalPath, target); err != nil {
		return fmt.Errorf("snapshot manifest: %w", err)
	}
	return nil
}

func (s *Store) pruneHistory(historyDir, chainSeg, walletSeg string) error {
	prefix := fmt.Sprintf("manifest.%s.%s.", chainSeg, walletSeg)
	entries, err := os.ReadDir(historyDir)
	if err != nil {
		return fmt.Errorf("read history directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if matchesTimestamped(name, prefix) {
			names = append(names, name)
		}
	}
	if len(names) <= s.historyLimit {
		return nil
	}

	sortTimestamped(names, prefix)
	for _, name := range names[:len(names)-s.historyLimit] {
		path := filepath.Join(historyDir, name)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("prune history snapshot %s: %w", name, err)
		}
		s.logger.Debug("pruned history snapshot", "file", name)
	}
	return nil
}

func (s *Store) writeRunRecord(runsDir, chainSeg, walletSeg string, m *Manifest, delta Delta) error {
	record := RunRecord{
		RunID:         m.BackupDate,
		WalletAddress: m.WalletAddress,
		ChainName:     m.ChainName,
		ChainID:       m.ChainID,
		Added:         delta.Added,
		Updated:       delta.Updated,
		Removed:       delta.Removed,
		Summary: RunSummary{
			Added:   len(delta.Added),
			Updated: len(delta.Updated),
			Removed: len(delta.Removed),
		},
	}
	base := fmt.Sprintf("run.%s.%s.%s", chainSeg, walletSeg, s.now().UTC().Format(snapshotTimeLayout))
	target := uniquePath(runsDir, base, ".json")
	if err := writeJSON(target, record); err != nil {
		return fmt.Errorf("write run record: %w", err)
	}
	return nil
}

// matchesTimestamped reports whether name is exactly
// <prefix><timestamp>[-n].json. Wallet segments may contain dots, so a bare
// prefix check would also match files belonging to a longer wallet name
// ("manifest.eth.a." is a prefix of "manifest.eth.a.b.<ts>.json"); the
// remainder after the prefix must parse as a timestamp.
func matchesTimestamped(name, prefix string) bool {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return false
	}
	rest, ok = strings.CutSuffix(rest, ".json")
	if !ok || len(rest) < len(snapshotTimeLayout) {
		return false
	}
	if _, err := time.Parse(snapshotTimeLayout, rest[:len(snapshotTimeLayout)]); err != nil {
		return false
	}
	tail := rest[len(snapshotTimeLayout):]
	if tail == "" {
		return true
	}
	tail, ok = strings.CutPrefix(tail, "-")
	if !ok || tail == "" {
		return false
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// sortTimestamped orders filenames of the form <prefix><timestamp>[-n].json
// oldest first. A plain byte sort would misorder the -n collision suffix
// ('-' sorts before '.'), so the timestamp and collision index are compared
// separately.
func sortTimestamped(names []string, prefix string) {
	key := func(name string) (string, int) {
		rest := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json")
		if len(rest) <= len(snapshotTimeLayout) {
			return rest, 0
		}
		ts := rest[:len(snapshotTimeLayout)]
		n := 0
		if suffix, ok := strings.CutPrefix(rest[len(snapshotTimeLayout):], "-"); ok {
			fmt.Sscanf(suffix, "%d", &n)
		}
		return ts, n
	}
	sort.Slice(names, func(i, j int) bool {
		tsI, nI := key(names[i])
		tsJ, nJ := key(names[j])
		if tsI != tsJ {
			return tsI < tsJ
		}
		return nI < nJ
	})
}

// uniquePath returns dir/base+ext, appending -1, -2, ... until the name does
// not collide with an existing file.
func uniquePath(dir, base, ext string) string {
	candidate := filepath.Join(dir, base+ext)
	for n := 1; ; n++ {
		if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, n, ext))
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}
