package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// regenerateDerived rebuilds the index and gallery bundle from scratch by
// rescanning every canonical manifest. Malformed files are skipped, not
// fatal: a best-effort scan must not let one corrupt manifest hide the rest.
func (s *Store) regenerateDerived(manifestsDir string) error {
	entries, err := os.ReadDir(manifestsDir)
	if err != nil {
		return fmt.Errorf("scan manifests directory: %w", err)
	}

	index := Index{
		Version:     formatVersion,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Manifests:   []IndexEntry{},
	}
	contents := map[string]*Manifest{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "manifest.") || !strings.HasSuffix(name, ".json") {
			continue
		}
		path := filepath.Join(manifestsDir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable manifest", "file", name, "error", err)
			continue
		}
		var m Manifest
		if err := json.Unmarshal(raw, &m); err != nil {
			s.logger.Warn("skipping malformed manifest", "file", name, "error", err)
			continue
		}

		relPath := manifestsDirName + "/" + name
		index.Manifests = append(index.Manifests, IndexEntry{
			Path:          relPath,
			ChainName:     m.ChainName,
			ChainID:       m.ChainID,
			WalletAddress: m.WalletAddress,
			WalletName:    m.DisplayName,
			BackupDate:    m.BackupDate,
		})
		contents[relPath] = &m
	}

	sort.Slice(index.Manifests, func(i, j int) bool {
		a, b := index.Manifests[i], index.Manifests[j]
		if a.ChainName != b.ChainName {
			return a.ChainName < b.ChainName
		}
		return a.WalletAddress < b.WalletAddress
	})

	if err := writeJSON(filepath.Join(manifestsDir, indexFileName), index); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	bundle := Bundle{
		Version:     formatVersion,
		GeneratedAt: index.GeneratedAt,
		Index:       index,
		Manifests:   contents,
	}
	if err := writeJSON(filepath.Join(manifestsDir, bundleFileName), bundle); err != nil {
		return fmt.Errorf("write gallery bundle: %w", err)
	}
	return nil
}
