package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"tokenark/internal/fileutil"
	"tokenark/internal/logging"
	"tokenark/internal/manifest"
)

const defaultWorkers = 4

// Exporter copies archive content into an export directory.
type Exporter struct {
	store   *manifest.Store
	logger  *slog.Logger
	workers int
}

// ExporterOption customizes an Exporter.
type ExporterOption func(*Exporter)

// WithLogger overrides the exporter logger.
func WithLogger(logger *slog.Logger) ExporterOption {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithWorkers overrides the copy worker count.
func WithWorkers(workers int) ExporterOption {
	return func(e *Exporter) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// NewExporter builds an exporter over one manifest store.
func NewExporter(store *manifest.Store, opts ...ExporterOption) *Exporter {
	exporter := &Exporter{
		store:   store,
		logger:  logging.NewNop(),
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(exporter)
	}
	return exporter
}

// Result summarizes one export.
type Result struct {
	FilesCopied int
	Missing     []string
}

// Export copies the index, bundle, manifests, and every referenced asset
// file into destDir, preserving the archive-relative layout. Files a
// manifest references but that no longer exist on disk are reported in
// the result rather than failing the export.
func (e *Exporter) Export(ctx context.Context, destDir string) (*Result, error) {
	bundle, err := e.store.LoadBundle()
	if err != nil {
		return nil, fmt.Errorf("load gallery bundle: %w", err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	files := e.collectFiles(bundle)

	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	result := &Result{}

	workers := e.workers
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range jobs {
				src := filepath.Join(e.store.Root(), filepath.FromSlash(rel))
				dst := filepath.Join(destDir, filepath.FromSlash(rel))
				if _, err := os.Stat(src); err != nil {
					mu.Lock()
					result.Missing = append(result.Missing, rel)
					mu.Unlock()
					e.logger.Warn("referenced file missing, skipping", "file", rel)
					continue
				}
				if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
					e.logger.Warn("export copy failed", "file", rel, "error", err)
					continue
				}
				if err := fileutil.CopyFile(src, dst); err != nil {
					e.logger.Warn("export copy failed", "file", rel, "error", err)
					continue
				}
				mu.Lock()
				result.FilesCopied++
				mu.Unlock()
			}
		}()
	}

	for _, rel := range files {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- rel:
		}
	}
	close(jobs)
	wg.Wait()

	sort.Strings(result.Missing)
	return result, nil
}

// collectFiles lists every archive-relative path the export should carry,
// deduplicated and in stable order.
func (e *Exporter) collectFiles(bundle *manifest.Bundle) []string {
	seen := map[string]struct{}{}
	add := func(rel string) {
		if rel == "" {
			return
		}
		seen[rel] = struct{}{}
	}

	add("manifests/index.json")
	add("manifests/gallery-data.json")
	for _, entry := range bundle.Index.Manifests {
		add(entry.Path)
	}
	for _, m := range bundle.Manifests {
		for _, nft := range m.NFTs {
			add(nft.MetadataFile)
			add(nft.ImageFile)
			add(nft.AnimationFile)
			add(nft.StorageReportFile)
		}
	}

	files := make([]string, 0, len(seen))
	for rel := range seen {
		files = append(files, rel)
	}
	sort.Strings(files)
	return files
}
