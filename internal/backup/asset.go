package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"tokenark/internal/fileutil"
	"tokenark/internal/logging"
	"tokenark/internal/manifest"
	"tokenark/internal/nft"
	"tokenark/internal/queue"
	"tokenark/internal/storage"
)

const (
	assetsDirName     = "assets"
	metadataFileName  = "metadata.json"
	reportFileName    = "storage-report.json"
	imageFilePrefix   = "image"
	mediaFilePrefix   = "animation"
	placeholderSuffix = ".bin"
)

// processAsset classifies, fetches, and records one asset. Failures are
// captured on the returned entry; only ledger bookkeeping errors are logged
// and otherwise ignored so a broken ledger cannot take down the run.
func (r *Runner) processAsset(ctx context.Context, runID string, chain nft.Chain, wallet string, asset nft.DiscoveredAsset) manifest.Entry {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "backup"))
	entry := manifest.Entry{
		ContractAddress: asset.Ref.ContractAddress,
		TokenID:         asset.Ref.TokenID,
		Name:            asset.DisplayName(),
	}
	var failures []string

	item, err := r.ledger.Enqueue(ctx, runID, chain.Name, asset, wallet)
	if err != nil {
		logger.Warn("ledger enqueue failed", "error", err)
	}

	relDir, absDir, err := r.assetDirs(chain.Name, wallet, asset.Ref)
	if err == nil {
		err = os.MkdirAll(absDir, 0o755)
	}
	if err != nil {
		entry.Error = err.Error()
		r.ledgerFail(ctx, logger, item, entry.Error)
		return entry
	}

	r.ledgerMove(ctx, logger, item, queue.StatusClassifying)

	meta := asset.Metadata
	tokenURI := strings.TrimSpace(asset.TokenURI)
	if tokenURI != "" {
		fetched, err := r.fetchMetadata(ctx, tokenURI, filepath.Join(absDir, metadataFileName))
		switch {
		case err == nil:
			entry.MetadataFile = path.Join(relDir, metadataFileName)
			if fetched != nil {
				meta = fetched
			}
		case meta != nil:
			// The indexer already gave us a metadata copy; keep it.
			logger.Warn("metadata fetch failed, using indexer copy", "error", err)
			if writeErr := r.writeMetadataCopy(absDir, meta); writeErr == nil {
				entry.MetadataFile = path.Join(relDir, metadataFileName)
			}
		default:
			failures = append(failures, fmt.Sprintf("metadata: %v", err))
		}
	} else if meta != nil {
		if err := r.writeMetadataCopy(absDir, meta); err == nil {
			entry.MetadataFile = path.Join(relDir, metadataFileName)
		} else {
			failures = append(failures, fmt.Sprintf("metadata: %v", err))
		}
	}

	report := storage.Analyze(tokenURI, meta)
	entry.StorageStatus = string(report.Status())
	if err := writeReport(filepath.Join(absDir, reportFileName), report); err != nil {
		failures = append(failures, fmt.Sprintf("storage report: %v", err))
	} else {
		entry.StorageReportFile = path.Join(relDir, reportFileName)
	}

	r.ledgerMove(ctx, logger, item, queue.StatusDownloading)

	if meta != nil && meta.Image != "" && r.shouldFetch(report.Image) {
		if rel, err := r.fetchMedia(ctx, meta.Image, absDir, relDir, imageFilePrefix); err != nil {
			failures = append(failures, fmt.Sprintf("image: %v", err))
		} else {
			entry.ImageFile = rel
		}
	}
	if meta != nil && meta.AnimationURL != "" && r.shouldFetch(report.Animation) {
		if rel, err := r.fetchMedia(ctx, meta.AnimationURL, absDir, relDir, mediaFilePrefix); err != nil {
			failures = append(failures, fmt.Sprintf("animation: %v", err))
		} else {
			entry.AnimationFile = rel
		}
	}

	if len(failures) > 0 {
		entry.Error = strings.Join(failures, "; ")
		r.ledgerFail(ctx, logger, item, entry.Error)
	} else {
		r.ledgerMove(ctx, logger, item, queue.StatusCompleted)
	}
	return entry
}

// shouldFetch applies the at-risk-only download policy. Unclassified
// media (analysis absent) is always fetched.
func (r *Runner) shouldFetch(analysis *storage.Analysis) bool {
	if !r.cfg.Backup.AtRiskOnly {
		return true
	}
	return analysis == nil || analysis.IsAtRisk
}

// assetDirs returns the manifest-relative and absolute directory for one
// asset's files. The relative form always uses forward slashes so manifests
// stay portable.
func (r *Runner) assetDirs(chainName, wallet string, ref nft.AssetRef) (string, string, error) {
	chainSeg, err := manifest.SafeSegment(chainName)
	if err != nil {
		return "", "", err
	}
	walletSeg, err := manifest.SafeSegment(wallet)
	if err != nil {
		return "", "", err
	}
	contractSeg, err := manifest.SafeSegment(ref.ContractAddress)
	if err != nil {
		return "", "", err
	}
	tokenSeg, err := manifest.SafeSegment(ref.TokenID)
	if err != nil {
		return "", "", err
	}
	relDir := path.Join(assetsDirName, chainSeg, walletSeg, contractSeg+"_"+tokenSeg)
	return relDir, filepath.Join(r.store.Root(), filepath.FromSlash(relDir)), nil
}

// fetchMedia downloads one media URL into the asset directory and returns
// the manifest-relative path of the stored file.
func (r *Runner) fetchMedia(ctx context.Context, rawURL, absDir, relDir, prefix string) (string, error) {
	result, err := r.downloader.Download(ctx, rawURL, filepath.Join(absDir, prefix+placeholderSuffix))
	if err != nil {
		return "", err
	}
	return path.Join(relDir, filepath.Base(result.Path)), nil
}

func (r *Runner) writeMetadataCopy(absDir string, meta *nft.Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(filepath.Join(absDir, metadataFileName), append(data, '\n'), 0o644)
}

func writeReport(path string, report storage.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}

func (r *Runner) ledgerMove(ctx context.Context, logger *slog.Logger, item *queue.Item, status queue.Status) {
	if item == nil {
		return
	}
	if err := r.ledger.Transition(ctx, item.ID, status); err != nil {
		logger.Warn("ledger transition failed", "item_id", item.ID, "status", status, "error", err)
	}
}

func (r *Runner) ledgerFail(ctx context.Context, logger *slog.Logger, item *queue.Item, message string) {
	if item == nil {
		return
	}
	if err := r.ledger.MarkFailed(ctx, item.ID, message); err != nil {
		logger.Warn("ledger update failed", "item_id", item.ID, "error", err)
	}
}
