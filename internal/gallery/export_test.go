package gallery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tokenark/internal/manifest"
)

func writeAssetFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("content of "+rel), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func seedArchive(t *testing.T, root string) *manifest.Store {
	t.Helper()
	store := manifest.NewStore(root)
	m := &manifest.Manifest{
		WalletAddress: "0xwallet",
		ChainName:     "ethereum",
		ChainID:       1,
		BackupDate:    "2026-08-30T10:00:00Z",
		NFTs: []manifest.Entry{
			{
				ContractAddress:   "0xabc",
				TokenID:           "7",
				MetadataFile:      "assets/ethereum/0xwallet/0xabc_7/metadata.json",
				ImageFile:         "assets/ethereum/0xwallet/0xabc_7/image.png",
				StorageReportFile: "assets/ethereum/0xwallet/0xabc_7/storage-report.json",
				StorageStatus:     "decentralized",
			},
		},
	}
	writeAssetFile(t, root, m.NFTs[0].MetadataFile)
	writeAssetFile(t, root, m.NFTs[0].ImageFile)
	writeAssetFile(t, root, m.NFTs[0].StorageReportFile)
	if _, err := store.WriteWithHistory("ethereum", "0xwallet", m); err != nil {
		t.Fatalf("WriteWithHistory: %v", err)
	}
	return store
}

func TestExportCopiesArchive(t *testing.T) {
	root := t.TempDir()
	store := seedArchive(t, root)
	dest := filepath.Join(t.TempDir(), "export")

	exporter := NewExporter(store, WithWorkers(2))
	result, err := exporter.Export(context.Background(), dest)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(result.Missing) != 0 {
		t.Fatalf("expected no missing files, got %v", result.Missing)
	}
	// Index, bundle, one manifest, three asset files.
	if result.FilesCopied != 6 {
		t.Fatalf("expected 6 files copied, got %d", result.FilesCopied)
	}

	expected := []string{
		"manifests/index.json",
		"manifests/gallery-data.json",
		"manifests/manifest.ethereum.0xwallet.json",
		"assets/ethereum/0xwallet/0xabc_7/metadata.json",
		"assets/ethereum/0xwallet/0xabc_7/image.png",
		"assets/ethereum/0xwallet/0xabc_7/storage-report.json",
	}
	for _, rel := range expected {
		if _, err := os.Stat(filepath.Join(dest, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("expected exported file %s: %v", rel, err)
		}
	}
}

func TestExportReportsMissingFiles(t *testing.T) {
	root := t.TempDir()
	store := seedArchive(t, root)
	if err := os.Remove(filepath.Join(root, "assets/ethereum/0xwallet/0xabc_7/image.png")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	exporter := NewExporter(store)
	result, err := exporter.Export(context.Background(), filepath.Join(t.TempDir(), "export"))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "assets/ethereum/0xwallet/0xabc_7/image.png" {
		t.Fatalf("expected one missing file, got %v", result.Missing)
	}
	if result.FilesCopied != 5 {
		t.Fatalf("expected 5 files copied, got %d", result.FilesCopied)
	}
}

func TestExportWithoutBundle(t *testing.T) {
	store := manifest.NewStore(t.TempDir())
	exporter := NewExporter(store)
	if _, err := exporter.Export(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected error when no bundle exists")
	}
}
