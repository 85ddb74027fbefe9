package backup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"tokenark/internal/config"
	"tokenark/internal/manifest"
	"tokenark/internal/queue"
	"tokenark/internal/services"
	"tokenark/internal/storage"
	"tokenark/internal/testsupport"
)

const (
	testWallet = "0x1234567890abcdef1234567890abcdef12345678"
	testCID    = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
)

// newBackupFixture wires an indexer and a gateway test server into a config.
func newBackupFixture(t *testing.T, opts ...testsupport.ConfigOption) (*config.Config, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/test/getNFTs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
            "ownedNfts": [
                {
                    "contract": {"address": "0xabc"},
                    "id": {"tokenId": "7"},
                    "title": "Piece Seven",
                    "tokenUri": {"raw": "ipfs://` + testCID + `/7.json"}
                }
            ],
            "totalCount": 1
        }`))
	})
	mux.HandleFunc("/ipfs/"+testCID+"/7.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
            "name": "Piece Seven",
            "image": "ipfs://` + testCID + `/7.png"
        }`))
	})
	mux.HandleFunc("/ipfs/"+testCID+"/7.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	opts = append([]testsupport.ConfigOption{
		testsupport.WithGateways(server.URL + "/ipfs/"),
		testsupport.WithChains(config.Chain{ID: 1, Name: "ethereum", Family: "evm"}),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.EVM.BaseURL = server.URL
	cfg.Download.MaxRetries = 1
	return cfg, server
}

func TestRunBacksUpWallet(t *testing.T) {
	cfg, _ := newBackupFixture(t)

	runner, err := NewRunner(cfg, WithRunID(func() string { return "run-test" }))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	outcome, err := runner.Run(context.Background(), testWallet, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.RunID != "run-test" {
		t.Fatalf("unexpected run id %q", outcome.RunID)
	}
	if outcome.WalletAddress != testWallet {
		t.Fatalf("unexpected wallet %q", outcome.WalletAddress)
	}
	if len(outcome.Chains) != 1 {
		t.Fatalf("expected 1 chain outcome, got %d", len(outcome.Chains))
	}
	chain := outcome.Chains[0]
	if chain.Err != nil {
		t.Fatalf("chain failed: %v", chain.Err)
	}
	if chain.Summary.TotalNFTs != 1 || chain.Summary.BackedUp != 1 || chain.Summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", chain.Summary)
	}
	if chain.Summary.FullyDecentralized != 1 {
		t.Fatalf("expected fully decentralized asset, got %+v", chain.Summary)
	}

	store := manifest.NewStore(cfg.Paths.OutputDir)
	m, err := store.LoadManifestFile(chain.ManifestPath)
	if err != nil {
		t.Fatalf("LoadManifestFile: %v", err)
	}
	if len(m.NFTs) != 1 {
		t.Fatalf("expected 1 manifest entry, got %d", len(m.NFTs))
	}
	entry := m.NFTs[0]
	if entry.StorageStatus != string(storage.StatusDecentralized) {
		t.Fatalf("unexpected storage status %q", entry.StorageStatus)
	}
	if entry.Error != "" {
		t.Fatalf("unexpected entry error %q", entry.Error)
	}
	for _, rel := range []string{entry.MetadataFile, entry.ImageFile, entry.StorageReportFile} {
		if rel == "" {
			t.Fatalf("expected all file references populated: %+v", entry)
		}
		if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("referenced file missing: %v", err)
		}
	}
	if !strings.HasSuffix(entry.ImageFile, ".png") {
		t.Fatalf("expected png extension from content type, got %q", entry.ImageFile)
	}

	items, err := runner.ledger.ListByRun(context.Background(), "run-test")
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(items) != 1 || items[0].Status != queue.StatusCompleted {
		t.Fatalf("expected one completed ledger item, got %+v", items)
	}
}

func TestRunRecordsPerAssetFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/test/getNFTs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
            "ownedNfts": [
                {
                    "contract": {"address": "0xabc"},
                    "id": {"tokenId": "9"},
                    "tokenUri": {"raw": "ipfs://` + testCID + `/9.json"}
                }
            ]
        }`))
	})
	mux.HandleFunc("/ipfs/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithGateways(server.URL+"/ipfs/"),
		testsupport.WithChains(config.Chain{ID: 1, Name: "ethereum", Family: "evm"}))
	cfg.EVM.BaseURL = server.URL
	cfg.Download.MaxRetries = 1

	runner, err := NewRunner(cfg, WithRunID(func() string { return "run-fail" }))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	outcome, err := runner.Run(context.Background(), testWallet, []string{"ethereum"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	chain := outcome.Chains[0]
	if chain.Err != nil {
		t.Fatalf("per-asset failures must not fail the chain: %v", chain.Err)
	}
	if chain.Summary.Failed != 1 || chain.Summary.BackedUp != 0 {
		t.Fatalf("unexpected summary: %+v", chain.Summary)
	}
	if chain.ManifestPath == "" {
		t.Fatal("manifest should be written despite asset failures")
	}

	store := manifest.NewStore(cfg.Paths.OutputDir)
	m, err := store.LoadManifestFile(chain.ManifestPath)
	if err != nil {
		t.Fatalf("LoadManifestFile: %v", err)
	}
	if m.NFTs[0].Error == "" {
		t.Fatal("expected entry error to be recorded")
	}
	// The token URI is still classified even when fetching it failed.
	if m.NFTs[0].StorageStatus != string(storage.StatusDecentralized) {
		t.Fatalf("unexpected storage status %q", m.NFTs[0].StorageStatus)
	}

	items, err := runner.ledger.ListByRun(context.Background(), "run-fail")
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(items) != 1 || items[0].Status != queue.StatusFailed {
		t.Fatalf("expected one failed ledger item, got %+v", items)
	}
}

func TestRunAtRiskOnlySkipsSafeMedia(t *testing.T) {
	cfg, _ := newBackupFixture(t, testsupport.WithAtRiskOnly())

	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	outcome, err := runner.Run(context.Background(), testWallet, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	chain := outcome.Chains[0]
	if chain.Err != nil {
		t.Fatalf("chain failed: %v", chain.Err)
	}

	store := manifest.NewStore(cfg.Paths.OutputDir)
	m, err := store.LoadManifestFile(chain.ManifestPath)
	if err != nil {
		t.Fatalf("LoadManifestFile: %v", err)
	}
	entry := m.NFTs[0]
	if entry.ImageFile != "" {
		t.Fatalf("safely stored image should be skipped, got %q", entry.ImageFile)
	}
	if entry.MetadataFile == "" || entry.StorageReportFile == "" {
		t.Fatalf("metadata and report are always kept: %+v", entry)
	}
}

func TestRunDiscoveryFailureMarksChain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithChains(config.Chain{ID: 1, Name: "ethereum", Family: "evm"}))
	cfg.EVM.BaseURL = server.URL

	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	outcome, err := runner.Run(context.Background(), testWallet, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Failed() {
		t.Fatal("expected run to report the chain failure")
	}
	if outcome.Chains[0].Err == nil {
		t.Fatal("expected chain error")
	}
	if outcome.Chains[0].ManifestPath != "" {
		t.Fatal("no manifest should be written when discovery fails")
	}
}

func TestRunLogsCarryContextFields(t *testing.T) {
	cfg, _ := newBackupFixture(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	runner, err := NewRunner(cfg, WithLogger(logger), WithRunID(func() string { return "run-ctx" }))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	if _, err := runner.Run(context.Background(), testWallet, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"correlation_id=run-ctx",
		"wallet=" + testWallet,
		"chain=ethereum",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestRunAbortsOnConfigurationError(t *testing.T) {
	cfg, _ := newBackupFixture(t)
	// A chain with an unsupported family fails provider construction, which
	// is a configuration error. The run must stop before the healthy chain.
	cfg.Chains = append([]config.Chain{{ID: 99, Name: "badchain", Family: "carrierpigeon"}}, cfg.Chains...)

	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	outcome, err := runner.Run(context.Background(), testWallet, nil)
	if err == nil {
		t.Fatal("expected the run to abort")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(outcome.Chains) != 1 {
		t.Fatalf("expected no further chains after the abort, got %d", len(outcome.Chains))
	}
}

func TestRunRejectsUnknownChain(t *testing.T) {
	cfg, _ := newBackupFixture(t)
	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	if _, err := runner.Run(context.Background(), testWallet, []string{"moonchain"}); err == nil {
		t.Fatal("expected error for undeclared chain")
	}
}

func TestRunLockContention(t *testing.T) {
	cfg, _ := newBackupFixture(t)
	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	other := flock.New(filepath.Join(cfg.Paths.LogDir, "tokenark.lock"))
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("acquire competing lock: locked=%v err=%v", locked, err)
	}
	defer func() {
		_ = other.Unlock()
	}()

	if _, err := runner.Run(context.Background(), testWallet, nil); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestDecodeDataURI(t *testing.T) {
	base64Doc := "data:application/json;base64,eyJuYW1lIjoiSW5saW5lIn0="
	decoded, err := decodeDataURI(base64Doc)
	if err != nil {
		t.Fatalf("decodeDataURI: %v", err)
	}
	if string(decoded) != `{"name":"Inline"}` {
		t.Fatalf("unexpected payload %q", decoded)
	}

	plainDoc := "data:application/json,%7B%22name%22%3A%22Plain%22%7D"
	decoded, err = decodeDataURI(plainDoc)
	if err != nil {
		t.Fatalf("decodeDataURI: %v", err)
	}
	if string(decoded) != `{"name":"Plain"}` {
		t.Fatalf("unexpected payload %q", decoded)
	}

	if _, err := decodeDataURI("data:application/json"); err == nil {
		t.Fatal("expected error for missing payload")
	}
}
