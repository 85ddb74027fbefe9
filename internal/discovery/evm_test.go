package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tokenark/internal/nft"
)

var evmChain = nft.Chain{ID: 1, Name: "ethereum", Family: nft.FamilyEVM}

func TestEVMProviderAssets(t *testing.T) {
	var gotPath, gotOwner string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOwner = r.URL.Query().Get("owner")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
            "ownedNfts": [
                {
                    "contract": {"address": "0xabc"},
                    "id": {"tokenId": "7"},
                    "title": "First Piece",
                    "tokenUri": {"raw": "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/7.json"},
                    "metadata": {"name": "First Piece", "image": "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/7.png"}
                },
                {
                    "contract": {"address": ""},
                    "id": {"tokenId": "8"}
                }
            ],
            "totalCount": 2
        }`))
	}))
	defer server.Close()

	provider, err := NewEVMProvider(evmChain, server.URL, "test-key")
	if err != nil {
		t.Fatalf("NewEVMProvider: %v", err)
	}
	assets, err := provider.Assets(context.Background(), "0xwallet")
	if err != nil {
		t.Fatalf("Assets: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/test-key/getNFTs") {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotOwner != "0xwallet" {
		t.Fatalf("expected owner query 0xwallet, got %q", gotOwner)
	}
	if len(assets) != 1 {
		t.Fatalf("expected 1 asset after skipping incomplete entry, got %d", len(assets))
	}
	asset := assets[0]
	if asset.Ref.ID() != "1:0xabc:7" {
		t.Fatalf("unexpected asset id %q", asset.Ref.ID())
	}
	if asset.Name != "First Piece" {
		t.Fatalf("unexpected asset name %q", asset.Name)
	}
	if !strings.HasPrefix(asset.TokenURI, "ipfs://") {
		t.Fatalf("expected raw token uri, got %q", asset.TokenURI)
	}
	if asset.Metadata == nil || asset.Metadata.Image == "" {
		t.Fatalf("expected indexer metadata to be carried through: %+v", asset.Metadata)
	}
}

func TestEVMProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	provider, err := NewEVMProvider(evmChain, server.URL, "test-key")
	if err != nil {
		t.Fatalf("NewEVMProvider: %v", err)
	}
	if _, err := provider.Assets(context.Background(), "0xwallet"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestEVMProviderRequiresWallet(t *testing.T) {
	provider, err := NewEVMProvider(evmChain, "https://example.test", "test-key")
	if err != nil {
		t.Fatalf("NewEVMProvider: %v", err)
	}
	if _, err := provider.Assets(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank wallet")
	}
}

func TestNewEVMProviderValidation(t *testing.T) {
	if _, err := NewEVMProvider(evmChain, "", "key"); err == nil {
		t.Fatal("expected error for missing base url")
	}
	if _, err := NewEVMProvider(evmChain, "https://example.test", ""); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
