package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokenark/internal/nft"
)

var tezosChain = nft.Chain{ID: 1729, Name: "tezos", Family: nft.FamilyTezos}

func TestTezosProviderAssets(t *testing.T) {
	var gotPath, gotAccount string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccount = r.URL.Query().Get("account")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
            {
                "token": {
                    "contract": {"address": "KT1abc"},
                    "tokenId": "42",
                    "metadata": {
                        "name": "Hills",
                        "description": "generative piece",
                        "artifactUri": "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/live.html",
                        "displayUri": "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/still.png"
                    }
                }
            },
            {
                "token": {
                    "contract": {"address": "KT1def"},
                    "tokenId": "7"
                }
            }
        ]`))
	}))
	defer server.Close()

	provider, err := NewTezosProvider(tezosChain, server.URL)
	if err != nil {
		t.Fatalf("NewTezosProvider: %v", err)
	}
	assets, err := provider.Assets(context.Background(), "tz1wallet")
	if err != nil {
		t.Fatalf("Assets: %v", err)
	}
	if gotPath != "/v1/tokens/balances" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotAccount != "tz1wallet" {
		t.Fatalf("expected account query tz1wallet, got %q", gotAccount)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}

	first := assets[0]
	if first.Ref.ID() != "1729:KT1abc:42" {
		t.Fatalf("unexpected asset id %q", first.Ref.ID())
	}
	if first.Name != "Hills" {
		t.Fatalf("unexpected name %q", first.Name)
	}
	if first.Metadata == nil {
		t.Fatal("expected converted metadata")
	}
	if first.Metadata.Image != "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/still.png" {
		t.Fatalf("expected display uri as image, got %q", first.Metadata.Image)
	}
	if first.Metadata.AnimationURL != "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/live.html" {
		t.Fatalf("expected artifact uri as animation, got %q", first.Metadata.AnimationURL)
	}

	second := assets[1]
	if second.Metadata != nil {
		t.Fatalf("entry without metadata should stay bare, got %+v", second.Metadata)
	}
}

func TestConvertTezosMetadataArtifactOnly(t *testing.T) {
	converted := convertTezosMetadata(&tezosMetadata{
		Name:        "Solo",
		ArtifactURI: "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/only.png",
	})
	if converted.Image != "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/only.png" {
		t.Fatalf("artifact uri should become the image when no display uri, got %q", converted.Image)
	}
	if converted.AnimationURL != "" {
		t.Fatalf("no separate animation expected, got %q", converted.AnimationURL)
	}
}

func TestTezosProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider, err := NewTezosProvider(tezosChain, server.URL)
	if err != nil {
		t.Fatalf("NewTezosProvider: %v", err)
	}
	if _, err := provider.Assets(context.Background(), "tz1wallet"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
