package storage_test

import (
	"strings"
	"testing"

	"tokenark/internal/storage"
)

const (
	sampleCIDv0 = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	sampleCIDv1 = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
)

func TestClassifyURLIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a url at all",
		"://missing-scheme",
		"http://",
		"ftp://weird.example/thing",
		"\x00\x01binary",
		strings.Repeat("a", 4096),
	}
	for _, input := range inputs {
		analysis := storage.ClassifyURL(input)
		if analysis.Type == "" {
			t.Errorf("ClassifyURL(%q) produced empty type", input)
		}
	}
}

func TestClassifyURLEmptyIsAtRisk(t *testing.T) {
	analysis := storage.ClassifyURL("")
	if analysis.Type != storage.TypeCentralized || !analysis.IsAtRisk {
		t.Fatalf("empty URL: got %+v, want centralized/at-risk", analysis)
	}
}

func TestClassifyURLSchemes(t *testing.T) {
	cases := []struct {
		url      string
		wantType storage.Type
		atRisk   bool
	}{
		{"data:application/json;base64,eyJuYW1lIjoieCJ9", storage.TypeDataURI, false},
		{"ipfs://" + sampleCIDv0, storage.TypeIPFS, false},
		{"ipfs://" + sampleCIDv0 + "/metadata.json", storage.TypeIPFS, false},
		{"ar://abc123xyz", storage.TypeArweave, false},
		{"https://example.com/ipfs/" + sampleCIDv0, storage.TypeIPFS, false},
		{"https://example.com/ipfs/" + sampleCIDv1 + "/1.json", storage.TypeIPFS, false},
		{sampleCIDv0, storage.TypeIPFS, false},
		{sampleCIDv1, storage.TypeIPFS, false},
		{"https://api.example.com/token/1", storage.TypeCentralized, true},
	}
	for _, tc := range cases {
		analysis := storage.ClassifyURL(tc.url)
		if analysis.Type != tc.wantType {
			t.Errorf("ClassifyURL(%q).Type = %q, want %q", tc.url, analysis.Type, tc.wantType)
		}
		if analysis.IsAtRisk != tc.atRisk {
			t.Errorf("ClassifyURL(%q).IsAtRisk = %v, want %v", tc.url, analysis.IsAtRisk, tc.atRisk)
		}
		if analysis.OriginalURL != tc.url {
			t.Errorf("ClassifyURL(%q) did not preserve original URL (got %q)", tc.url, analysis.OriginalURL)
		}
	}
}

func TestClassifyURLKnownGatewayHosts(t *testing.T) {
	cases := []struct {
		url      string
		wantType storage.Type
		wantHost string
	}{
		{"https://ipfs.io/something", storage.TypeIPFS, "ipfs.io"},
		{"https://bafybeigdyrzt.ipfs.dweb.link/1.png", storage.TypeIPFS, "bafybeigdyrzt.ipfs.dweb.link"},
		{"https://gateway.pinata.cloud/files/1", storage.TypeIPFS, "gateway.pinata.cloud"},
		{"https://arweave.net/tx123", storage.TypeArweave, "arweave.net"},
		{"https://cdn.arweave.net/tx123", storage.TypeArweave, "cdn.arweave.net"},
	}
	for _, tc := range cases {
		analysis := storage.ClassifyURL(tc.url)
		if analysis.Type != tc.wantType {
			t.Errorf("ClassifyURL(%q).Type = %q, want %q", tc.url, analysis.Type, tc.wantType)
		}
		if analysis.IsAtRisk {
			t.Errorf("ClassifyURL(%q) flagged at risk", tc.url)
		}
		if analysis.Host != tc.wantHost {
			t.Errorf("ClassifyURL(%q).Host = %q, want %q", tc.url, analysis.Host, tc.wantHost)
		}
	}
}

func TestClassifyURLDoesNotMatchLookalikeHosts(t *testing.T) {
	analysis := storage.ClassifyURL("https://notipfs.io/token/1")
	if analysis.Type != storage.TypeCentralized {
		t.Fatalf("lookalike host classified as %q", analysis.Type)
	}
	if analysis.Host != "notipfs.io" {
		t.Fatalf("expected host retained, got %q", analysis.Host)
	}
}

func TestClassifyURLRawCIDRequiresFullMatch(t *testing.T) {
	// Too short for CIDv0, not a URL either.
	analysis := storage.ClassifyURL("QmTooShort")
	if analysis.Type != storage.TypeCentralized || !analysis.IsAtRisk {
		t.Fatalf("short CID-like string: got %+v", analysis)
	}
}

func TestIPFSPath(t *testing.T) {
	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"ipfs://" + sampleCIDv0, sampleCIDv0, true},
		{"ipfs://" + sampleCIDv0 + "/meta.json", sampleCIDv0 + "/meta.json", true},
		{"https://ipfs.io/ipfs/" + sampleCIDv0, sampleCIDv0, true},
		{"https://host.example/ipfs/" + sampleCIDv1 + "/img.png?x=1", sampleCIDv1 + "/img.png", true},
		{sampleCIDv0, sampleCIDv0, true},
		{"https://example.com/token/1", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := storage.IPFSPath(tc.url)
		if ok != tc.ok || got != tc.want {
			t.Errorf("IPFSPath(%q) = (%q, %v), want (%q, %v)", tc.url, got, ok, tc.want, tc.ok)
		}
	}
}
