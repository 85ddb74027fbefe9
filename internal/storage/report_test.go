package storage_test

import (
	"reflect"
	"testing"

	"tokenark/internal/nft"
	"tokenark/internal/storage"
)

func TestAnalyzeFullyDecentralized(t *testing.T) {
	meta := &nft.Metadata{
		Image:        "ipfs://" + sampleCIDv0,
		AnimationURL: "ar://tx456",
	}
	report := storage.Analyze("ipfs://"+sampleCIDv1, meta)

	if !report.IsFullyDecentralized {
		t.Fatal("expected fully decentralized report")
	}
	if len(report.AtRiskURLs) != 0 {
		t.Fatalf("expected no at-risk URLs, got %v", report.AtRiskURLs)
	}
	if report.Status() != storage.StatusDecentralized {
		t.Fatalf("Status = %q, want decentralized", report.Status())
	}
	if report.Image == nil || report.Animation == nil {
		t.Fatal("expected image and animation analyses to be present")
	}
}

func TestAnalyzeCollectsAtRiskURLsInOrder(t *testing.T) {
	meta := &nft.Metadata{
		Image:        "https://cdn.example.com/1.png",
		AnimationURL: "https://cdn.example.com/1.mp4",
	}
	report := storage.Analyze("https://api.example.com/token/1", meta)

	want := []string{
		"https://api.example.com/token/1",
		"https://cdn.example.com/1.png",
		"https://cdn.example.com/1.mp4",
	}
	if !reflect.DeepEqual(report.AtRiskURLs, want) {
		t.Fatalf("AtRiskURLs = %v, want %v", report.AtRiskURLs, want)
	}
	if report.IsFullyDecentralized {
		t.Fatal("report should not be fully decentralized")
	}
	if report.Status() != storage.StatusAtRisk {
		t.Fatalf("Status = %q, want at-risk", report.Status())
	}
}

func TestAnalyzeMixedStatus(t *testing.T) {
	meta := &nft.Metadata{Image: "https://cdn.example.com/1.png"}
	report := storage.Analyze("ipfs://"+sampleCIDv0, meta)

	if report.Status() != storage.StatusMixed {
		t.Fatalf("Status = %q, want mixed", report.Status())
	}
	if got := report.AtRiskURLs; len(got) != 1 || got[0] != "https://cdn.example.com/1.png" {
		t.Fatalf("AtRiskURLs = %v", got)
	}
}

func TestAnalyzeMissingTokenURIIsAtRisk(t *testing.T) {
	report := storage.Analyze("", nil)

	if report.IsFullyDecentralized {
		t.Fatal("missing token URI must not be fully decentralized")
	}
	if len(report.AtRiskURLs) != 1 {
		t.Fatalf("expected the missing token URI to be counted, got %v", report.AtRiskURLs)
	}
	if report.Image != nil || report.Animation != nil {
		t.Fatal("no metadata supplied, no sub-analyses expected")
	}
}

func TestAnalyzeSkipsAbsentMetadataFields(t *testing.T) {
	report := storage.Analyze("ipfs://"+sampleCIDv0, &nft.Metadata{Name: "no media"})
	if report.Image != nil || report.Animation != nil {
		t.Fatal("absent metadata URLs must not produce analyses")
	}
	if !report.IsFullyDecentralized {
		t.Fatal("token URI alone is decentralized")
	}
}
