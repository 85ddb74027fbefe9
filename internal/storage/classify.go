package storage

import (
	"net/url"
	"regexp"
	"strings"
)

// Type identifies where the bytes behind a URL live.
type Type string

const (
	TypeIPFS        Type = "ipfs"
	TypeArweave     Type = "arweave"
	TypeDataURI     Type = "data-uri"
	TypeCentralized Type = "centralized"
)

// Analysis is the classification of a single URL.
type Analysis struct {
	Type        Type   `json:"type"`
	IsAtRisk    bool   `json:"isAtRisk"`
	OriginalURL string `json:"originalUrl"`
	Host        string `json:"host,omitempty"`
}

// ipfsGatewayHosts lists known public IPFS gateway hostnames. A URL whose
// host equals one of these, or is a subdomain of one (CID-subdomain
// gateways), is content-addressed even though it is served over HTTP.
var ipfsGatewayHosts = []string{
	"ipfs.io",
	"dweb.link",
	"cloudflare-ipfs.com",
	"cf-ipfs.com",
	"gateway.pinata.cloud",
	"nftstorage.link",
	"w3s.link",
	"4everland.io",
	"ipfs.infura.io",
	"hardbin.com",
}

// arweaveGatewayHosts lists known Arweave gateway hostnames.
var arweaveGatewayHosts = []string{
	"arweave.net",
	"arweave.dev",
	"ar-io.net",
	"g8way.io",
}

var (
	// ipfsPathPattern matches an /ipfs/<cid> segment anywhere in a URL,
	// capturing the CID together with any subpath that follows it.
	ipfsPathPattern = regexp.MustCompile(`/ipfs/((?:Qm[A-Za-z0-9]+|bafy[A-Za-z0-9]+)(?:/[^?#]*)?)`)

	// rawCIDv0Pattern matches a bare CIDv0 (Qm + 44 base58 characters).
	rawCIDv0Pattern = regexp.MustCompile(`^Qm[1-9A-HJ-NP-Za-km-z]{44}$`)

	// rawCIDv1Pattern matches a bare base32 CIDv1 (bafy prefix).
	rawCIDv1Pattern = regexp.MustCompile(`^bafy[a-z2-7]{55,}$`)
)

// ClassifyURL classifies a single URL. It is total: any input, including
// empty strings and unparsable garbage, yields a verdict rather than an
// error. Unknown or unparsable input defaults to centralized/at-risk.
func ClassifyURL(raw string) Analysis {
	analysis := Analysis{OriginalURL: raw}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		analysis.Type = TypeCentralized
		analysis.IsAtRisk = true
		return analysis
	}

	switch {
	case strings.HasPrefix(trimmed, "data:"):
		// Content is embedded in the URI itself; there is nothing to lose.
		analysis.Type = TypeDataURI
		return analysis
	case strings.HasPrefix(trimmed, "ipfs://"):
		analysis.Type = TypeIPFS
		return analysis
	case strings.HasPrefix(trimmed, "ar://"):
		analysis.Type = TypeArweave
		return analysis
	}

	if ipfsPathPattern.MatchString(trimmed) {
		analysis.Type = TypeIPFS
		return analysis
	}
	if rawCIDv0Pattern.MatchString(trimmed) || rawCIDv1Pattern.MatchString(trimmed) {
		analysis.Type = TypeIPFS
		return analysis
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Hostname() == "" {
		analysis.Type = TypeCentralized
		analysis.IsAtRisk = true
		return analysis
	}

	host := strings.ToLower(parsed.Hostname())
	if hostMatchesAny(host, ipfsGatewayHosts) {
		analysis.Type = TypeIPFS
		analysis.Host = host
		return analysis
	}
	if hostMatchesAny(host, arweaveGatewayHosts) {
		analysis.Type = TypeArweave
		analysis.Host = host
		return analysis
	}

	analysis.Type = TypeCentralized
	analysis.IsAtRisk = true
	analysis.Host = host
	return analysis
}

// IPFSPath extracts the CID (plus any subpath) from a URL that references
// IPFS content, either via the ipfs:// scheme or an /ipfs/<cid> gateway
// path. The returned string is suitable for appending to a gateway base URL.
func IPFSPath(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(trimmed, "ipfs://"); ok {
		rest = strings.TrimPrefix(rest, "ipfs/")
		if rest != "" {
			return rest, true
		}
		return "", false
	}
	if match := ipfsPathPattern.FindStringSubmatch(trimmed); match != nil {
		return match[1], true
	}
	if rawCIDv0Pattern.MatchString(trimmed) || rawCIDv1Pattern.MatchString(trimmed) {
		return trimmed, true
	}
	return "", false
}

func hostMatchesAny(host string, candidates []string) bool {
	for _, candidate := range candidates {
		if host == candidate || strings.HasSuffix(host, "."+candidate) {
			return true
		}
	}
	return false
}
