package manifest

import "fmt"

// Entry records one asset's backup outcome within a manifest.
type Entry struct {
	ContractAddress   string `json:"contractAddress"`
	TokenID           string `json:"tokenId"`
	Name              string `json:"name,omitempty"`
	MetadataFile      string `json:"metadataFile,omitempty"`
	ImageFile         string `json:"imageFile,omitempty"`
	AnimationFile     string `json:"animationFile,omitempty"`
	StorageReportFile string `json:"storageReportFile,omitempty"`
	StorageStatus     string `json:"storageStatus"`
	Error             string `json:"error,omitempty"`
}

// Summary carries the per-run counts shown in listings.
type Summary struct {
	TotalNFTs          int `json:"totalNFTs"`
	FullyDecentralized int `json:"fullyDecentralized"`
	AtRisk             int `json:"atRisk"`
	BackedUp           int `json:"backedUp"`
	Failed             int `json:"failed"`
}

// Manifest is the authoritative backup record for one wallet on one chain.
type Manifest struct {
	WalletAddress string  `json:"walletAddress"`
	DisplayName   string  `json:"displayName,omitempty"`
	ChainName     string  `json:"chainName"`
	ChainID       int64   `json:"chainId"`
	BackupDate    string  `json:"backupDate"`
	Summary       Summary `json:"summary"`
	NFTs          []Entry `json:"nfts"`
}

// EntryID returns the stable asset identifier for an entry of this manifest.
func (m *Manifest) EntryID(e Entry) string {
	return fmt.Sprintf("%d:%s:%s", m.ChainID, e.ContractAddress, e.TokenID)
}

// RunSummary counts the delta categories of one run record.
type RunSummary struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

// RunRecord is the append-only log of one manifest write: the asset IDs
// added, updated, and removed relative to the previous manifest.
type RunRecord struct {
	RunID         string     `json:"runId"`
	WalletAddress string     `json:"walletAddress"`
	ChainName     string     `json:"chainName"`
	ChainID       int64      `json:"chainId"`
	Added         []string   `json:"added"`
	Updated       []string   `json:"updated"`
	Removed       []string   `json:"removed"`
	Summary       RunSummary `json:"summary"`
}

// IndexEntry points at one canonical manifest from the cross-wallet index.
type IndexEntry struct {
	Path          string `json:"path"`
	ChainName     string `json:"chainName"`
	ChainID       int64  `json:"chainId"`
	WalletAddress string `json:"walletAddress"`
	WalletName    string `json:"walletName,omitempty"`
	BackupDate    string `json:"backupDate"`
}

// Index is the directory of every canonical manifest under the store root.
type Index struct {
	Version     int          `json:"version"`
	GeneratedAt string       `json:"generatedAt"`
	Manifests   []IndexEntry `json:"manifests"`
}

// Bundle is the index plus full manifest contents, serialized for offline
// consumption without further filesystem or network access.
type Bundle struct {
	Version     int                  `json:"version"`
	GeneratedAt string               `json:"generatedAt"`
	Index       Index                `json:"index"`
	Manifests   map[string]*Manifest `json:"manifests"`
}
