package nft

import (
	"fmt"
	"strings"
)

// AssetRef identifies one collectible on one chain.
type AssetRef struct {
	ChainID         int64
	ContractAddress string
	TokenID         string
}

// ID returns the stable asset identifier "chainId:contract:tokenId".
func (r AssetRef) ID() string {
	return fmt.Sprintf("%d:%s:%s", r.ChainID, r.ContractAddress, r.TokenID)
}

// Attribute is a single trait entry from a token metadata document.
type Attribute struct {
	TraitType string `json:"trait_type,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// Metadata is the token-level metadata document as served by the token URI.
// Field names follow the common ERC-721/ERC-1155 metadata convention.
type Metadata struct {
	Name         string      `json:"name,omitempty"`
	Description  string      `json:"description,omitempty"`
	Image        string      `json:"image,omitempty"`
	AnimationURL string      `json:"animation_url,omitempty"`
	ExternalURL  string      `json:"external_url,omitempty"`
	Attributes   []Attribute `json:"attributes,omitempty"`
}

// DiscoveredAsset pairs an asset reference with whatever the discovery
// provider already fetched for it. Metadata may be nil when the provider
// only returned the token URI.
type DiscoveredAsset struct {
	Ref      AssetRef
	Name     string
	TokenURI string
	Metadata *Metadata
}

// DisplayName returns the best human-readable name for the asset.
func (a DiscoveredAsset) DisplayName() string {
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	if a.Metadata != nil {
		if name := strings.TrimSpace(a.Metadata.Name); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%s #%s", a.Ref.ContractAddress, a.Ref.TokenID)
}
