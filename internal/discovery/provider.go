package discovery

import (
	"context"
	"fmt"

	"tokenark/internal/config"
	"tokenark/internal/nft"
	"tokenark/internal/services"
)

// Provider lists the assets a wallet owns on one chain.
type Provider interface {
	// Chain identifies the network this provider serves.
	Chain() nft.Chain
	// Assets returns every collectible the wallet currently holds.
	Assets(ctx context.Context, wallet string) ([]nft.DiscoveredAsset, error)
}

// NewProvider builds the provider for a configured chain.
func NewProvider(cfg *config.Config, chain nft.Chain, opts ...Option) (Provider, error) {
	switch chain.Family {
	case nft.FamilyEVM:
		return NewEVMProvider(chain, cfg.EVM.BaseURL, cfg.EVM.APIKey, opts...)
	case nft.FamilyTezos:
		return NewTezosProvider(chain, cfg.Tezos.BaseURL, opts...)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "discovery", "new_provider",
			fmt.Sprintf("no provider for chain family %q", chain.Family), nil)
	}
}
