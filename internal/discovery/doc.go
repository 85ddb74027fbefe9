// Package discovery enumerates the collectibles a wallet owns.
//
// Each supported chain family has a provider that talks to a public
// indexer API: EVM chains use an Alchemy-style NFT endpoint, Tezos uses
// TzKT. Providers return DiscoveredAsset values with whatever metadata
// the indexer already resolved, so callers can often skip re-fetching
// the token metadata document.
package discovery
