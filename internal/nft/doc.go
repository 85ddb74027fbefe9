// Package nft defines the shared domain types for backed-up collectibles:
// asset references, token metadata documents, and chain descriptors.
//
// An asset is identified by (chain id, contract address, token id). The
// serialized form "chainId:contract:tokenId" is the stable asset ID used by
// the manifest delta algorithm; it is unique within a manifest and does not
// depend on discovery order.
package nft
