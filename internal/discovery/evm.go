package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tokenark/internal/nft"
)

// evmOwnedNFT models one entry of an Alchemy-style getNFTs response.
type evmOwnedNFT struct {
	Contract struct {
		Address string `json:"address"`
	} `json:"contract"`
	ID struct {
		TokenID string `json:"tokenId"`
	} `json:"id"`
	Title    string `json:"title"`
	TokenURI struct {
		Raw     string `json:"raw"`
		Gateway string `json:"gateway"`
	} `json:"tokenUri"`
	Metadata *nft.Metadata `json:"metadata"`
}

type evmResponse struct {
	OwnedNFTs  []evmOwnedNFT `json:"ownedNfts"`
	TotalCount int           `json:"totalCount"`
}

// EVMProvider lists wallet holdings through an Alchemy-style NFT API.
type EVMProvider struct {
	chain      nft.Chain
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Provider = (*EVMProvider)(nil)

// NewEVMProvider creates a provider for one EVM chain.
func NewEVMProvider(chain nft.Chain, baseURL, apiKey string, opts ...Option) (*EVMProvider, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("evm indexer base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("evm indexer api key required")
	}
	options := applyOptions(opts)
	return &EVMProvider{
		chain:      chain,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: options.httpClient,
	}, nil
}

// Chain identifies the network this provider serves.
func (p *EVMProvider) Chain() nft.Chain { return p.chain }

// Assets fetches the wallet's holdings from the indexer.
func (p *EVMProvider) Assets(ctx context.Context, wallet string) ([]nft.DiscoveredAsset, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, errors.New("wallet address must not be empty")
	}
	endpoint, err := url.Parse(p.baseURL + "/" + p.apiKey + "/getNFTs")
	if err != nil {
		return nil, fmt.Errorf("parse indexer url: %w", err)
	}
	params := url.Values{}
	params.Set("owner", wallet)
	params.Set("withMetadata", "true")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := p.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indexer returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload evmResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode indexer response: %w", err)
	}

	assets := make([]nft.DiscoveredAsset, 0, len(payload.OwnedNFTs))
	for _, owned := range payload.OwnedNFTs {
		contract := strings.TrimSpace(owned.Contract.Address)
		tokenID := strings.TrimSpace(owned.ID.TokenID)
		if contract == "" || tokenID == "" {
			continue
		}
		assets = append(assets, nft.DiscoveredAsset{
			Ref: nft.AssetRef{
				ChainID:         p.chain.ID,
				ContractAddress: contract,
				TokenID:         tokenID,
			},
			Name:     strings.TrimSpace(owned.Title),
			TokenURI: strings.TrimSpace(owned.TokenURI.Raw),
			Metadata: owned.Metadata,
		})
	}
	return assets, nil
}
