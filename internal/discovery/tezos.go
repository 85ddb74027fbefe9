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

// tezosBalance models one entry of a TzKT token balance response.
type tezosBalance struct {
	Token struct {
		Contract struct {
			Address string `json:"address"`
		} `json:"contract"`
		TokenID  string         `json:"tokenId"`
		Metadata *tezosMetadata `json:"metadata"`
	} `json:"token"`
}

// tezosMetadata follows the TZIP-21 naming convention, which differs
// from the ERC-721 one in how it labels image and media fields.
type tezosMetadata struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ArtifactURI  string `json:"artifactUri"`
	DisplayURI   string `json:"displayUri"`
	ThumbnailURI string `json:"thumbnailUri"`
}

// TezosProvider lists wallet holdings through the TzKT API.
type TezosProvider struct {
	chain      nft.Chain
	baseURL    string
	httpClient *http.Client
}

var _ Provider = (*TezosProvider)(nil)

// NewTezosProvider creates a provider for a Tezos network.
func NewTezosProvider(chain nft.Chain, baseURL string, opts ...Option) (*TezosProvider, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tzkt base url required")
	}
	options := applyOptions(opts)
	return &TezosProvider{
		chain:      chain,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: options.httpClient,
	}, nil
}

// Chain identifies the network this provider serves.
func (p *TezosProvider) Chain() nft.Chain { return p.chain }

// Assets fetches the wallet's token balances from TzKT.
func (p *TezosProvider) Assets(ctx context.Context, wallet string) ([]nft.DiscoveredAsset, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, errors.New("wallet address must not be empty")
	}
	endpoint, err := url.Parse(p.baseURL + "/v1/tokens/balances")
	if err != nil {
		return nil, fmt.Errorf("parse tzkt url: %w", err)
	}
	params := url.Values{}
	params.Set("account", wallet)
	params.Set("balance.ne", "0")
	params.Set("token.standard", "fa2")
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
		return nil, fmt.Errorf("tzkt returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var balances []tezosBalance
	if err := json.NewDecoder(resp.Body).Decode(&balances); err != nil {
		return nil, fmt.Errorf("decode tzkt response: %w", err)
	}

	assets := make([]nft.DiscoveredAsset, 0, len(balances))
	for _, balance := range balances {
		contract := strings.TrimSpace(balance.Token.Contract.Address)
		tokenID := strings.TrimSpace(balance.Token.TokenID)
		if contract == "" || tokenID == "" {
			continue
		}
		asset := nft.DiscoveredAsset{
			Ref: nft.AssetRef{
				ChainID:         p.chain.ID,
				ContractAddress: contract,
				TokenID:         tokenID,
			},
		}
		if meta := balance.Token.Metadata; meta != nil {
			asset.Name = strings.TrimSpace(meta.Name)
			asset.Metadata = convertTezosMetadata(meta)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// convertTezosMetadata maps TZIP-21 fields onto the common metadata
// shape: displayUri is the still image and artifactUri the full media,
// matching how galleries present Tezos tokens.
func convertTezosMetadata(meta *tezosMetadata) *nft.Metadata {
	converted := &nft.Metadata{
		Name:        strings.TrimSpace(meta.Name),
		Description: strings.TrimSpace(meta.Description),
	}
	display := strings.TrimSpace(meta.DisplayURI)
	artifact := strings.TrimSpace(meta.ArtifactURI)
	if display != "" {
		converted.Image = display
	} else if artifact != "" {
		converted.Image = artifact
	}
	if artifact != "" && artifact != converted.Image {
		converted.AnimationURL = artifact
	}
	return converted
}
