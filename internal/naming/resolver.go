package naming

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"tokenark/internal/config"
	"tokenark/internal/services"
)

var (
	evmAddressPattern   = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	tezosAddressPattern = regexp.MustCompile(`^(tz1|tz2|tz3|KT1)[1-9A-HJ-NP-Za-km-z]{33}$`)
)

// IsAddress reports whether the input is already a literal wallet address.
func IsAddress(input string) bool {
	input = strings.TrimSpace(input)
	return evmAddressPattern.MatchString(input) || tezosAddressPattern.MatchString(input)
}

// Resolver maps a wallet identifier to a concrete address.
type Resolver interface {
	// Resolve returns the address for the input along with the display
	// name that produced it. Literal addresses resolve to themselves
	// with an empty display name.
	Resolve(ctx context.Context, input string) (address, displayName string, err error)
}

// HTTPResolver resolves names through an ENS resolution endpoint.
type HTTPResolver struct {
	baseURL    string
	enabled    bool
	httpClient *http.Client
}

var _ Resolver = (*HTTPResolver)(nil)

// Option configures an HTTPResolver.
type Option func(*HTTPResolver)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *HTTPResolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// NewResolver builds a resolver from configuration.
func NewResolver(cfg *config.Config, opts ...Option) *HTTPResolver {
	resolver := &HTTPResolver{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.Naming.BaseURL), "/"),
		enabled:    cfg.Naming.Enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

type resolveResponse struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Resolve maps a wallet identifier to an address.
func (r *HTTPResolver) Resolve(ctx context.Context, input string) (string, string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", services.Wrap(services.ErrValidation, "naming", "resolve", "wallet identifier must not be empty", nil)
	}
	if IsAddress(input) {
		return input, "", nil
	}
	if !r.enabled {
		return "", "", services.Wrap(services.ErrValidation, "naming", "resolve",
			fmt.Sprintf("%q is not an address and name resolution is disabled", input), nil)
	}
	if r.baseURL == "" {
		return "", "", services.Wrap(services.ErrConfiguration, "naming", "resolve", "resolution endpoint not configured", nil)
	}

	endpoint := r.baseURL + "/" + url.PathEscape(input)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("name resolution returned %d for %q", resp.StatusCode, input)
	}

	var payload resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", fmt.Errorf("decode resolution response: %w", err)
	}
	address := strings.TrimSpace(payload.Address)
	if address == "" {
		return "", "", services.Wrap(services.ErrNotFound, "naming", "resolve",
			fmt.Sprintf("no address found for %q", input), nil)
	}
	return address, strings.TrimSpace(payload.Name), nil
}
