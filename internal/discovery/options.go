package discovery

import (
	"net/http"
	"time"
)

type clientOptions struct {
	httpClient *http.Client
}

// Option configures a provider.
type Option func(*clientOptions)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func applyOptions(opts []Option) clientOptions {
	options := clientOptions{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
