package services

import "context"

type contextKey string

const (
	walletKey    contextKey = "wallet"
	chainKey     contextKey = "chain"
	assetIDKey   contextKey = "asset_id"
	requestIDKey contextKey = "request_id"
)

// WithWallet annotates context with the wallet address being backed up.
func WithWallet(ctx context.Context, wallet string) context.Context {
	if wallet == "" {
		return ctx
	}
	return context.WithValue(ctx, walletKey, wallet)
}

// WalletFromContext extracts the wallet address if present.
func WalletFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(walletKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithChain annotates context with the chain name.
func WithChain(ctx context.Context, chain string) context.Context {
	if chain == "" {
		return ctx
	}
	return context.WithValue(ctx, chainKey, chain)
}

// ChainFromContext returns the chain name if present.
func ChainFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(chainKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithAssetID annotates context with the stable asset identifier.
func WithAssetID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, assetIDKey, id)
}

// AssetIDFromContext extracts the asset identifier if present.
func AssetIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(assetIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier for one run.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
