package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tokenark/internal/config"
	"tokenark/internal/logging"
	"tokenark/internal/storage"
)

const (
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultAttemptTimeout = 30 * time.Second
)

// Result describes a completed download. Size is the Content-Length the
// server reported, zero when the header was absent; it is not remeasured
// from the bytes written.
type Result struct {
	Path string
	Size int64
}

// Client downloads assets with gateway substitution and retry.
type Client struct {
	gateways       []string
	httpClient     *http.Client
	node           NodeFetcher
	maxRetries     int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	attemptTimeout time.Duration
	sleeper        func(time.Duration)
	logger         *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithGateways replaces the IPFS gateway candidate list. Order is the order
// candidates are tried in.
func WithGateways(gateways []string) Option {
	return func(c *Client) {
		if len(gateways) > 0 {
			c.gateways = append([]string{}, gateways...)
		}
	}
}

// WithRetryPolicy overrides attempt count and backoff delays.
func WithRetryPolicy(maxRetries int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		if maxRetries > 0 {
			c.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			c.retryBaseDelay = baseDelay
		}
		if maxDelay > 0 {
			c.retryMaxDelay = maxDelay
		}
	}
}

// WithAttemptTimeout overrides the hard per-attempt timeout.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.attemptTimeout = timeout
		}
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// WithLocalNode routes content-addressed fetches through a local IPFS node
// before any public gateway is tried.
func WithLocalNode(node NodeFetcher) Option {
	return func(c *Client) {
		c.node = node
	}
}

// WithLogger attaches a logger for per-attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "download")
		}
	}
}

// NewClient constructs a downloader with default gateways and retry policy.
func NewClient(opts ...Option) *Client {
	client := &Client{
		gateways: []string{
			"https://ipfs.io/ipfs/",
			"https://cloudflare-ipfs.com/ipfs/",
			"https://gateway.pinata.cloud/ipfs/",
			"https://dweb.link/ipfs/",
		},
		httpClient:     &http.Client{},
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		retryMaxDelay:  defaultRetryMaxDelay,
		attemptTimeout: defaultAttemptTimeout,
		sleeper:        time.Sleep,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NewClientFromConfig constructs a downloader from application config.
func NewClientFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	opts := []Option{
		WithGateways(cfg.Download.Gateways),
		WithRetryPolicy(
			cfg.Download.MaxRetries,
			time.Duration(cfg.Download.RetryBaseSeconds)*time.Second,
			time.Duration(cfg.Download.RetryMaxSeconds)*time.Second,
		),
		WithAttemptTimeout(time.Duration(cfg.Download.AttemptTimeoutSeconds) * time.Second),
		WithLogger(logger),
	}
	if cfg.IPFS.NodeURL != "" {
		opts = append(opts, WithLocalNode(NewNodeClient(cfg.IPFS.NodeURL)))
	}
	return NewClient(opts...)
}

type httpStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// Download fetches the asset behind rawURL into destPath. The extension of
// destPath is rewritten to match the served content type (or, failing that,
// the URL suffix) and the final path is returned. Every gateway candidate
// exhausting its retries yields the last observed error; callers treat that
// as a per-asset failure, not a fatal one.
func (c *Client) Download(ctx context.Context, rawURL, destPath string) (Result, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Result{}, errors.New("download: empty URL")
	}

	cidPath, contentAddressed := storage.IPFSPath(trimmed)

	if contentAddressed && c.node != nil {
		result, err := c.fetchFromNode(ctx, cidPath, trimmed, destPath)
		if err == nil {
			return result, nil
		}
		c.logger.Debug("local node fetch failed, falling back to gateways",
			"cid", cidPath, "error", err)
	}

	candidates := c.candidates(trimmed, cidPath, contentAddressed)

	var lastErr error
	for _, candidate := range candidates {
		for attempt := 0; attempt < c.maxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			result, err := c.fetchOnce(ctx, candidate, destPath)
			if err == nil {
				return result, nil
			}
			lastErr = err
			c.logger.Warn("download attempt failed",
				"url", candidate, "attempt", attempt+1, "error", err)
			if attempt < c.maxRetries-1 {
				c.sleeper(c.backoffDelay(attempt))
			}
		}
		// Next candidate starts fresh, without extra delay.
	}
	return Result{}, fmt.Errorf("download %s: %w", trimmed, lastErr)
}

func (c *Client) candidates(rawURL, cidPath string, contentAddressed bool) []string {
	if !contentAddressed {
		return []string{rawURL}
	}
	candidates := make([]string, 0, len(c.gateways))
	for _, gateway := range c.gateways {
		candidates = append(candidates, gateway+cidPath)
	}
	if len(candidates) == 0 {
		candidates = append(candidates, rawURL)
	}
	return candidates
}

// backoffDelay returns baseDelay * 2^attempt capped at the configured
// maximum; attempt is zero-based.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay
	for i := 0; i < attempt; i++ {
		if delay > c.retryMaxDelay/2 {
			return c.retryMaxDelay
		}
		delay *= 2
	}
	if delay > c.retryMaxDelay {
		return c.retryMaxDelay
	}
	return delay
}

func (c *Client) fetchOnce(ctx context.Context, candidate, destPath string) (Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, candidate, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 1024)
		return Result{}, &httpStatusError{URL: candidate, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	finalPath := rewriteExtension(destPath, Extension(candidate, resp.Header.Get("Content-Type")))
	size := resp.ContentLength
	if size < 0 {
		size = 0
	}
	if err := writeBody(finalPath, resp.Body); err != nil {
		return Result{}, err
	}
	return Result{Path: finalPath, Size: size}, nil
}

func (c *Client) fetchFromNode(ctx context.Context, cidPath, rawURL, destPath string) (Result, error) {
	body, err := c.node.Fetch(ctx, cidPath)
	if err != nil {
		return Result{}, err
	}
	defer body.Close()

	finalPath := rewriteExtension(destPath, Extension(rawURL, ""))
	if err := writeBody(finalPath, body); err != nil {
		return Result{}, err
	}
	info, err := os.Stat(finalPath)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: finalPath, Size: info.Size()}, nil
}

func rewriteExtension(destPath, ext string) string {
	return strings.TrimSuffix(destPath, filepath.Ext(destPath)) + ext
}

func writeBody(path string, body io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return err
	}
	return out.Close()
}
