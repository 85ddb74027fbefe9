// Package download fetches asset bytes to disk with gateway substitution
// and retry.
//
// A URL that references IPFS content expands into one candidate per
// configured gateway, tried in order; each candidate gets a bounded number
// of attempts with exponential backoff and a hard per-attempt timeout.
// Exhausting every candidate surfaces the last observed error, scoped to
// the one asset being fetched. When a local IPFS node is configured its API
// is consulted before any public gateway.
package download
