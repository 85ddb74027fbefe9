// Package storage classifies the URLs a collectible references into storage
// types and decides whether the bytes behind them are at risk of vanishing.
//
// Content-addressed references (IPFS, Arweave) and embedded data URIs are
// considered safe; anything served from a centralized HTTP host is at risk.
// Classification is a pure function of the URL string: no network I/O is
// performed and malformed input never produces an error, only a
// centralized/at-risk verdict.
package storage
