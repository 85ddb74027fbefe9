package nft

import "strings"

// Family tags the discovery mechanism a chain uses.
type Family string

const (
	FamilyEVM   Family = "evm"
	FamilyTezos Family = "tezos"
)

// Chain describes one supported network.
type Chain struct {
	ID     int64
	Name   string
	Family Family
}

// ValidFamily reports whether the supplied tag names a known chain family.
func ValidFamily(value string) bool {
	switch Family(strings.ToLower(strings.TrimSpace(value))) {
	case FamilyEVM, FamilyTezos:
		return true
	}
	return false
}
