// Package naming turns human-friendly wallet names into addresses.
//
// Plain addresses pass through untouched; anything else is resolved
// through an ENS resolution API. Resolution can be disabled entirely,
// in which case only literal addresses are accepted.
package naming
