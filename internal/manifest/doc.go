// Package manifest persists the durable, versioned record of what was
// backed up for each (chain, wallet) pair.
//
// The canonical manifest is a single JSON file that is fully replaced on
// every run, never patched. Immediately before an overwrite, the existing
// file is copied byte for byte into history/ (bounded retention), the
// added/updated/removed delta against the previous manifest is appended as
// an immutable run record under runs/, and the cross-wallet index plus the
// offline gallery bundle are regenerated from scratch by rescanning every
// canonical file. Reading entire, recomputing entire, and writing entire is
// what keeps history and deltas correct without a transaction log.
//
// The write sequence is not atomic across process failure: a crash mid-way
// can leave a snapshot without its delta, or a stale index until the next
// run regenerates it. That is an accepted trade-off for a local,
// single-operator tool. The store provides no locking; callers must not run
// two writers against the same (chain, wallet) concurrently.
package manifest
