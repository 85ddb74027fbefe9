// Package backup orchestrates a full backup run: resolve the wallet,
// discover its holdings per chain, classify every referenced URL, fetch
// metadata and media into the archive layout, and write the versioned
// manifests.
//
// A run holds a file lock for its whole duration so two invocations never
// interleave writes under the same output root. Failures while processing
// a single asset are recorded on that asset's manifest entry and the run
// continues; only configuration and validation problems abort the run.
package backup
