// Package queue persists the per-asset backup ledger backed by SQLite.
//
// Every discovered asset becomes a ledger item that moves through
// pending → classifying → downloading → completed/failed during a run.
// The ledger is diagnostic state, not the backup record itself — the
// manifest store owns that — but it survives crashes, which makes
// interrupted runs inspectable and lets the CLI report what each run did
// per asset.
package queue
