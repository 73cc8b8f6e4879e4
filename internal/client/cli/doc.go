// Package cli provides the interactive cabinetmap command-line client.
//
// It wires configuration, local storage, the venue API client and an
// interactive REPL that works the same online and offline. Favorites,
// searches and suggestions are written to the local outbox first and
// delivered to the server immediately when online, or on the next
// reconciliation pass otherwise.
//
// A background prober flips the client between online and offline mode and
// a cron scheduler runs the retention sweep and the stale-sync check.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and the command handlers for details.
package cli
