// Package sqlite persists the connector's durable state in a single SQLite
// database: the indexed-document bookkeeping deletion sync works from, the
// per-type sync checkpoints, and the OAuth credential state.
package sqlite
