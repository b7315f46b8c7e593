// Package driven defines the outbound ports the core services depend on:
// the upstream object fetchers, the search index, and the persisted stores.
// Adapters implement these interfaces; services only ever see the ports.
package driven
