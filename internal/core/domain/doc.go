// Package domain contains the core business types shared across the
// connector: object types, documents, schema projections, time windows
// and the persisted sync state. It has no dependencies on adapters or
// the upstream API.
package domain
