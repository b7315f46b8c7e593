// Package zoom implements the Zoom side of the connector: the OAuth token
// provider, the throttled REST client, and one fetcher per supported object
// type. Fetchers normalize raw API objects into domain documents through
// the configured field projection.
package zoom
