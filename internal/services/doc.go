// Package services implements the HTTP clients of the dashboard: the Spotify
// Web API aggregator and the token relay client.
//
// # Aggregator
//
// [SpotifyService] wraps every provider call with bearer authentication and a
// uniform retry-on-auth-failure policy: a 401 triggers exactly one token
// refresh (through the injected [TokenSource]) and one retry; a second 401
// propagates as a hard failure. Any other non-2xx status is returned as an
// [UpstreamError] and never retried. [SpotifyService.FetchMany] issues a set
// of endpoint fetches concurrently and joins them, failing fast on the first
// unrecoverable error.
//
// # Relay client
//
// [RelayClient] talks to the confidential token relay (internal/server). It
// never sees the client secret; it only forwards the authorization code or
// refresh token and receives the provider token payload.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no access token available
//   - [shared.ErrAuthExhausted] : refresh failed, credentials discarded
//   - [shared.ErrAPIRequest] : transport-level failure
package services
