// Package transport performs the HTTP legwork for the drive client: request
// construction, per-attempt timeouts, retry with exponential backoff for
// transient failures, and bearer-token attachment with single-replay 401
// recovery.
//
// # Design
//
// Every failure is classified exactly once, at this boundary, into a closed
// set of kinds ([KindNetwork], [KindServer], [KindClient],
// [KindUnauthorized], [KindSessionExpired]) carried by [Error]. Downstream
// code branches on the kind or on sentinel errors, never on response shape.
// Only KindNetwork and KindServer are transient; they are retried invisibly
// up to the configured budget with doubling delays. Client errors surface
// immediately with the server-provided message when one exists.
//
// The authenticated variant ([AuthClient]) reads the bearer token fresh from
// its [TokenSource] at send time. On a 401 it hands off to the refresh
// coordinator exactly once, then replays the request exactly once with the
// delivered token. A second 401, or a coordinator failure, is terminal for
// that request and reported as [KindSessionExpired].
//
// # What this package must NOT do
//
//   - Start or coordinate token refreshes; it only awaits the coordinator.
//   - Mutate session state; it reads tokens through [TokenSource] only.
//   - Re-inspect error shapes downstream of classification.
package transport
