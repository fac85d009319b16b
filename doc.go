// Package goDrive provides the authenticated API client for a goDrive
// file-storage backend: bearer-token request signing, invisible single-flight
// token refresh with transparent replay, retry-with-backoff for transient
// failures, and a presentation-agnostic route guard driven by session state
// persisted across process restarts.
//
// The package is designed for concurrent callers: Client methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
// Any number of requests may fail with 401 while a single refresh is in
// flight; all of them settle against that one refresh outcome.
//
// # Architecture boundaries
//
// goDrive is the public surface. It exposes [Client], [Builder], [Config],
// [RouteGuard], and value types (MetricsSnapshot, Credentials, Folder, etc.).
// HTTP mechanics — timeouts, retry classification, bearer attachment — live
// in the transport subpackage; session persistence lives in the session
// subpackage.
//
// # What this package must NOT do
//
//   - Render UI or decide where a redirect lands beyond reporting it.
//   - Store credentials: a [Credentials] value is consumed by Login and
//     never written to the session store.
//   - Implement the identity provider; it is reached only through the fixed
//     /auth and /user HTTP endpoints.
//
// # Failure contract
//
// Transient failures (no response, 5xx) are retried invisibly up to the
// configured budget. A 401 on an authenticated request triggers at most one
// shared refresh and at most one replay of that request. A failed refresh is
// terminal: every waiter fails with [ErrSessionExpired], the local session is
// cleared, and the session-expired handler fires exactly once per cycle.
package goDrive
