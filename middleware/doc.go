// Package middleware exposes an HTTP adapter for the goDrive route guard,
// for server-rendered frontends that proxy the drive backend.
//
// [Protect] maps guard decisions onto HTTP semantics: protected content
// passes through, unauthenticated navigation is redirected to the login
// entry point with the originally requested destination preserved in a
// return_to query parameter.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into RouteGuard calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// [goDrive.RouteGuard].
//
// # What this package must NOT do
//
//   - Inspect tokens or session state directly.
//   - Trigger refreshes or profile fetches beyond what the guard decides.
//   - Render anything beyond a minimal loading placeholder.
package middleware
