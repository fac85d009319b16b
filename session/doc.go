// Package session holds the client session model and its durable stores.
//
// # Design
//
// A [Session] carries the access token, the fetched user profile, and the
// authentication flag. Only the persisted subset (token, user, flag) is
// written to storage, wrapped in a versioned envelope; transient fields
// (IsLoading, Err) never leave the process. Stores are forgiving on the read
// path: a missing, corrupt, or schema-incompatible record loads as an empty
// session rather than an error, so a bad persisted blob can never lock a
// user out of the login flow.
//
// # Architecture boundaries
//
// This package owns persistence and the persisted envelope format. It does
// NOT talk to the network, refresh tokens, or make authentication decisions;
// those responsibilities belong to the root package and transport.
//
// # What this package must NOT do
//
//   - Import goDrive or any sibling package.
//   - Persist credentials or transient session fields.
//   - Surface storage corruption as anything other than an empty session.
package session
