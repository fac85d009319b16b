// Package token inspects access tokens on the client side.
//
// The client never verifies signatures — that is the server's job and the
// client does not hold the verification key. Claims are parsed unverified
// and used only for diagnostics: reporting when a rehydrated session's token
// expires, and surfacing the token subject in session info. Authorization
// decisions always rest on the server's 401 responses, never on local claim
// inspection.
package token
