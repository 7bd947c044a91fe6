// Package session resolves the acting identity for one HTTP request.
//
// Two mutually exclusive paths are tried in order: the signed session cookie
// (short-lived marker holding the user id and session identifier), then the
// remember cookies (signed user-id cookie plus plaintext remember token).
// A successful cookie-path resolution re-establishes the session marker for
// the rest of the interaction.
//
// Resolution state lives on a per-request Session value carried through the
// request context by the Manager's middleware; it is never process-global.
package session
