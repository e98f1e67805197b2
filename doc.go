// Package session manages the client side of an authenticated session against
// the quiz-generation REST backend: establishing credentials, persisting the
// bearer token, deriving role predicates, and deciding whether guarded views
// may render.
//
// Session lifecycle:
//   - A Manager owns one SessionObject per running client. It is mutated only
//     through the Manager's operations (Bootstrap, Login, Logout, ...); every
//     operation settles the status back out of StatusLoading before returning,
//     regardless of outcome.
//   - The bearer token is treated as opaque. Expiry is discovered by a failed
//     verification against the backend, never enforced locally. InspectToken
//     offers a display-only peek at JWT-shaped tokens.
//
// Route gating:
//   - Evaluate is a pure function of a session snapshot and an optional
//     required role. It yields pending, allow, or a redirect target so view
//     layers can gate navigation without reaching into session internals.
//     The web subpackage adapts decisions to go-router handlers.
//
// Persistence:
//   - CredentialStore abstracts durable token storage. The credstore
//     subpackage ships a bun/sqlite implementation scoped to a named profile,
//     with optional sealing of the token at rest.
package session
