// Package internal provides the core types and implementation for anvil.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/anvil" instead, which re-exports the public API.
//
// # Request lifecycle
//
// Every request goes through three stages that share one *Context:
//
//  1. preRouting chunks, in registration order
//  2. the route handler, looked up by exact URL path, or the "*" fallback
//  3. postRouting chunks, in registration order
//
// There is no next function. After each chunk the stage runner checks
// whether a response was sent; if so the response is ended and nothing
// else runs. A request that reaches the end of postRouting without a
// response fails with ErrNoResponse.
//
// # Sessions
//
// The session lives entirely in a cookie: base64 of its JSON form, signed
// through a companion ".sig" cookie or sealed with AES-GCM when keys are
// configured. It is decoded when the request starts and written back by
// Send only when its fingerprint changed and the request has not failed.
//
// # Freezing
//
// App is a builder. Handler and Listen take an immutable snapshot of the
// registered chunks and routes; Use and Route fail with ErrFrozen after
// that.
package internal
