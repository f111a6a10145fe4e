// Package client is the REST client for the Juiz Lab backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): token
//     exchange and refresh, the auth check, profile lookup, registration and
//     the community content endpoints (recipes, tutorials, blogs).
//  2. A concrete net/http implementation (see HTTPClient) that sends the
//     bearer token on authorized calls and maps HTTP status codes to
//     sentinel errors.
//
// # Error Handling
//
// Failures are exposed as sentinel errors that callers match with errors.Is:
// ErrUnauthorized (credential rejected), ErrUnavailable (transport failure or
// server-side outage), ErrNotFound and ErrConflict. Form errors reported by the
// backend are returned as *ValidationError.
//
// Only ErrUnauthorized is meant to affect the session; everything else is
// handled where the call was made.
package client
