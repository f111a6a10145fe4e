// Package common contains constants shared by the client packages.
package common

// Storage keys of the persisted session, mirroring the names used by the
// web client so a migrated profile keeps working.
const (
	AccessTokenKey    = "access_token"
	RefreshTokenKey   = "refresh_token"
	CachedIdentityKey = "user"
)

// AuthorizationHeader and BearerScheme build the header sent on every
// authorized request: "Authorization: Bearer <access>".
const (
	AuthorizationHeader = "Authorization"
	BearerScheme        = "Bearer"
)

// EventAuthChange is broadcast whenever a view changes the authentication
// state (login, logout, forced sign-out).
const EventAuthChange = "authChange"
