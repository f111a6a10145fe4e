// Package tokens inspects bearer tokens issued by the backend without
// verifying them. The client never holds the signing key; inspection is only
// used to skip a round trip when an access token is already past its expiry.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoExpiry = errors.New("token carries no exp claim")

// Claims mirrors the payload of the backend's access tokens.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type,omitempty"`
	UserID    int64  `json:"user_id,omitempty"`
}

// Parse decodes the claims of token without checking its signature.
func Parse(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExpiresAt returns the exp claim of token.
func ExpiresAt(token string) (time.Time, error) {
	claims, err := Parse(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// Expired reports whether token is known to be expired at now, allowing for
// leeway of clock skew. Opaque or undecodable tokens are never reported as
// expired; the backend stays the judge for those.
func Expired(token string, now time.Time, leeway time.Duration) bool {
	exp, err := ExpiresAt(token)
	if err != nil {
		return false
	}
	return now.After(exp.Add(leeway))
}
