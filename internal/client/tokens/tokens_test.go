package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-only-secret"))
	require.NoError(t, err)
	return tok
}

func TestParse_ReadsClaimsWithoutKey(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	tok := sign(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
		TokenType:        "access",
		UserID:           42,
	})

	c, err := Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID)
	assert.Equal(t, "access", c.TokenType)
	assert.True(t, c.ExpiresAt.Time.Equal(exp))
}

func TestExpired(t *testing.T) {
	now := time.Now()
	past := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}})
	future := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))}})

	assert.True(t, Expired(past, now, 0))
	assert.False(t, Expired(past, now, 2*time.Minute), "leeway tolerates skew")
	assert.False(t, Expired(future, now, 0))
}

func TestExpired_OpaqueTokensAreNotJudged(t *testing.T) {
	assert.False(t, Expired("opaque-bearer", time.Now(), 0))

	noExp := sign(t, Claims{UserID: 1})
	assert.False(t, Expired(noExp, time.Now(), 0))
	_, err := ExpiresAt(noExp)
	require.ErrorIs(t, err, ErrNoExpiry)
}
