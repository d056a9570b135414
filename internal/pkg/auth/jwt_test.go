package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-analytics/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(config.JWTConfig{Secret: testSecret, AccessTokenExpiry: expiry}, "retail-analytics")
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newManager(time.Hour)

	token, err := m.GenerateAccessToken("ops", true)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, "retail-analytics", claims.Issuer)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := newManager(time.Hour)

	t.Run("expired", func(t *testing.T) {
		token, err := newManager(-time.Minute).GenerateAccessToken("ops", true)
		require.NoError(t, err)
		_, err = m.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager(config.JWTConfig{Secret: "ffffffffffffffffffffffffffffffff", AccessTokenExpiry: time.Hour}, "x")
		token, err := other.GenerateAccessToken("ops", true)
		require.NoError(t, err)
		_, err = m.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong token type", func(t *testing.T) {
		claims := &Claims{
			IsAdmin:   true,
			TokenType: "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = m.ValidateAccessToken(token)
		assert.ErrorContains(t, err, "invalid token type")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateAccessToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
}
