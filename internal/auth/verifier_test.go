package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTVerifier_ValidToken(t *testing.T) {
	verifier := NewJWTVerifier(testSecret, "", "")

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":         "user-1",
		"exp":         time.Now().Add(time.Hour).Unix(),
		"permissions": []string{"get:movies", "post:actors"},
	})

	claims, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.Permissions.Has("get:movies"))
	assert.True(t, claims.Permissions.Has("post:actors"))
	assert.False(t, claims.Permissions.Has("delete:actors"))
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	verifier := NewJWTVerifier(testSecret, "", "")

	token := signToken(t, "other-secret", jwt.MapClaims{
		"exp":         time.Now().Add(time.Hour).Unix(),
		"permissions": []string{"get:movies"},
	})

	_, err := verifier.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTVerifier_ExpiredToken(t *testing.T) {
	verifier := NewJWTVerifier(testSecret, "", "")

	token := signToken(t, testSecret, jwt.MapClaims{
		"exp":         time.Now().Add(-time.Minute).Unix(),
		"permissions": []string{"get:movies"},
	})

	_, err := verifier.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTVerifier_MissingExpiry(t *testing.T) {
	verifier := NewJWTVerifier(testSecret, "", "")

	token := signToken(t, testSecret, jwt.MapClaims{
		"permissions": []string{"get:movies"},
	})

	_, err := verifier.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTVerifier_IssuerAndAudience(t *testing.T) {
	verifier := NewJWTVerifier(testSecret, "marquee-auth", "marquee-api")

	valid := signToken(t, testSecret, jwt.MapClaims{
		"iss":         "marquee-auth",
		"aud":         "marquee-api",
		"exp":         time.Now().Add(time.Hour).Unix(),
		"permissions": []string{"get:movies"},
	})
	_, err := verifier.Verify(context.Background(), valid)
	assert.NoError(t, err)

	wrongIssuer := signToken(t, testSecret, jwt.MapClaims{
		"iss":         "someone-else",
		"aud":         "marquee-api",
		"exp":         time.Now().Add(time.Hour).Unix(),
		"permissions": []string{"get:movies"},
	})
	_, err = verifier.Verify(context.Background(), wrongIssuer)
	assert.Error(t, err)
}

func TestJWTVerifier_GarbageToken(t *testing.T) {
	verifier := NewJWTVerifier(testSecret, "", "")

	_, err := verifier.Verify(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}
