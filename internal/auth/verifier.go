package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier decodes and verifies a bearer token, producing its claim set.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

type jwtClaims struct {
	jwt.RegisteredClaims
	Permissions []string `json:"permissions"`
}

// JWTVerifier verifies HS256-signed tokens carrying a "permissions" claim.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewJWTVerifier(secret, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		options = append(options, jwt.WithAudience(v.audience))
	}

	var claims jwtClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return &Claims{
		Subject:     claims.Subject,
		Permissions: NewClaimSet(claims.Permissions...),
	}, nil
}

var _ TokenVerifier = (*JWTVerifier)(nil)
