package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const claimsContextKey contextKey = "marquee.claims"

// ClaimsFromContext returns the verified claims stashed by Authenticator.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// ContextWithClaims is exposed for handler tests that bypass the middleware.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// Authenticator extracts and verifies the bearer credential, rejecting the
// request before any handler or store access when the header is missing or
// the token cannot be verified.
func Authenticator(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, MissingHeader())
				return
			}

			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeError(w, MalformedToken("authorization header must be a bearer token"))
				return
			}

			claims, err := verifier.Verify(r.Context(), parts[1])
			if err != nil {
				writeError(w, MalformedToken(err.Error()))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequirePermission runs the permission gate against the verified claim set.
func RequirePermission(permission string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := ClaimsFromContext(r.Context())
			if denial := Authorize(claims, permission); denial != nil {
				writeError(w, denial)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, denial *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(denial.StatusCode)
	json.NewEncoder(w).Encode(map[string]any{
		"success":     false,
		"code":        denial.Code,
		"description": denial.Description,
		"status_code": denial.StatusCode,
	})
}
