package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func decodeDenial(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAuthenticator_MissingHeader(t *testing.T) {
	verifier := NewJWTVerifier(testSecret, "", "")
	handler := Authenticator(verifier)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/actors", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeDenial(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, CodeMissingHeader, body["code"])
	assert.Equal(t, float64(http.StatusUnauthorized), body["status_code"])
}

func TestAuthenticator_MalformedHeader(t *testing.T) {
	verifier := NewJWTVerifier(testSecret, "", "")
	handler := Authenticator(verifier)(okHandler())

	headers := []string{"Token abc", "Bearer", "Bearer a b", "abc"}
	for _, h := range headers {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/actors", nil)
		req.Header.Set("Authorization", h)
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", h)
		assert.Equal(t, CodeMalformedToken, decodeDenial(t, rec)["code"], "header %q", h)
	}
}

func TestAuthenticator_ValidTokenPassesClaims(t *testing.T) {
	verifier := NewJWTVerifier(testSecret, "", "")

	var got *Claims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticator(verifier)(inner)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":         "user-9",
		"exp":         time.Now().Add(time.Hour).Unix(),
		"permissions": []string{"get:movies"},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/actors", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "user-9", got.Subject)
	assert.True(t, got.Permissions.Has("get:movies"))
}

func TestRequirePermission(t *testing.T) {
	handler := RequirePermission("delete:movies")(okHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/movies/1", nil)
	req = req.WithContext(ContextWithClaims(req.Context(), &Claims{
		Permissions: NewClaimSet("get:movies"),
	}))
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/movies/1", nil)
	req = req.WithContext(ContextWithClaims(req.Context(), &Claims{
		Permissions: NewClaimSet("delete:movies"),
	}))
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
