package auth

import "net/http"

const (
	CodeMissingHeader     = "authorization_header_missing"
	CodeMalformedToken    = "invalid_token"
	CodeInsufficientScope = "insufficient_permissions"
)

// Error is a permission-gate denial: a machine code, a human description and
// the HTTP status the denial maps to.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	StatusCode  int    `json:"status_code"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Description
}

func MissingHeader() *Error {
	return &Error{
		Code:        CodeMissingHeader,
		Description: "authorization header is expected",
		StatusCode:  http.StatusUnauthorized,
	}
}

func MalformedToken(detail string) *Error {
	if detail == "" {
		detail = "unable to parse authentication token"
	}
	return &Error{
		Code:        CodeMalformedToken,
		Description: detail,
		StatusCode:  http.StatusUnauthorized,
	}
}

func InsufficientScope(permission string) *Error {
	return &Error{
		Code:        CodeInsufficientScope,
		Description: "permission not granted: " + permission,
		StatusCode:  http.StatusForbidden,
	}
}

// Authorize is the single-shot permission decision: nil means allowed.
// It is stateless; nothing is cached across requests.
func Authorize(claims *Claims, required string) *Error {
	if claims == nil {
		return MissingHeader()
	}
	if !claims.Permissions.Has(required) {
		return InsufficientScope(required)
	}
	return nil
}
