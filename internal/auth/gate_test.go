package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name         string
		claims       *Claims
		required     string
		expectedCode string
	}{
		{
			name:         "nil claims denied as missing header",
			claims:       nil,
			required:     "post:actors",
			expectedCode: CodeMissingHeader,
		},
		{
			name:         "empty claim set denied",
			claims:       &Claims{Permissions: NewClaimSet()},
			required:     "post:actors",
			expectedCode: CodeInsufficientScope,
		},
		{
			name:         "different permission denied",
			claims:       &Claims{Permissions: NewClaimSet("get:movies")},
			required:     "delete:movies",
			expectedCode: CodeInsufficientScope,
		},
		{
			name:     "granted permission allowed",
			claims:   &Claims{Permissions: NewClaimSet("get:movies", "post:actors")},
			required: "post:actors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			denial := Authorize(tt.claims, tt.required)
			if tt.expectedCode == "" {
				assert.Nil(t, denial)
				return
			}
			require.NotNil(t, denial)
			assert.Equal(t, tt.expectedCode, denial.Code)
		})
	}
}

func TestDenialStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, MissingHeader().StatusCode)
	assert.Equal(t, http.StatusUnauthorized, MalformedToken("").StatusCode)
	assert.Equal(t, http.StatusForbidden, InsufficientScope("post:actors").StatusCode)
}

func TestClaimSet(t *testing.T) {
	set := NewClaimSet("get:movies", "patch:actors")
	assert.True(t, set.Has("get:movies"))
	assert.True(t, set.Has("patch:actors"))
	assert.False(t, set.Has("delete:actors"))
	assert.False(t, NewClaimSet().Has("get:movies"))
}
