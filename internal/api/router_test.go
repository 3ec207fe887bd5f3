package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-hq/marquee/internal/auth"
	"github.com/marquee-hq/marquee/internal/core"
	"github.com/marquee-hq/marquee/internal/models"
	"github.com/marquee-hq/marquee/internal/store/memory"
)

const testSecret = "router-test-secret"

func newTestServer(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	engine := core.NewEngine(st, zerolog.Nop())
	verifier := auth.NewJWTVerifier(testSecret, "", "")
	router := NewRouter(engine, verifier, zerolog.Nop(), Options{})
	return router.SetupRoutes(), st
}

func mintToken(t *testing.T, permissions ...string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         "test-user",
		"exp":         time.Now().Add(time.Hour).Unix(),
		"permissions": permissions,
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestGetActors_MissingHeader(t *testing.T) {
	handler, st := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/actors", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, auth.CodeMissingHeader, body["code"])
	assert.Equal(t, 0, st.Calls(), "no store access before authorization")
}

func TestGetActors_InsufficientScope(t *testing.T) {
	handler, st := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/actors", mintToken(t, "post:actors"), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, auth.CodeInsufficientScope, decodeBody(t, rec)["code"])
	assert.Equal(t, 0, st.Calls())
}

func TestGetActors_Empty(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/actors", mintToken(t, "get:movies"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Empty(t, body["actors"])
}

func TestPostActors_CreatesActorWithMixedMovies(t *testing.T) {
	handler, st := newTestServer(t)
	ctx := context.Background()

	// "Movie 2" pre-exists; "Movie 3" does not.
	require.NoError(t, st.CreateMovie(ctx, models.NewMovie("Movie 2", models.NewDate(2020, time.January, 8)), nil))
	moviesBefore := st.MovieCount()

	rec := doRequest(t, handler, http.MethodPost, "/actors", mintToken(t, "post:actors"), map[string]any{
		"name":   "actor 3",
		"age":    34,
		"gender": "F",
		"movies": []map[string]any{
			{"title": "Movie 3", "release_date": "2009-06-03"},
			{"title": "Movie 2", "release_date": "2020-01-08"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	actors, ok := body["actors"].([]any)
	require.True(t, ok)
	require.Len(t, actors, 1)
	actor := actors[0].(map[string]any)
	assert.Equal(t, "actor 3", actor["name"])
	assert.Len(t, actor["movies"].([]any), 2)

	assert.Equal(t, moviesBefore+1, st.MovieCount(), "only the new movie row is inserted")
	assert.Equal(t, 2, st.LinkCount())
}

func TestPostActors_MissingRequiredField(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/actors", mintToken(t, "post:actors"), map[string]any{
		"name": "actor 3",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeBody(t, rec)["code"])
}

func TestPostActors_DuplicateName(t *testing.T) {
	handler, st := newTestServer(t)

	first := doRequest(t, handler, http.MethodPost, "/actors", mintToken(t, "post:actors"), map[string]any{
		"name": "actor 1", "age": 52,
	})
	require.Equal(t, http.StatusOK, first.Code)

	second := doRequest(t, handler, http.MethodPost, "/actors", mintToken(t, "post:actors"), map[string]any{
		"name": "actor 1", "age": 30,
	})

	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, "conflict", decodeBody(t, second)["code"])
	assert.Equal(t, 1, st.ActorCount())
}

func TestPatchActors_AgeOnly(t *testing.T) {
	handler, _ := newTestServer(t)

	created := doRequest(t, handler, http.MethodPost, "/actors", mintToken(t, "post:actors"), map[string]any{
		"name": "actor 5", "age": 40, "gender": "F",
		"movies": []map[string]any{
			{"title": "Movie 1", "release_date": "2015-09-20"},
		},
	})
	require.Equal(t, http.StatusOK, created.Code)
	id := decodeBody(t, created)["actors"].([]any)[0].(map[string]any)["id"].(float64)

	rec := doRequest(t, handler, http.MethodPatch,
		fmt.Sprintf("/actors/%d", int64(id)), mintToken(t, "patch:actors"),
		map[string]any{"age": 25})

	require.Equal(t, http.StatusOK, rec.Code)
	actor := decodeBody(t, rec)["actors"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(25), actor["age"])
	assert.Equal(t, "actor 5", actor["name"])
	assert.Equal(t, "F", actor["gender"])
	assert.Len(t, actor["movies"].([]any), 1)
}

func TestPatchActors_ResubmittedMovieIsNoOp(t *testing.T) {
	handler, st := newTestServer(t)

	created := doRequest(t, handler, http.MethodPost, "/actors", mintToken(t, "post:actors"), map[string]any{
		"name": "actor 4", "age": 29,
		"movies": []map[string]any{
			{"title": "Movie 2", "release_date": "2020-01-08"},
		},
	})
	require.Equal(t, http.StatusOK, created.Code)
	id := decodeBody(t, created)["actors"].([]any)[0].(map[string]any)["id"].(float64)
	linksBefore := st.LinkCount()

	rec := doRequest(t, handler, http.MethodPatch,
		fmt.Sprintf("/actors/%d", int64(id)), mintToken(t, "patch:actors"),
		map[string]any{
			"movies": []map[string]any{
				{"title": "Movie 2", "release_date": "2020-01-08"},
			},
		})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, linksBefore, st.LinkCount())
}

func TestPatchActors_UnknownID(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPatch, "/actors/999", mintToken(t, "patch:actors"),
		map[string]any{"age": 25})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody(t, rec)["code"])
}

func TestDeleteActors(t *testing.T) {
	handler, st := newTestServer(t)

	created := doRequest(t, handler, http.MethodPost, "/actors", mintToken(t, "post:actors"), map[string]any{
		"name": "actor 6", "age": 33,
	})
	require.Equal(t, http.StatusOK, created.Code)
	id := int64(decodeBody(t, created)["actors"].([]any)[0].(map[string]any)["id"].(float64))

	rec := doRequest(t, handler, http.MethodDelete,
		fmt.Sprintf("/actors/%d", id), mintToken(t, "delete:actors"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(id), body["delete"])
	assert.Equal(t, 0, st.ActorCount())

	again := doRequest(t, handler, http.MethodDelete,
		fmt.Sprintf("/actors/%d", id), mintToken(t, "delete:actors"), nil)
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestPostMovies_ResponseUsesMoviesField(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/movies", mintToken(t, "post:movies"), map[string]any{
		"title":        "Movie 7",
		"release_date": "2018-11-16",
		"actors": []map[string]any{
			{"name": "actor 8", "age": 27, "gender": "F"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	movies, ok := body["movies"].([]any)
	require.True(t, ok, "movie creation responds under the movies key")
	require.Len(t, movies, 1)
	movie := movies[0].(map[string]any)
	assert.Equal(t, "Movie 7", movie["title"])
	assert.Equal(t, "2018-11-16", movie["release_date"])
	assert.Len(t, movie["actors"].([]any), 1)
}

func TestPostMovies_MissingReleaseDate(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/movies", mintToken(t, "post:movies"), map[string]any{
		"title": "Movie 7",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMovies(t *testing.T) {
	handler, st := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, st.CreateMovie(ctx, models.NewMovie("Movie 1", models.NewDate(2015, time.September, 20)), nil))

	rec := doRequest(t, handler, http.MethodGet, "/movies", mintToken(t, "get:movies"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["movies"].([]any), 1)
}

func TestDeleteMovies_WrongPermission(t *testing.T) {
	handler, st := newTestServer(t)

	rec := doRequest(t, handler, http.MethodDelete, "/movies/1", mintToken(t, "delete:actors"), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, st.Calls())
}

func TestHealthEndpointIsPublic(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
