package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "lawclinic/internal/jwt_token"
	"lawclinic/internal/publication/service"
	"lawclinic/internal/publication/store"
)

type fixture struct {
	router chi.Router
	tokens *jwttoken.JWTService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := store.NewInMemoryStore()
	logger := slog.New(slog.DiscardHandler)
	tokens := jwttoken.NewJWTService("test-key", "lawclinic", "lawclinic-web",
		15*time.Minute, 24*time.Hour)

	svc := service.New(mem, mem, mem, logger)
	r := chi.NewRouter()
	New(svc, jwttoken.NewJWTServiceAdapter(tokens), logger).Register(r)
	return &fixture{router: r, tokens: tokens}
}

func (f *fixture) token(t *testing.T, staff bool) string {
	t.Helper()
	pair, err := f.tokens.GeneratePair(uuid.New(), staff)
	require.NoError(t, err)
	return pair.AccessToken
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
	Count   *int            `json:"count"`
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec, env
}

func TestPublicationRoutes(t *testing.T) {
	f := newFixture(t)
	authorToken := f.token(t, false)

	t.Run("create requires auth", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/publications/", "", map[string]any{
			"title": "Nope", "content": "text",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("create then fetch by slug", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPost, "/publications/", authorToken, map[string]any{
			"title": "Court Fees Explained", "content": "some text", "status": "published",
		})
		require.Equal(t, http.StatusCreated, rec.Code, "body: %s", string(env.Error))

		rec, env = f.do(t, http.MethodGet, "/publications/court-fees-explained/", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "Court Fees Explained")
	})

	t.Run("list has pagination metadata", func(t *testing.T) {
		rec, env := f.do(t, http.MethodGet, "/publications/?page=1&page_size=10", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, env.Count)
		assert.Equal(t, 1, *env.Count)
	})

	t.Run("anonymous cannot see drafts", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/publications/", authorToken, map[string]any{
			"title": "Hidden Draft", "content": "text", "status": "draft",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, _ = f.do(t, http.MethodGet, "/publications/hidden-draft/", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("stats is staff only", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodGet, "/publications/stats/", authorToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec, env := f.do(t, http.MethodGet, "/publications/stats/", f.token(t, true), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "total_count")
	})

	t.Run("comments round trip", func(t *testing.T) {
		readerToken := f.token(t, false)

		rec, _ := f.do(t, http.MethodPost, "/publications/court-fees-explained/comments/", readerToken, map[string]any{
			"content": "very helpful",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		// Unapproved yet, so anonymous readers see nothing.
		rec, env := f.do(t, http.MethodGet, "/publications/court-fees-explained/comments/", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", string(env.Data))
	})

	t.Run("categories are public to read, auth to write", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/publications/categories/", "", map[string]any{"name": "Family Law"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec, _ = f.do(t, http.MethodPost, "/publications/categories/", authorToken, map[string]any{"name": "Family Law"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, env := f.do(t, http.MethodGet, "/publications/categories/family-law/", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "Family Law")
	})
}
