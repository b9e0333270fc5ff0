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
	"lawclinic/internal/sitesettings/service"
	"lawclinic/internal/sitesettings/store"
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

	svc := service.New(mem, mem, mem, mem, logger)
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

func createdID(t *testing.T, env envelope) string {
	t.Helper()
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out.ID
}

func TestAppDataRoutes(t *testing.T) {
	f := newFixture(t)
	staffToken := f.token(t, true)

	t.Run("writes are staff only", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/app-data/", "", map[string]any{"name": "Clinic"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec, _ = f.do(t, http.MethodPost, "/app-data/", f.token(t, false), map[string]any{"name": "Clinic"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("round trip", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPost, "/app-data/", staffToken, map[string]any{
			"name": "Campus Law Clinic", "mission_statement": "Justice for all.",
		})
		require.Equal(t, http.StatusCreated, rec.Code, "body: %s", string(env.Error))
		id := createdID(t, env)

		rec, env = f.do(t, http.MethodGet, "/app-data/"+id+"/", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "Campus Law Clinic")

		rec, _ = f.do(t, http.MethodDelete, "/app-data/"+id+"/", staffToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGalleryRoutes(t *testing.T) {
	f := newFixture(t)
	staffToken := f.token(t, true)

	rec, env := f.do(t, http.MethodPost, "/galleries/", staffToken, map[string]any{
		"title": "Outreach 2024", "department": "clinical",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", string(env.Error))
	galleryID := createdID(t, env)

	t.Run("public listing with pagination metadata", func(t *testing.T) {
		rec, env := f.do(t, http.MethodGet, "/galleries/?page=1&page_size=10", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, env.Count)
		assert.Equal(t, 1, *env.Count)
	})

	t.Run("by department requires the parameter", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodGet, "/galleries/by-department/", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, env := f.do(t, http.MethodGet, "/galleries/by-department/?department=clinical", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "Outreach 2024")
	})

	t.Run("images filter by gallery", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/gallery-images/", staffToken, map[string]any{
			"gallery_id": galleryID, "image": "https://cdn.example.com/a.jpg",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, env := f.do(t, http.MethodGet, "/gallery-images/?gallery="+galleryID, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, env.Count)
		assert.Equal(t, 1, *env.Count)
	})
}

func TestSponsorAndTestimonialRoutes(t *testing.T) {
	f := newFixture(t)
	staffToken := f.token(t, true)

	t.Run("sponsors by type", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPost, "/sponsors/", staffToken, map[string]any{
			"name": "Justice Foundation", "type": "organization",
		})
		require.Equal(t, http.StatusCreated, rec.Code, "body: %s", string(env.Error))

		rec, _ = f.do(t, http.MethodGet, "/sponsors/by-type/", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, env = f.do(t, http.MethodGet, "/sponsors/by-type/?type=organization", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "Justice Foundation")
	})

	t.Run("testimonial round trip", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPost, "/testimonials/", staffToken, map[string]any{
			"name": "Chidi Eze", "quote": "They helped me keep my shop.",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		id := createdID(t, env)

		rec, env = f.do(t, http.MethodGet, "/testimonials/"+id+"/", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "Chidi Eze")

		rec, _ = f.do(t, http.MethodPut, "/testimonials/"+id+"/", f.token(t, false), map[string]any{"name": "X"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
