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

	"lawclinic/internal/event/service"
	"lawclinic/internal/event/store"
	jwttoken "lawclinic/internal/jwt_token"
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

func eventBody(title string, overrides map[string]any) map[string]any {
	body := map[string]any{
		"title":       title,
		"description": "details to follow",
		"start_date":  time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"end_date":    time.Now().Add(52 * time.Hour).Format(time.RFC3339),
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}

func TestEventRoutes(t *testing.T) {
	f := newFixture(t)
	organizerToken := f.token(t, false)

	t.Run("create requires auth", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/events/", "", eventBody("Nope", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("create then fetch by slug", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPost, "/events/", organizerToken, eventBody("Know Your Rights", nil))
		require.Equal(t, http.StatusCreated, rec.Code, "body: %s", string(env.Error))

		rec, env = f.do(t, http.MethodGet, "/events/know-your-rights/", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "Know Your Rights")
	})

	t.Run("list has pagination metadata", func(t *testing.T) {
		rec, env := f.do(t, http.MethodGet, "/events/?page=1&page_size=10", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, env.Count)
		assert.Equal(t, 1, *env.Count)
	})

	t.Run("non-organizer cannot update", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPut, "/events/know-your-rights/", f.token(t, false), map[string]any{
			"title": "Hijacked",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid body is a validation error", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPost, "/events/", organizerToken, map[string]any{"title": "No Dates"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
	})
}

func TestRegistrationRoutes(t *testing.T) {
	f := newFixture(t)
	organizerToken := f.token(t, false)
	attendeeToken := f.token(t, false)

	rec, env := f.do(t, http.MethodPost, "/events/", organizerToken, eventBody("Evening Clinic", map[string]any{
		"registration_required": true,
		"max_participants":      1,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", string(env.Error))

	t.Run("register requires auth", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/events/evening-clinic/register/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("register then check then unregister", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/events/evening-clinic/register/", attendeeToken, map[string]any{
			"notes": "first time attendee",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, env := f.do(t, http.MethodGet, "/events/evening-clinic/check-registration/", attendeeToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), `"registered":true`)

		rec, env = f.do(t, http.MethodGet, "/event-registrations/mine/", attendeeToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "first time attendee")

		rec, _ = f.do(t, http.MethodPost, "/events/evening-clinic/unregister/", attendeeToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("full event refuses registration", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/events/evening-clinic/register/", f.token(t, false), nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, env := f.do(t, http.MethodPost, "/events/evening-clinic/register/", f.token(t, false), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "This event has reached maximum capacity.", env.Message)
	})

	t.Run("marking attendance is staff only", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPatch, "/event-registrations/"+uuid.NewString()+"/attended/", attendeeToken, map[string]any{"attended": true})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec, _ = f.do(t, http.MethodPatch, "/event-registrations/"+uuid.NewString()+"/attended/", f.token(t, true), map[string]any{"attended": true})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestEventCategoryRoutes(t *testing.T) {
	f := newFixture(t)
	staffToken := f.token(t, true)

	t.Run("category writes are staff only", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/events/categories/", f.token(t, false), map[string]any{"name": "Seminars"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("category round trip", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPost, "/events/categories/", staffToken, map[string]any{"name": "Seminars"})
		require.Equal(t, http.StatusCreated, rec.Code, "body: %s", string(env.Error))

		var created struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &created))

		rec, env = f.do(t, http.MethodGet, "/events/categories/"+created.ID+"/", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "Seminars")

		rec, _ = f.do(t, http.MethodDelete, "/events/categories/"+created.ID+"/", staffToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
