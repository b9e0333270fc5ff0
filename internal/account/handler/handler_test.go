package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawclinic/internal/account/service"
	"lawclinic/internal/account/store"
	"lawclinic/internal/account/store/revocation"
	jwttoken "lawclinic/internal/jwt_token"
	"lawclinic/internal/notification"
)

type fixture struct {
	router chi.Router
	users  *store.InMemoryUserStore
	svc    *service.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := store.NewInMemoryUserStore()
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	tokens := jwttoken.NewJWTService("test-key", "lawclinic", "lawclinic-web",
		15*time.Minute, 24*time.Hour)

	svc := service.New(service.Config{
		Users:       users,
		Revocations: revocation.NewMemoryStore(),
		Tokens:      tokens,
		Mailer:      notification.NewMemoryMailer(),
		Logger:      logger,
	})

	r := chi.NewRouter()
	New(svc, jwttoken.NewJWTServiceAdapter(tokens), logger).Register(r)
	return &fixture{router: r, users: users, svc: svc}
}

type envelope struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Error    json.RawMessage `json:"error"`
	Count    *int            `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
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

// registerAndVerify walks a fresh account through the whole flow and returns
// an access token for it.
func (f *fixture) registerAndVerify(t *testing.T, email string, staff bool) string {
	t.Helper()

	rec, _ := f.do(t, http.MethodPost, "/auth/register/", "", map[string]string{
		"email": email, "username": "u-" + email, "password": "a sufficient password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	user, err := f.users.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user.OTPCode)

	rec, _ = f.do(t, http.MethodPost, "/auth/verify-otp/", "", map[string]string{
		"email": email, "code": *user.OTPCode,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	if staff {
		user, err = f.users.FindByEmail(context.Background(), email)
		require.NoError(t, err)
		user.IsStaff = true
		require.NoError(t, f.users.Update(context.Background(), user))
	}

	rec, env := f.do(t, http.MethodPost, "/auth/login/", "", map[string]string{
		"email": email, "password": "a sufficient password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Tokens struct {
			Access string `json:"access"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	return result.Tokens.Access
}

func TestRegisterEndpoint(t *testing.T) {
	f := newFixture(t)

	t.Run("success envelope on 201", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPost, "/auth/register/", "", map[string]string{
			"email": "new@example.com", "username": "newuser", "password": "a sufficient password",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, env.Success)
		assert.NotEqual(t, "null", string(env.Data))
		assert.Equal(t, "null", string(env.Error))
	})

	t.Run("validation failure envelope on 400", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPost, "/auth/register/", "", map[string]string{
			"email": "not-an-email", "username": "newuser2", "password": "a sufficient password",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "null", string(env.Data))
		assert.Contains(t, string(env.Error), "validation_error")
	})

	t.Run("malformed JSON is a 400, not a 500", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/register/", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVerifyEndpoint(t *testing.T) {
	f := newFixture(t)
	f.registerAndVerify(t, "done@example.com", false)

	t.Run("already verified is a 400 with its own code", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPost, "/auth/verify-otp/", "", map[string]string{
			"email": "done@example.com", "code": "123456",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, string(env.Error), "already_verified")
	})

	t.Run("unknown account is a 404", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodPost, "/auth/verify-otp/", "", map[string]string{
			"email": "ghost@example.com", "code": "123456",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProfileEndpoints(t *testing.T) {
	f := newFixture(t)
	token := f.registerAndVerify(t, "me@example.com", false)

	t.Run("requires a token", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodGet, "/auth/user/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns the caller's profile", func(t *testing.T) {
		rec, env := f.do(t, http.MethodGet, "/auth/user/", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "me@example.com")
	})

	t.Run("partial update touches only the sent fields", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPut, "/auth/update-user/", token, map[string]string{
			"first_name": "Updated",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), "Updated")
		assert.Contains(t, string(env.Data), "me@example.com")
	})
}

func TestUserManagementEndpoints(t *testing.T) {
	f := newFixture(t)
	staffToken := f.registerAndVerify(t, "admin@example.com", true)
	memberToken := f.registerAndVerify(t, "member@example.com", false)

	t.Run("staff gate", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodGet, "/users/", memberToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec, _ = f.do(t, http.MethodGet, "/users/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("list carries pagination metadata", func(t *testing.T) {
		for i := 0; i < 12; i++ {
			f.registerAndVerify(t, fmt.Sprintf("bulk%d@example.com", i), false)
		}

		rec, env := f.do(t, http.MethodGet, "/users/?page=1&page_size=10", staffToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, env.Count)
		assert.Equal(t, 14, *env.Count)
		require.NotNil(t, env.Next)
		assert.Nil(t, env.Previous)
	})

	t.Run("page zero is rejected", func(t *testing.T) {
		rec, _ := f.do(t, http.MethodGet, "/users/?page=0", staffToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("overview counts", func(t *testing.T) {
		rec, env := f.do(t, http.MethodGet, "/users/overview/", staffToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var ov struct {
			Total    int `json:"total"`
			Verified int `json:"verified"`
			Staff    int `json:"staff"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &ov))
		assert.Equal(t, 14, ov.Total)
		assert.Equal(t, 14, ov.Verified)
		assert.Equal(t, 1, ov.Staff)
	})

	t.Run("get, update, delete by id", func(t *testing.T) {
		member, err := f.users.FindByEmail(context.Background(), "member@example.com")
		require.NoError(t, err)

		rec, _ := f.do(t, http.MethodGet, "/users/"+member.ID.String()+"/", staffToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, env := f.do(t, http.MethodPut, "/users/"+member.ID.String()+"/", staffToken, map[string]any{
			"is_active": false,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), `"is_active":false`)

		rec, _ = f.do(t, http.MethodDelete, "/users/"+member.ID.String()+"/", staffToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, _ = f.do(t, http.MethodGet, "/users/"+member.ID.String()+"/", staffToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("staff creates a verified account directly", func(t *testing.T) {
		rec, env := f.do(t, http.MethodPost, "/users/", staffToken, map[string]any{
			"email":    "direct@example.com",
			"username": "direct-user",
			"password": "correct horse battery",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, string(env.Data), `"is_verified":true`)

		rec, _ = f.do(t, http.MethodPost, "/auth/login/", "", map[string]any{
			"email": "direct@example.com", "password": "correct horse battery",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
