package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawclinic/internal/account/models"
	"lawclinic/internal/account/store"
	"lawclinic/internal/account/store/revocation"
	jwttoken "lawclinic/internal/jwt_token"
	"lawclinic/internal/notification"
	dErrors "lawclinic/pkg/domain-errors"
)

type testEnv struct {
	svc    *Service
	users  *store.InMemoryUserStore
	mailer *notification.MemoryMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := store.NewInMemoryUserStore()
	mailer := notification.NewMemoryMailer()
	tokens := jwttoken.NewJWTService("test-signing-key", "lawclinic", "lawclinic-web",
		15*time.Minute, 7*24*time.Hour)

	svc := New(Config{
		Users:       users,
		Revocations: revocation.NewMemoryStore(),
		Tokens:      tokens,
		Mailer:      mailer,
		Logger:      slog.New(slog.NewTextHandler(testWriter{t}, nil)),
		OTPLength:   6,
		OTPValidity: 10 * time.Minute,
	})
	return &testEnv{svc: svc, users: users, mailer: mailer}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func registerReq(email string) *models.RegisterRequest {
	return &models.RegisterRequest{
		Email:    email,
		Username: "user-" + email[:3] + email[len(email)-7:],
		Password: "correct horse battery",
	}
}

func (e *testEnv) register(t *testing.T, email string) *models.UserResponse {
	t.Helper()
	resp, err := e.svc.Register(context.Background(), registerReq(email))
	require.NoError(t, err)
	return resp
}

func (e *testEnv) storedCode(t *testing.T, email string) string {
	t.Helper()
	user, err := e.users.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user.OTPCode)
	return *user.OTPCode
}

func TestRegister(t *testing.T) {
	t.Run("creates unverified account with a pending code", func(t *testing.T) {
		env := newTestEnv(t)

		resp := env.register(t, "alice@example.com")
		assert.False(t, resp.IsVerified)
		assert.Equal(t, "alice@example.com", resp.Email)

		code := env.storedCode(t, "alice@example.com")
		assert.Len(t, code, 6)

		// Dispatch is detached; the code must land in the outbox.
		require.Eventually(t, func() bool {
			return len(env.mailer.Messages()) == 1
		}, time.Second, 10*time.Millisecond)
		assert.Contains(t, env.mailer.Messages()[0].Body, code)
	})

	t.Run("duplicate email is a validation error and leaves one account", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "dup@example.com")

		req := registerReq("dup@example.com")
		req.Username = "different-username"
		_, err := env.svc.Register(context.Background(), req)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		ov, err := env.users.Overview(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, ov.Total)
	})

	t.Run("derives a display name from the email when none given", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.register(t, "jane.doe@example.com")
		assert.Equal(t, "Jane", resp.FirstName)
		assert.Equal(t, "Doe", resp.LastName)
	})

	t.Run("mail failure does not roll back registration", func(t *testing.T) {
		env := newTestEnv(t)
		env.mailer.FailWith(assert.AnError)

		resp, err := env.svc.Register(context.Background(), registerReq("nomail@example.com"))
		require.NoError(t, err)
		assert.False(t, resp.IsVerified)
		assert.NotEmpty(t, env.storedCode(t, "nomail@example.com"))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		env := newTestEnv(t)
		cases := []*models.RegisterRequest{
			{Email: "not-an-email", Username: "someone", Password: "long enough pw"},
			{Email: "ok@example.com", Username: "ab", Password: "long enough pw"},
			{Email: "ok@example.com", Username: "someone", Password: "short"},
		}
		for _, req := range cases {
			_, err := env.svc.Register(context.Background(), req)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		}
	})
}

func TestVerifyOTP(t *testing.T) {
	t.Run("correct code verifies and clears the code", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "bob@example.com")
		code := env.storedCode(t, "bob@example.com")

		resp, err := env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{
			Email: "bob@example.com", Code: code,
		})
		require.NoError(t, err)
		assert.True(t, resp.IsVerified)

		user, err := env.users.FindByEmail(context.Background(), "bob@example.com")
		require.NoError(t, err)
		assert.Nil(t, user.OTPCode)
		assert.Nil(t, user.OTPIssuedAt)
	})

	t.Run("a code is single use", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "once@example.com")
		code := env.storedCode(t, "once@example.com")

		_, err := env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{Email: "once@example.com", Code: code})
		require.NoError(t, err)

		_, err = env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{Email: "once@example.com", Code: code})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyVerified))
	})

	t.Run("reissue invalidates the previous code", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "resend@example.com")
		oldCode := env.storedCode(t, "resend@example.com")

		require.NoError(t, env.svc.ResendOTP(context.Background(), &models.ResendOTPRequest{Email: "resend@example.com"}))
		newCode := env.storedCode(t, "resend@example.com")
		if oldCode == newCode {
			t.Skip("reissued code collided with the old one")
		}

		_, err := env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{Email: "resend@example.com", Code: oldCode})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCode))

		_, err = env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{Email: "resend@example.com", Code: newCode})
		assert.NoError(t, err)
	})

	t.Run("expired code is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		env.svc.otpValidity = 10 * time.Millisecond
		env.register(t, "slow@example.com")
		code := env.storedCode(t, "slow@example.com")

		time.Sleep(20 * time.Millisecond)

		_, err := env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{Email: "slow@example.com", Code: code})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCode))

		// Still unverified; a fresh code can complete the flow.
		require.NoError(t, env.svc.ResendOTP(context.Background(), &models.ResendOTPRequest{Email: "slow@example.com"}))
		env.svc.otpValidity = 10 * time.Minute
		_, err = env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{
			Email: "slow@example.com", Code: env.storedCode(t, "slow@example.com"),
		})
		assert.NoError(t, err)
	})

	t.Run("wrong code and unknown email", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "carol@example.com")

		_, err := env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{Email: "carol@example.com", Code: "000000x"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCode))

		_, err = env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{Email: "ghost@example.com", Code: "123456"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("concurrent submissions accept the code exactly once", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "race@example.com")
		code := env.storedCode(t, "race@example.com")

		const workers = 16
		var wg sync.WaitGroup
		results := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{
					Email: "race@example.com", Code: code,
				})
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		winners := 0
		for err := range results {
			if err == nil {
				winners++
			} else {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyVerified))
			}
		}
		assert.Equal(t, 1, winners)
	})
}

func TestResendOTP(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dave@example.com")
	code := env.storedCode(t, "dave@example.com")

	t.Run("verified account cannot request a code", func(t *testing.T) {
		_, err := env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{Email: "dave@example.com", Code: code})
		require.NoError(t, err)

		err = env.svc.ResendOTP(context.Background(), &models.ResendOTPRequest{Email: "dave@example.com"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyVerified))
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		err := env.svc.ResendOTP(context.Background(), &models.ResendOTPRequest{Email: "nobody@example.com"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "erin@example.com")

	t.Run("unverified account is refused", func(t *testing.T) {
		_, err := env.svc.Login(context.Background(), &models.LoginRequest{
			Email: "erin@example.com", Password: "correct horse battery",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	_, err := env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{
		Email: "erin@example.com", Code: env.storedCode(t, "erin@example.com"),
	})
	require.NoError(t, err)

	t.Run("verified account gets a token pair", func(t *testing.T) {
		result, err := env.svc.Login(context.Background(), &models.LoginRequest{
			Email: "erin@example.com", Password: "correct horse battery",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Tokens.AccessToken)
		assert.NotEmpty(t, result.Tokens.RefreshToken)
		assert.True(t, result.User.IsVerified)
	})

	t.Run("wrong password and unknown email get the same answer", func(t *testing.T) {
		_, badPw := env.svc.Login(context.Background(), &models.LoginRequest{
			Email: "erin@example.com", Password: "wrong password!",
		})
		_, noUser := env.svc.Login(context.Background(), &models.LoginRequest{
			Email: "ghost@example.com", Password: "wrong password!",
		})
		require.Error(t, badPw)
		require.Error(t, noUser)
		assert.Equal(t, dErrors.MessageOf(badPw), dErrors.MessageOf(noUser))
	})
}

func TestRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "frank@example.com")
	_, err := env.svc.VerifyOTP(context.Background(), &models.VerifyOTPRequest{
		Email: "frank@example.com", Code: env.storedCode(t, "frank@example.com"),
	})
	require.NoError(t, err)

	login := func(t *testing.T) *LoginResult {
		result, err := env.svc.Login(context.Background(), &models.LoginRequest{
			Email: "frank@example.com", Password: "correct horse battery",
		})
		require.NoError(t, err)
		return result
	}

	t.Run("refresh rotates the token", func(t *testing.T) {
		result := login(t)

		pair, err := env.svc.Refresh(context.Background(), &models.RefreshRequest{Refresh: result.Tokens.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)

		// The old refresh token is spent.
		_, err = env.svc.Refresh(context.Background(), &models.RefreshRequest{Refresh: result.Tokens.RefreshToken})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		result := login(t)

		require.NoError(t, env.svc.Logout(context.Background(), &models.RefreshRequest{Refresh: result.Tokens.RefreshToken}))

		_, err := env.svc.Refresh(context.Background(), &models.RefreshRequest{Refresh: result.Tokens.RefreshToken})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("access token is not accepted as refresh", func(t *testing.T) {
		result := login(t)
		_, err := env.svc.Refresh(context.Background(), &models.RefreshRequest{Refresh: result.Tokens.AccessToken})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestAdminCreateUser(t *testing.T) {
	t.Run("account is verified immediately and can log in", func(t *testing.T) {
		env := newTestEnv(t)

		resp, err := env.svc.AdminCreateUser(context.Background(), &models.AdminCreateRequest{
			RegisterRequest: *registerReq("grace@example.com"),
			IsStaff:         true,
		})
		require.NoError(t, err)
		assert.True(t, resp.IsVerified)
		assert.True(t, resp.IsStaff)

		// No code was dispatched.
		assert.Empty(t, env.mailer.Messages())

		_, err = env.svc.Login(context.Background(), &models.LoginRequest{
			Email: "grace@example.com", Password: "correct horse battery",
		})
		require.NoError(t, err)
	})

	t.Run("duplicate email is a validation error", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "heidi@example.com")

		_, err := env.svc.AdminCreateUser(context.Background(), &models.AdminCreateRequest{
			RegisterRequest: *registerReq("heidi@example.com"),
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
