package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"lawclinic/internal/account/models"
	"lawclinic/internal/account/store"
	"lawclinic/internal/account/store/revocation/mocks"
	jwttoken "lawclinic/internal/jwt_token"
	"lawclinic/internal/notification"
	dErrors "lawclinic/pkg/domain-errors"
)

// The memory revocation list never fails, so the error paths around the
// revocation store are exercised against a gomock stand-in instead.
func newMockRevocationEnv(t *testing.T) (*Service, *mocks.MockStore) {
	t.Helper()

	ctrl := gomock.NewController(t)
	revocations := mocks.NewMockStore(ctrl)
	tokens := jwttoken.NewJWTService("test-signing-key", "lawclinic", "lawclinic-web",
		15*time.Minute, 7*24*time.Hour)

	svc := New(Config{
		Users:       store.NewInMemoryUserStore(),
		Revocations: revocations,
		Tokens:      tokens,
		Mailer:      notification.NewMemoryMailer(),
		Logger:      slog.New(slog.NewTextHandler(testWriter{t}, nil)),
	})
	return svc, revocations
}

func TestLogoutRevocationStore(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes the presented token id for its remaining lifetime", func(t *testing.T) {
		svc, revocations := newMockRevocationEnv(t)

		pair, err := svc.tokens.GeneratePair(uuid.New(), false)
		require.NoError(t, err)
		claims, err := svc.tokens.ValidateToken(pair.RefreshToken, jwttoken.TokenTypeRefresh)
		require.NoError(t, err)

		revocations.EXPECT().Revoke(gomock.Any(), claims.ID, gomock.Any()).Return(nil)
		require.NoError(t, svc.Logout(ctx, &models.RefreshRequest{Refresh: pair.RefreshToken}))
	})

	t.Run("store failure surfaces as an internal error", func(t *testing.T) {
		svc, revocations := newMockRevocationEnv(t)

		pair, err := svc.tokens.GeneratePair(uuid.New(), false)
		require.NoError(t, err)

		revocations.EXPECT().Revoke(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("redis: connection refused"))

		err = svc.Logout(ctx, &models.RefreshRequest{Refresh: pair.RefreshToken})
		require.Error(t, err)
		require.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func TestRefreshRevocationStore(t *testing.T) {
	ctx := context.Background()

	t.Run("revocation check failure surfaces as an internal error", func(t *testing.T) {
		svc, revocations := newMockRevocationEnv(t)

		pair, err := svc.tokens.GeneratePair(uuid.New(), false)
		require.NoError(t, err)

		revocations.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).
			Return(false, errors.New("redis: connection refused"))

		_, err = svc.Refresh(ctx, &models.RefreshRequest{Refresh: pair.RefreshToken})
		require.Error(t, err)
		require.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("a token already on the list is refused", func(t *testing.T) {
		svc, revocations := newMockRevocationEnv(t)

		pair, err := svc.tokens.GeneratePair(uuid.New(), false)
		require.NoError(t, err)

		revocations.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err = svc.Refresh(ctx, &models.RefreshRequest{Refresh: pair.RefreshToken})
		require.Error(t, err)
		require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
