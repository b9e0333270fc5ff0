package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lawclinic/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
	time.Hour,
	24*time.Hour,
)
var userID = uuid.New()

func Test_GeneratePair(t *testing.T) {
	pair, err := jwtService.GeneratePair(userID, true)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 3600, pair.ExpiresIn)

	claims, err := jwtService.ValidateToken(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.True(t, claims.IsStaff)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	refreshClaims, err := jwtService.ValidateToken(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims.TokenType)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string", TokenTypeAccess)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongType(t *testing.T) {
	pair, err := jwtService.GeneratePair(userID, false)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(pair.RefreshToken, TokenTypeAccess)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	expired := NewJWTService("test-signing-key", "test-issuer", "test-audience", -time.Hour, -time.Hour)
	pair, err := expired.GeneratePair(userID, false)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(pair.AccessToken, TokenTypeAccess)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_RemainingTTL(t *testing.T) {
	pair, err := jwtService.GeneratePair(userID, false)
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)

	ttl := jwtService.RemainingTTL(claims)
	assert.Greater(t, ttl, 23*time.Hour)
	assert.LessOrEqual(t, ttl, 24*time.Hour)
}
