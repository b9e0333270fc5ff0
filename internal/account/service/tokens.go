package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lawclinic/internal/account/models"
	jwttoken "lawclinic/internal/jwt_token"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/platform/sentinel"
)

// LoginResult pairs the issued tokens with the profile they belong to.
type LoginResult struct {
	User   *models.UserResponse `json:"user"`
	Tokens *jwttoken.Pair       `json:"tokens"`
}

// Login checks credentials and issues a token pair. Unknown emails and bad
// passwords produce the same answer so the endpoint does not leak which
// accounts exist. Unverified and deactivated accounts are refused.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*LoginResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	if !user.IsVerified {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account is not verified")
	}
	if !user.IsActive {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account is deactivated")
	}

	pair, err := s.tokens.GeneratePair(user.ID, user.IsStaff)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue tokens")
	}

	s.logger.InfoContext(ctx, "login succeeded", "user_id", user.ID)
	return &LoginResult{User: models.NewUserResponse(user), Tokens: pair}, nil
}

// Refresh rotates a refresh token: the presented token is revoked for its
// remaining lifetime and a new pair is minted. A revoked or expired token
// is refused.
func (s *Service) Refresh(ctx context.Context, req *models.RefreshRequest) (*jwttoken.Pair, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.tokens.ValidateToken(req.Refresh, jwttoken.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check revocation list")
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "refresh token has been revoked")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if !user.IsActive {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account is deactivated")
	}

	if err := s.revocations.Revoke(ctx, claims.ID, s.tokens.RemainingTTL(claims)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to rotate refresh token")
	}

	pair, err := s.tokens.GeneratePair(user.ID, user.IsStaff)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue tokens")
	}
	return pair, nil
}

// Logout revokes the presented refresh token for its remaining lifetime.
// Logging out twice is fine; the second call is a no-op.
func (s *Service) Logout(ctx context.Context, req *models.RefreshRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	claims, err := s.tokens.ValidateToken(req.Refresh, jwttoken.TokenTypeRefresh)
	if err != nil {
		return err
	}

	if err := s.revocations.Revoke(ctx, claims.ID, s.tokens.RemainingTTL(claims)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke refresh token")
	}

	s.logger.InfoContext(ctx, "logout", "user_id", claims.UserID)
	return nil
}
