package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lawclinic/internal/account/models"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/email"
	"lawclinic/pkg/platform/sentinel"
)

// AdminCreateUser creates a verified, active account without the OTP
// handshake, staff only.
func (s *Service) AdminCreateUser(ctx context.Context, req *models.AdminCreateRequest) (*models.UserResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	firstName, lastName := req.FirstName, req.LastName
	if firstName == "" && lastName == "" {
		firstName, lastName = email.DeriveNameFromEmail(req.Email)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		PhoneNumber:  req.PhoneNumber,
		IsVerified:   true,
		IsStaff:      req.IsStaff,
		IsActive:     true,
		DateJoined:   now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeValidation, "an account with this email or username already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	s.logger.InfoContext(ctx, "account created by staff", "user_id", user.ID)
	return models.NewUserResponse(user), nil
}

// GetUser returns any account by ID, staff only.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return models.NewUserResponse(user), nil
}

// AdminUpdateUser applies a partial update including role flags, staff only.
func (s *Service) AdminUpdateUser(ctx context.Context, id uuid.UUID, req *models.AdminUpdateRequest) (*models.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	applyProfileUpdate(user, &req.UpdateProfileRequest)
	if req.IsStaff != nil {
		user.IsStaff = *req.IsStaff
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeValidation, "username already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
	}

	s.logger.InfoContext(ctx, "account updated by staff", "user_id", user.ID)
	return models.NewUserResponse(user), nil
}

// DeleteUser removes an account, staff only.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete account")
	}
	s.logger.InfoContext(ctx, "account deleted", "user_id", id)
	return nil
}

// UsersOverview returns registration totals for the staff dashboard.
func (s *Service) UsersOverview(ctx context.Context) (*models.Overview, error) {
	ov, err := s.users.Overview(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build overview")
	}
	return ov, nil
}
