// Package service implements account registration, OTP verification, and
// session management on top of the UserStore seam.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lawclinic/internal/account/models"
	"lawclinic/internal/account/store"
	"lawclinic/internal/account/store/revocation"
	jwttoken "lawclinic/internal/jwt_token"
	"lawclinic/internal/notification"
	"lawclinic/internal/platform/metrics"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/email"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

const defaultDispatchTimeout = 10 * time.Second

// Service carries the account use cases. All state lives behind the store
// and revocation interfaces; Service itself is safe for concurrent use.
type Service struct {
	users       store.UserStore
	revocations revocation.Store
	tokens      *jwttoken.JWTService
	mailer      notification.Mailer
	logger      *slog.Logger
	metrics     *metrics.Metrics

	otpLength   int
	otpValidity time.Duration

	// dispatchTimeout bounds the detached email send after issuance.
	dispatchTimeout time.Duration
}

// Config wires the service's collaborators.
type Config struct {
	Users       store.UserStore
	Revocations revocation.Store
	Tokens      *jwttoken.JWTService
	Mailer      notification.Mailer
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	OTPLength   int
	OTPValidity time.Duration
}

func New(cfg Config) *Service {
	if cfg.OTPLength <= 0 {
		cfg.OTPLength = 6
	}
	if cfg.OTPValidity <= 0 {
		cfg.OTPValidity = 10 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		users:           cfg.Users,
		revocations:     cfg.Revocations,
		tokens:          cfg.Tokens,
		mailer:          cfg.Mailer,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		otpLength:       cfg.OTPLength,
		otpValidity:     cfg.OTPValidity,
		dispatchTimeout: defaultDispatchTimeout,
	}
}

// Register creates an unverified account and issues its first one-time code.
// A taken email or username is reported as a validation failure so the
// endpoint answers 400, matching what the API has always returned.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
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

	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}
	s.logger.InfoContext(ctx, "account registered", "user_id", user.ID, "email", user.Email)

	if _, err := s.IssueCode(ctx, user.Email); err != nil {
		// The account exists; the user can ask for a new code.
		s.logger.ErrorContext(ctx, "failed to issue code after registration", "error", err, "email", user.Email)
	}

	return models.NewUserResponse(user), nil
}

// CurrentUser returns the profile of the authenticated account.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return models.NewUserResponse(user), nil
}

// UpdateProfile applies a partial update to the authenticated account.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	applyProfileUpdate(user, req)
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeValidation, "username already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
	}

	return models.NewUserResponse(user), nil
}

func applyProfileUpdate(user *models.User, req *models.UpdateProfileRequest) {
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
}

// ListUsers returns a page of accounts with the total count, staff only.
func (s *Service) ListUsers(ctx context.Context, p pagination.Params) ([]*models.UserResponse, int, error) {
	users, total, err := s.users.List(ctx, p)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	out := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, models.NewUserResponse(u))
	}
	return out, total, nil
}
