// Package models holds the account entity and the request/response shapes
// the auth endpoints exchange. Transfer structs are explicit per view; the
// entity itself never crosses the wire.
package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	dErrors "lawclinic/pkg/domain-errors"
)

// User is a registrable identity. OTPCode and OTPIssuedAt are set together
// while a verification challenge is outstanding and cleared together when it
// is consumed; a non-nil code always has a non-nil timestamp.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
	IsVerified   bool
	IsStaff      bool
	IsSuperuser  bool
	IsActive     bool
	OTPCode      *string
	OTPIssuedAt  *time.Time
	DateJoined   time.Time
	UpdatedAt    time.Time
}

// RegisterRequest is the payload for POST /auth/register/.
type RegisterRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// Normalize trims and lowercases identity fields before validation.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

// Validate checks field syntax. Uniqueness is the store's concern.
func (r *RegisterRequest) Validate() error {
	if !govalidator.StringLength(r.Email, "1", "255") || !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	if !govalidator.StringLength(r.Username, "3", "100") {
		return dErrors.New(dErrors.CodeValidation, "username must be between 3 and 100 characters")
	}
	if !govalidator.StringLength(r.Password, "8", "128") {
		return dErrors.New(dErrors.CodeValidation, "password must be between 8 and 128 characters")
	}
	if len(r.PhoneNumber) > 20 {
		return dErrors.New(dErrors.CodeValidation, "phone number too long")
	}
	return nil
}

// VerifyOTPRequest is the payload for POST /auth/verify-otp/.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r *VerifyOTPRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Code = strings.TrimSpace(r.Code)
}

func (r *VerifyOTPRequest) Validate() error {
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	if r.Code == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	return nil
}

// ResendOTPRequest is the payload for POST /auth/resend-otp/.
type ResendOTPRequest struct {
	Email string `json:"email"`
}

func (r *ResendOTPRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *ResendOTPRequest) Validate() error {
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	return nil
}

// LoginRequest is the payload for POST /auth/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// RefreshRequest carries a refresh token for POST /auth/refresh/ and
// POST /auth/logout/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

func (r *RefreshRequest) Validate() error {
	if strings.TrimSpace(r.Refresh) == "" {
		return dErrors.New(dErrors.CodeValidation, "refresh token is required")
	}
	return nil
}

// UpdateProfileRequest is a partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	Username    *string `json:"username"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Username != nil && !govalidator.StringLength(*r.Username, "3", "100") {
		return dErrors.New(dErrors.CodeValidation, "username must be between 3 and 100 characters")
	}
	if r.PhoneNumber != nil && len(*r.PhoneNumber) > 20 {
		return dErrors.New(dErrors.CodeValidation, "phone number too long")
	}
	return nil
}

// AdminCreateRequest creates an account on a user's behalf, staff only.
// Accounts created this way are verified immediately; no code is issued.
type AdminCreateRequest struct {
	RegisterRequest
	IsStaff bool `json:"is_staff"`
}

// AdminUpdateRequest extends profile updates with role flags, staff only.
type AdminUpdateRequest struct {
	UpdateProfileRequest
	IsStaff  *bool `json:"is_staff"`
	IsActive *bool `json:"is_active"`
}

// UserResponse is the detail view of an account. The password hash and OTP
// fields never leave the process.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number"`
	IsVerified  bool      `json:"is_verified"`
	IsStaff     bool      `json:"is_staff"`
	IsActive    bool      `json:"is_active"`
	DateJoined  time.Time `json:"date_joined"`
}

// NewUserResponse maps the entity to its wire shape.
func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		IsVerified:  u.IsVerified,
		IsStaff:     u.IsStaff,
		IsActive:    u.IsActive,
		DateJoined:  u.DateJoined,
	}
}

// Overview is the staff dashboard summary of registered accounts.
type Overview struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Staff    int `json:"staff"`
	Active   int `json:"active"`
}
