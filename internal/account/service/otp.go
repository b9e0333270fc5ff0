package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"lawclinic/internal/account/models"
	"lawclinic/internal/notification"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/platform/sentinel"
)

// generateCode returns a fixed-length numeric code from crypto/rand.
// Leading zeros are preserved.
func (s *Service) generateCode() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(s.otpLength)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generating code: %w", err)
	}
	return fmt.Sprintf("%0*d", s.otpLength, n), nil
}

// IssueCode stores a fresh one-time code on the account, replacing any
// outstanding one, and dispatches it by email off the request path. The
// account lock is held only for the store write, never for the send.
func (s *Service) IssueCode(ctx context.Context, emailAddr string) (string, error) {
	code, err := s.generateCode()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate code")
	}

	issuedAt := time.Now()
	user, err := s.users.UpdateAtomic(ctx, emailAddr, func(u *models.User) error {
		if u.IsVerified {
			return dErrors.New(dErrors.CodeAlreadyVerified, "account is already verified")
		}
		u.OTPCode = &code
		u.OTPIssuedAt = &issuedAt
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		if dErrors.HasCode(err, dErrors.CodeAlreadyVerified) {
			return "", err
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store code")
	}

	if s.metrics != nil {
		s.metrics.CodesIssued.Inc()
	}
	s.logger.InfoContext(ctx, "verification code issued", "user_id", user.ID)

	s.dispatchCode(user.Email, code)
	return code, nil
}

// dispatchCode sends the code on a detached goroutine so a slow mail
// provider never blocks the caller. Failures are logged, not surfaced.
func (s *Service) dispatchCode(to, code string) {
	if s.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.dispatchTimeout)
		defer cancel()

		msg := notification.Message{
			To:      to,
			Subject: "Your verification code",
			Body: fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
				code, int(s.otpValidity.Minutes())),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.logger.Error("failed to send verification code", "error", err, "to", to)
		}
	}()
}

// ResendOTP issues a new code for an unverified account. The previous code
// stops working the moment the new one is stored.
func (s *Service) ResendOTP(ctx context.Context, req *models.ResendOTPRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := s.IssueCode(ctx, req.Email)
	return err
}

// VerifyOTP consumes a code and marks the account verified. The check and
// the state change happen inside one atomic read-modify-write, so a code is
// accepted at most once no matter how many requests race on it.
func (s *Service) VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) (*models.UserResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateAtomic(ctx, req.Email, func(u *models.User) error {
		if u.IsVerified {
			return dErrors.New(dErrors.CodeAlreadyVerified, "account is already verified")
		}
		if u.OTPCode == nil || u.OTPIssuedAt == nil {
			return dErrors.New(dErrors.CodeInvalidCode, "no verification code outstanding")
		}
		if time.Since(*u.OTPIssuedAt) > s.otpValidity {
			return dErrors.New(dErrors.CodeInvalidCode, "verification code has expired")
		}
		if *u.OTPCode != req.Code {
			return dErrors.New(dErrors.CodeInvalidCode, "invalid verification code")
		}
		u.OTPCode = nil
		u.OTPIssuedAt = nil
		u.IsVerified = true
		u.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		if dErrors.HasCode(err, dErrors.CodeAlreadyVerified) || dErrors.HasCode(err, dErrors.CodeInvalidCode) {
			if s.metrics != nil {
				s.metrics.CodesRejected.Inc()
			}
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify code")
	}

	if s.metrics != nil {
		s.metrics.AccountsVerified.Inc()
	}
	s.logger.InfoContext(ctx, "account verified", "user_id", user.ID)

	return models.NewUserResponse(user), nil
}
