// Package models holds the legal help request entity and its wire shapes.
package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	dErrors "lawclinic/pkg/domain-errors"
)

// Answers to the previous-help question.
const (
	PreviousHelpYes = "yes"
	PreviousHelpNo  = "no"
)

// HelpRequest is a plea for legal assistance submitted through the public
// site. Submitters need no account, so contact details live on the record.
type HelpRequest struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	PhoneNumber     string    `json:"phone_number,omitempty"`
	LegalIssueType  string    `json:"legal_issue_type"`
	HadPreviousHelp string    `json:"had_previous_help"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateRequest submits a help request.
type CreateRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	LegalIssueType  string `json:"legal_issue_type"`
	HadPreviousHelp string `json:"had_previous_help"`
	Description     string `json:"description"`
}

func (r *CreateRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.LegalIssueType = strings.TrimSpace(r.LegalIssueType)
	if r.HadPreviousHelp == "" {
		r.HadPreviousHelp = PreviousHelpNo
	}
}

func (r *CreateRequest) Validate() error {
	if !govalidator.StringLength(r.FullName, "1", "255") {
		return dErrors.New(dErrors.CodeValidation, "full_name is required and must be at most 255 characters")
	}
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if !govalidator.StringLength(r.LegalIssueType, "1", "100") {
		return dErrors.New(dErrors.CodeValidation, "legal_issue_type is required and must be at most 100 characters")
	}
	if r.HadPreviousHelp != PreviousHelpYes && r.HadPreviousHelp != PreviousHelpNo {
		return dErrors.New(dErrors.CodeValidation, "had_previous_help must be yes or no")
	}
	if strings.TrimSpace(r.Description) == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	return nil
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	FullName        *string `json:"full_name"`
	Email           *string `json:"email"`
	PhoneNumber     *string `json:"phone_number"`
	LegalIssueType  *string `json:"legal_issue_type"`
	HadPreviousHelp *string `json:"had_previous_help"`
	Description     *string `json:"description"`
}

func (r *UpdateRequest) Validate() error {
	if r.FullName != nil && !govalidator.StringLength(*r.FullName, "1", "255") {
		return dErrors.New(dErrors.CodeValidation, "full_name must be at most 255 characters")
	}
	if r.Email != nil && !govalidator.IsEmail(*r.Email) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if r.HadPreviousHelp != nil && *r.HadPreviousHelp != PreviousHelpYes && *r.HadPreviousHelp != PreviousHelpNo {
		return dErrors.New(dErrors.CodeValidation, "had_previous_help must be yes or no")
	}
	return nil
}

// IssueTypeCount is one row of the statistics breakdown.
type IssueTypeCount struct {
	LegalIssueType string `json:"legal_issue_type"`
	Count          int    `json:"count"`
}

// Stats summarizes the help request backlog for the dashboard.
type Stats struct {
	TotalCount      int              `json:"total_count"`
	RecentCount     int              `json:"recent_count"`
	PreviousHelpYes int              `json:"previous_help_yes"`
	PreviousHelpNo  int              `json:"previous_help_no"`
	ByIssueType     []IssueTypeCount `json:"by_issue_type"`
}
