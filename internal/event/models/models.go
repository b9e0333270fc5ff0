// Package models holds the event, event category, and registration entities
// and their wire shapes.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	dErrors "lawclinic/pkg/domain-errors"
	strutil "lawclinic/pkg/platform/strings"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusPostponed  = "postponed"
)

func validStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled, StatusPostponed:
		return true
	}
	return false
}

// Category groups events.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Event is a clinic activity people can attend and, when required,
// register for. MaxParticipants of zero means unlimited.
type Event struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Description      string     `json:"description"`
	ShortDescription string     `json:"short_description,omitempty"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	Location         string     `json:"location,omitempty"`
	VirtualLink      string     `json:"virtual_link,omitempty"`
	CategoryID       *uuid.UUID `json:"category_id"`
	Image            string     `json:"image,omitempty"`
	OrganizerID      *uuid.UUID `json:"organizer_id"`

	MaxParticipants      int        `json:"max_participants"`
	RegistrationRequired bool       `json:"registration_required"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`

	Status   string `json:"status"`
	Featured bool   `json:"featured"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsUpcoming reports whether the event has not started yet.
func (e *Event) IsUpcoming(now time.Time) bool { return e.StartDate.After(now) }

// IsOngoing reports whether now falls inside the event window.
func (e *Event) IsOngoing(now time.Time) bool {
	return !now.Before(e.StartDate) && !now.After(e.EndDate)
}

// RegistrationClosed reports whether the registration deadline has passed.
// Events without a deadline stay open.
func (e *Event) RegistrationClosed(now time.Time) bool {
	if !e.RegistrationRequired || e.RegistrationDeadline == nil {
		return false
	}
	return now.After(*e.RegistrationDeadline)
}

// SlugCandidate derives the nth slug attempt for a title: the plain slug
// first, then -1, -2, ... until an unused one is found.
func SlugCandidate(title string, n int) string {
	base := strutil.Slugify(title)
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// Registration links a user to an event.
type Registration struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"event_id"`
	UserID       uuid.UUID `json:"user_id"`
	Attended     bool      `json:"attended"`
	Notes        string    `json:"notes,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// CreateRequest creates an event.
type CreateRequest struct {
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	ShortDescription     string     `json:"short_description"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              time.Time  `json:"end_date"`
	Location             string     `json:"location"`
	VirtualLink          string     `json:"virtual_link"`
	CategoryID           *uuid.UUID `json:"category_id"`
	Image                string     `json:"image"`
	MaxParticipants      int        `json:"max_participants"`
	RegistrationRequired bool       `json:"registration_required"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Status               string     `json:"status"`
	Featured             bool       `json:"featured"`
}

func (r *CreateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Status == "" {
		r.Status = StatusScheduled
	}
}

func (r *CreateRequest) Validate() error {
	if !govalidator.StringLength(r.Title, "1", "255") {
		return dErrors.New(dErrors.CodeValidation, "title is required and must be at most 255 characters")
	}
	if strings.TrimSpace(r.Description) == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "start_date and end_date are required")
	}
	if r.EndDate.Before(r.StartDate) {
		return dErrors.New(dErrors.CodeValidation, "end_date must not be before start_date")
	}
	if !validStatus(r.Status) {
		return dErrors.New(dErrors.CodeValidation, "invalid status")
	}
	if r.VirtualLink != "" && !govalidator.IsURL(r.VirtualLink) {
		return dErrors.New(dErrors.CodeValidation, "virtual_link must be a URL")
	}
	if r.MaxParticipants < 0 {
		return dErrors.New(dErrors.CodeValidation, "max_participants cannot be negative")
	}
	return nil
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	ShortDescription     *string    `json:"short_description"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	Location             *string    `json:"location"`
	VirtualLink          *string    `json:"virtual_link"`
	CategoryID           *uuid.UUID `json:"category_id"`
	Image                *string    `json:"image"`
	MaxParticipants      *int       `json:"max_participants"`
	RegistrationRequired *bool      `json:"registration_required"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Status               *string    `json:"status"`
	Featured             *bool      `json:"featured"`
}

func (r *UpdateRequest) Validate() error {
	if r.Title != nil && !govalidator.StringLength(*r.Title, "1", "255") {
		return dErrors.New(dErrors.CodeValidation, "title must be at most 255 characters")
	}
	if r.Status != nil && !validStatus(*r.Status) {
		return dErrors.New(dErrors.CodeValidation, "invalid status")
	}
	if r.VirtualLink != nil && *r.VirtualLink != "" && !govalidator.IsURL(*r.VirtualLink) {
		return dErrors.New(dErrors.CodeValidation, "virtual_link must be a URL")
	}
	return nil
}

// CategoryRequest creates or updates an event category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *CategoryRequest) Normalize() { r.Name = strings.TrimSpace(r.Name) }

func (r *CategoryRequest) Validate() error {
	if !govalidator.StringLength(r.Name, "1", "100") {
		return dErrors.New(dErrors.CodeValidation, "name is required and must be at most 100 characters")
	}
	return nil
}

// RegisterRequest carries optional registrant notes.
type RegisterRequest struct {
	Notes string `json:"notes"`
}

// RegistrationStatus answers a check-registration query.
type RegistrationStatus struct {
	Registered   bool          `json:"registered"`
	Registration *Registration `json:"registration,omitempty"`
}
