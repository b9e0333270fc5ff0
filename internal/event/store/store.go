// Package store persists events, event categories, and registrations.
// Implementations return pkg/platform/sentinel errors; the service layer
// translates them into domain errors.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lawclinic/internal/event/models"
	"lawclinic/pkg/pagination"
)

// Periods for time-window filtering.
const (
	PeriodUpcoming = "upcoming"
	PeriodPast     = "past"
	PeriodToday    = "today"
)

// Filter narrows an event listing.
type Filter struct {
	// Period is one of the Period constants, evaluated against Now.
	Period string
	Now    time.Time

	CategoryID *uuid.UUID
	Status     string
	Featured   *bool
	// Search matches title, description, and location case-insensitively.
	Search string
	// OrderBy is one of start_date, created_at, title, optionally prefixed
	// with '-' for descending. Empty means -start_date.
	OrderBy string
}

type EventStore interface {
	Create(ctx context.Context, e *models.Event) error
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	// SlugExists reports whether any event carries the slug. Creation uses
	// it to pick the first free -n suffix.
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, page pagination.Params) ([]*models.Event, int, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

type RegistrationStore interface {
	// CreateRegistration inserts atomically against the event's capacity:
	// sentinel.ErrInvalidState when the event is full (maxParticipants > 0),
	// sentinel.ErrConflict when the user is already registered.
	CreateRegistration(ctx context.Context, r *models.Registration, maxParticipants int) error
	FindRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error)
	FindRegistrationByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	DeleteRegistration(ctx context.Context, eventID, userID uuid.UUID) error
	UpdateRegistration(ctx context.Context, r *models.Registration) error
	CountRegistrations(ctx context.Context, eventID uuid.UUID) (int, error)
	ListRegistrationsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Registration, error)
}
