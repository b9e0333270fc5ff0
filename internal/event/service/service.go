// Package service implements the event use cases: scheduling, listing by
// time window, and attendee registration.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"lawclinic/internal/event/models"
	"lawclinic/internal/event/store"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// slugAttempts bounds the -n suffix search for colliding titles.
const slugAttempts = 100

// Viewer identifies the caller. The zero value is an anonymous reader.
type Viewer struct {
	ID      uuid.UUID
	IsStaff bool
}

func (v Viewer) authenticated() bool { return v.ID != uuid.Nil }

// Service carries the event use cases.
type Service struct {
	events        store.EventStore
	categories    store.CategoryStore
	registrations store.RegistrationStore
	logger        *slog.Logger
	now           func() time.Time
}

func New(events store.EventStore, categories store.CategoryStore, registrations store.RegistrationStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		events:        events,
		categories:    categories,
		registrations: registrations,
		logger:        logger,
		now:           time.Now,
	}
}

// ListParams mirrors the listing query string.
type ListParams struct {
	Period     string
	CategoryID *uuid.UUID
	Status     string
	Featured   *bool
	Search     string
	OrderBy    string
}

// ListParamsFromQuery reads the supported filter parameters. Unknown period
// and malformed category values are ignored rather than rejected.
func ListParamsFromQuery(r *http.Request) ListParams {
	q := r.URL.Query()
	p := ListParams{
		Status:  q.Get("status"),
		Search:  q.Get("search"),
		OrderBy: q.Get("ordering"),
	}
	switch q.Get("period") {
	case store.PeriodUpcoming, store.PeriodPast, store.PeriodToday:
		p.Period = q.Get("period")
	}
	if v := q.Get("category"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			p.CategoryID = &id
		}
	}
	if v := q.Get("featured"); v == "true" || v == "false" {
		featured := v == "true"
		p.Featured = &featured
	}
	return p
}

// List returns events matching the filters, newest start date first.
func (s *Service) List(ctx context.Context, params ListParams, page pagination.Params) ([]*models.Event, int, error) {
	f := store.Filter{
		Period:     params.Period,
		Now:        s.now(),
		CategoryID: params.CategoryID,
		Status:     params.Status,
		Featured:   params.Featured,
		Search:     params.Search,
		OrderBy:    params.OrderBy,
	}
	events, total, err := s.events.List(ctx, f, page)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return events, total, nil
}

// Get returns an event by slug.
func (s *Service) Get(ctx context.Context, slug string) (*models.Event, error) {
	event, err := s.events.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}
	return event, nil
}

// Create stores a new event organized by the viewer. Slug collisions are
// resolved by appending the first free numeric suffix.
func (s *Service) Create(ctx context.Context, viewer Viewer, req *models.CreateRequest) (*models.Event, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.categories.FindCategoryByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeValidation, "unknown category")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load category")
		}
	}

	slug, err := s.freeSlug(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	organizerID := viewer.ID
	event := &models.Event{
		ID:                   uuid.New(),
		Title:                req.Title,
		Slug:                 slug,
		Description:          req.Description,
		ShortDescription:     req.ShortDescription,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		Location:             req.Location,
		VirtualLink:          req.VirtualLink,
		CategoryID:           req.CategoryID,
		Image:                req.Image,
		OrganizerID:          &organizerID,
		MaxParticipants:      req.MaxParticipants,
		RegistrationRequired: req.RegistrationRequired,
		RegistrationDeadline: req.RegistrationDeadline,
		Status:               req.Status,
		Featured:             req.Featured,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.events.Create(ctx, event); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeValidation, "an event with this slug already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event")
	}
	return event, nil
}

func (s *Service) freeSlug(ctx context.Context, title string) (string, error) {
	for n := 0; n < slugAttempts; n++ {
		candidate := models.SlugCandidate(title, n)
		exists, err := s.events.SlugExists(ctx, candidate)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check slug")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "could not derive a unique slug for this title")
}

// Update applies a partial update. Only the organizer or staff may modify
// an event.
func (s *Service) Update(ctx context.Context, viewer Viewer, slug string, req *models.UpdateRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.requireOrganizer(viewer, event); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.categories.FindCategoryByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeValidation, "unknown category")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load category")
		}
	}

	applyUpdate(event, req)
	if event.EndDate.Before(event.StartDate) {
		return nil, dErrors.New(dErrors.CodeValidation, "end_date must not be before start_date")
	}
	event.UpdatedAt = s.now()

	if err := s.events.Update(ctx, event); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update event")
	}
	return event, nil
}

func applyUpdate(e *models.Event, req *models.UpdateRequest) {
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.ShortDescription != nil {
		e.ShortDescription = *req.ShortDescription
	}
	if req.StartDate != nil {
		e.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		e.EndDate = *req.EndDate
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.VirtualLink != nil {
		e.VirtualLink = *req.VirtualLink
	}
	if req.CategoryID != nil {
		e.CategoryID = req.CategoryID
	}
	if req.Image != nil {
		e.Image = *req.Image
	}
	if req.MaxParticipants != nil {
		e.MaxParticipants = *req.MaxParticipants
	}
	if req.RegistrationRequired != nil {
		e.RegistrationRequired = *req.RegistrationRequired
	}
	if req.RegistrationDeadline != nil {
		e.RegistrationDeadline = req.RegistrationDeadline
	}
	if req.Status != nil {
		e.Status = *req.Status
	}
	if req.Featured != nil {
		e.Featured = *req.Featured
	}
}

// Delete removes an event. Only the organizer or staff may delete it.
func (s *Service) Delete(ctx context.Context, viewer Viewer, slug string) error {
	event, err := s.Get(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.requireOrganizer(viewer, event); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, event.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete event")
	}
	return nil
}

func (s *Service) requireOrganizer(viewer Viewer, event *models.Event) error {
	if viewer.IsStaff {
		return nil
	}
	if event.OrganizerID != nil && *event.OrganizerID == viewer.ID {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "only the organizer may modify this event")
}
