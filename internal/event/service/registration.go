package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"lawclinic/internal/event/models"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/platform/sentinel"
)

// Register signs the viewer up for an event. Registration must be required
// and open, and the event must have room.
func (s *Service) Register(ctx context.Context, viewer Viewer, slug string, req *models.RegisterRequest) (*models.Registration, error) {
	event, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	if !event.RegistrationRequired {
		return nil, dErrors.New(dErrors.CodeValidation, "Registration is not required for this event.")
	}
	if event.RegistrationClosed(s.now()) {
		return nil, dErrors.New(dErrors.CodeValidation, "Registration for this event has closed.")
	}

	reg := &models.Registration{
		ID:           uuid.New(),
		EventID:      event.ID,
		UserID:       viewer.ID,
		RegisteredAt: s.now(),
	}
	if req != nil {
		reg.Notes = req.Notes
	}

	// Capacity and duplicate checks happen inside the store so concurrent
	// signups cannot oversubscribe the event.
	if err := s.registrations.CreateRegistration(ctx, reg, event.MaxParticipants); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeValidation, "This event has reached maximum capacity.")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeValidation, "You are already registered for this event.")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register for event")
	}
	return reg, nil
}

// Unregister removes the viewer's registration for an event.
func (s *Service) Unregister(ctx context.Context, viewer Viewer, slug string) error {
	event, err := s.Get(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.registrations.DeleteRegistration(ctx, event.ID, viewer.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeValidation, "You are not registered for this event.")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to unregister from event")
	}
	return nil
}

// CheckRegistration answers whether the viewer is registered for an event.
func (s *Service) CheckRegistration(ctx context.Context, viewer Viewer, slug string) (*models.RegistrationStatus, error) {
	event, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	reg, err := s.registrations.FindRegistration(ctx, event.ID, viewer.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &models.RegistrationStatus{Registered: false}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check registration")
	}
	return &models.RegistrationStatus{Registered: true, Registration: reg}, nil
}

// MyRegistrations lists the viewer's registrations, most recent first.
func (s *Service) MyRegistrations(ctx context.Context, viewer Viewer) ([]*models.Registration, error) {
	regs, err := s.registrations.ListRegistrationsByUser(ctx, viewer.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	return regs, nil
}

// MarkAttended records whether a registrant showed up. Staff only; the
// handler enforces the role.
func (s *Service) MarkAttended(ctx context.Context, registrationID uuid.UUID, attended bool) (*models.Registration, error) {
	reg, err := s.registrations.FindRegistrationByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	reg.Attended = attended
	if err := s.registrations.UpdateRegistration(ctx, reg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registration")
	}
	return reg, nil
}
