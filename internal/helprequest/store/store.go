// Package store persists help requests. Implementations return
// pkg/platform/sentinel errors; the service layer translates them into
// domain errors.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lawclinic/internal/helprequest/models"
	"lawclinic/pkg/pagination"
)

// Filter narrows a help request listing.
type Filter struct {
	LegalIssueType  string
	HadPreviousHelp string
	// Search matches full name, email, and description case-insensitively.
	Search string
}

type Store interface {
	Create(ctx context.Context, hr *models.HelpRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error)
	Update(ctx context.Context, hr *models.HelpRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns help requests newest first.
	List(ctx context.Context, f Filter, page pagination.Params) ([]*models.HelpRequest, int, error)
	// Stats counts the backlog; recentSince bounds the recent-count window.
	Stats(ctx context.Context, recentSince time.Time) (*models.Stats, error)
}
