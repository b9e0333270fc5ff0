// Package store persists the public site content. Implementations return
// pkg/platform/sentinel errors; the service layer translates them into
// domain errors. Interface method names are entity-qualified so a single
// backing store can satisfy all of them.
package store

import (
	"context"

	"github.com/google/uuid"

	"lawclinic/internal/sitesettings/models"
	"lawclinic/pkg/pagination"
)

// GalleryFilter narrows a gallery listing.
type GalleryFilter struct {
	Department string
	IsPrevious *bool
	Year       *int
	// Search matches title and description case-insensitively.
	Search string
	// OrderBy is one of ordering, title, year, created_at, optionally
	// prefixed with '-'. Empty means ordering then title.
	OrderBy string
}

// SponsorFilter narrows a sponsor listing.
type SponsorFilter struct {
	Type   string
	Search string
}

type AppDataStore interface {
	CreateAppData(ctx context.Context, d *models.AppData) error
	FindAppDataByID(ctx context.Context, id uuid.UUID) (*models.AppData, error)
	UpdateAppData(ctx context.Context, d *models.AppData) error
	DeleteAppData(ctx context.Context, id uuid.UUID) error
	ListAppData(ctx context.Context) ([]*models.AppData, error)
}

type GalleryStore interface {
	CreateGallery(ctx context.Context, g *models.Gallery) error
	FindGalleryByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error)
	UpdateGallery(ctx context.Context, g *models.Gallery) error
	// DeleteGallery removes the gallery and all of its images.
	DeleteGallery(ctx context.Context, id uuid.UUID) error
	ListGalleries(ctx context.Context, f GalleryFilter, page pagination.Params) ([]*models.Gallery, int, error)

	CreateGalleryImage(ctx context.Context, img *models.GalleryImage) error
	FindGalleryImageByID(ctx context.Context, id uuid.UUID) (*models.GalleryImage, error)
	UpdateGalleryImage(ctx context.Context, img *models.GalleryImage) error
	DeleteGalleryImage(ctx context.Context, id uuid.UUID) error
	// ListGalleryImages returns images ordered by their ordering field,
	// optionally restricted to one gallery.
	ListGalleryImages(ctx context.Context, galleryID *uuid.UUID, page pagination.Params) ([]*models.GalleryImage, int, error)
}

type SponsorStore interface {
	CreateSponsor(ctx context.Context, s *models.Sponsor) error
	FindSponsorByID(ctx context.Context, id uuid.UUID) (*models.Sponsor, error)
	UpdateSponsor(ctx context.Context, s *models.Sponsor) error
	DeleteSponsor(ctx context.Context, id uuid.UUID) error
	ListSponsors(ctx context.Context, f SponsorFilter, page pagination.Params) ([]*models.Sponsor, int, error)
}

type TestimonialStore interface {
	CreateTestimonial(ctx context.Context, tm *models.Testimonial) error
	FindTestimonialByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error)
	UpdateTestimonial(ctx context.Context, tm *models.Testimonial) error
	DeleteTestimonial(ctx context.Context, id uuid.UUID) error
	ListTestimonials(ctx context.Context, search string, page pagination.Params) ([]*models.Testimonial, int, error)
}
