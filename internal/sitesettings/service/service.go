// Package service implements the public site content use cases. Reads are
// open to everyone; the transport layer restricts writes to staff.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"lawclinic/internal/sitesettings/models"
	"lawclinic/internal/sitesettings/store"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// Service carries the site content use cases.
type Service struct {
	appData      store.AppDataStore
	galleries    store.GalleryStore
	sponsors     store.SponsorStore
	testimonials store.TestimonialStore
	logger       *slog.Logger
	now          func() time.Time
}

func New(appData store.AppDataStore, galleries store.GalleryStore, sponsors store.SponsorStore, testimonials store.TestimonialStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		appData:      appData,
		galleries:    galleries,
		sponsors:     sponsors,
		testimonials: testimonials,
		logger:       logger,
		now:          time.Now,
	}
}

func translateLookup(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "%s not found", what)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+what)
}

// App data.

func (s *Service) ListAppData(ctx context.Context) ([]*models.AppData, error) {
	out, err := s.appData.ListAppData(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list app data")
	}
	return out, nil
}

func (s *Service) GetAppData(ctx context.Context, id uuid.UUID) (*models.AppData, error) {
	d, err := s.appData.FindAppDataByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err, "app data")
	}
	return d, nil
}

func (s *Service) CreateAppData(ctx context.Context, req *models.AppDataRequest) (*models.AppData, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	d := &models.AppData{
		ID:               uuid.New(),
		Name:             req.Name,
		LogoURL:          req.LogoURL,
		MissionStatement: req.MissionStatement,
		VisionStatement:  req.VisionStatement,
		Objectives:       req.Objectives,
		History:          req.History,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.appData.CreateAppData(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeValidation, "app data with this name already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create app data")
	}
	return d, nil
}

func (s *Service) UpdateAppData(ctx context.Context, id uuid.UUID, req *models.AppDataRequest) (*models.AppData, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, err := s.GetAppData(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Name = req.Name
	d.LogoURL = req.LogoURL
	d.MissionStatement = req.MissionStatement
	d.VisionStatement = req.VisionStatement
	d.Objectives = req.Objectives
	d.History = req.History
	d.UpdatedAt = s.now()

	if err := s.appData.UpdateAppData(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeValidation, "app data with this name already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update app data")
	}
	return d, nil
}

func (s *Service) DeleteAppData(ctx context.Context, id uuid.UUID) error {
	if err := s.appData.DeleteAppData(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "app data not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete app data")
	}
	return nil
}

// Galleries.

// GalleryParams mirrors the gallery listing query string.
type GalleryParams struct {
	Department string
	IsPrevious *bool
	Year       *int
	Search     string
	OrderBy    string
}

func GalleryParamsFromQuery(r *http.Request) GalleryParams {
	q := r.URL.Query()
	p := GalleryParams{
		Department: q.Get("department"),
		Search:     q.Get("search"),
		OrderBy:    q.Get("ordering"),
	}
	if v := q.Get("is_previous"); v == "true" || v == "false" {
		prev := v == "true"
		p.IsPrevious = &prev
	}
	if v := q.Get("year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			p.Year = &year
		}
	}
	return p
}

func (s *Service) ListGalleries(ctx context.Context, params GalleryParams, page pagination.Params) ([]*models.Gallery, int, error) {
	f := store.GalleryFilter{
		Department: params.Department,
		IsPrevious: params.IsPrevious,
		Year:       params.Year,
		Search:     params.Search,
		OrderBy:    params.OrderBy,
	}
	out, total, err := s.galleries.ListGalleries(ctx, f, page)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list galleries")
	}
	return out, total, nil
}

// GalleriesByDepartment is the department shortcut listing. An empty
// department is a validation error.
func (s *Service) GalleriesByDepartment(ctx context.Context, department string, page pagination.Params) ([]*models.Gallery, int, error) {
	if department == "" {
		return nil, 0, dErrors.New(dErrors.CodeValidation, "Department parameter is required.")
	}
	return s.ListGalleries(ctx, GalleryParams{Department: department}, page)
}

func (s *Service) GetGallery(ctx context.Context, id uuid.UUID) (*models.Gallery, error) {
	g, err := s.galleries.FindGalleryByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err, "gallery")
	}
	return g, nil
}

func (s *Service) CreateGallery(ctx context.Context, req *models.GalleryRequest) (*models.Gallery, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	g := &models.Gallery{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		IsPrevious:  req.IsPrevious,
		Year:        req.Year,
		Ordering:    req.Ordering,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.galleries.CreateGallery(ctx, g); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create gallery")
	}
	return g, nil
}

func (s *Service) UpdateGallery(ctx context.Context, id uuid.UUID, req *models.GalleryRequest) (*models.Gallery, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	g, err := s.GetGallery(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Title = req.Title
	g.Description = req.Description
	g.Department = req.Department
	g.IsPrevious = req.IsPrevious
	g.Year = req.Year
	g.Ordering = req.Ordering
	g.UpdatedAt = s.now()

	if err := s.galleries.UpdateGallery(ctx, g); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update gallery")
	}
	return g, nil
}

func (s *Service) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	if err := s.galleries.DeleteGallery(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "gallery not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete gallery")
	}
	return nil
}

// Gallery images.

func (s *Service) ListGalleryImages(ctx context.Context, galleryID *uuid.UUID, page pagination.Params) ([]*models.GalleryImage, int, error) {
	out, total, err := s.galleries.ListGalleryImages(ctx, galleryID, page)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list gallery images")
	}
	return out, total, nil
}

func (s *Service) GetGalleryImage(ctx context.Context, id uuid.UUID) (*models.GalleryImage, error) {
	img, err := s.galleries.FindGalleryImageByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err, "gallery image")
	}
	return img, nil
}

func (s *Service) CreateGalleryImage(ctx context.Context, req *models.GalleryImageRequest) (*models.GalleryImage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	img := &models.GalleryImage{
		ID:          uuid.New(),
		GalleryID:   req.GalleryID,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Instagram:   req.Instagram,
		XHandle:     req.XHandle,
		Facebook:    req.Facebook,
		Ordering:    req.Ordering,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.galleries.CreateGalleryImage(ctx, img); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown gallery")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create gallery image")
	}
	return img, nil
}

func (s *Service) UpdateGalleryImage(ctx context.Context, id uuid.UUID, req *models.GalleryImageRequest) (*models.GalleryImage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	img, err := s.GetGalleryImage(ctx, id)
	if err != nil {
		return nil, err
	}
	img.Title = req.Title
	img.Description = req.Description
	img.Image = req.Image
	img.Instagram = req.Instagram
	img.XHandle = req.XHandle
	img.Facebook = req.Facebook
	img.Ordering = req.Ordering
	img.UpdatedAt = s.now()

	if err := s.galleries.UpdateGalleryImage(ctx, img); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update gallery image")
	}
	return img, nil
}

func (s *Service) DeleteGalleryImage(ctx context.Context, id uuid.UUID) error {
	if err := s.galleries.DeleteGalleryImage(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "gallery image not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete gallery image")
	}
	return nil
}

// Sponsors.

func (s *Service) ListSponsors(ctx context.Context, sponsorType, search string, page pagination.Params) ([]*models.Sponsor, int, error) {
	out, total, err := s.sponsors.ListSponsors(ctx, store.SponsorFilter{Type: sponsorType, Search: search}, page)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sponsors")
	}
	return out, total, nil
}

// SponsorsByType is the type shortcut listing. An empty type is a
// validation error.
func (s *Service) SponsorsByType(ctx context.Context, sponsorType string, page pagination.Params) ([]*models.Sponsor, int, error) {
	if sponsorType == "" {
		return nil, 0, dErrors.New(dErrors.CodeValidation, "Type parameter is required.")
	}
	return s.ListSponsors(ctx, sponsorType, "", page)
}

func (s *Service) GetSponsor(ctx context.Context, id uuid.UUID) (*models.Sponsor, error) {
	sp, err := s.sponsors.FindSponsorByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err, "sponsor")
	}
	return sp, nil
}

func (s *Service) CreateSponsor(ctx context.Context, req *models.SponsorRequest) (*models.Sponsor, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	sp := &models.Sponsor{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		URL:         req.URL,
		Type:        req.Type,
		Ordering:    req.Ordering,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.sponsors.CreateSponsor(ctx, sp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create sponsor")
	}
	return sp, nil
}

func (s *Service) UpdateSponsor(ctx context.Context, id uuid.UUID, req *models.SponsorRequest) (*models.Sponsor, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sp, err := s.GetSponsor(ctx, id)
	if err != nil {
		return nil, err
	}
	sp.Name = req.Name
	sp.Description = req.Description
	sp.Image = req.Image
	sp.URL = req.URL
	sp.Type = req.Type
	sp.Ordering = req.Ordering
	sp.UpdatedAt = s.now()

	if err := s.sponsors.UpdateSponsor(ctx, sp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update sponsor")
	}
	return sp, nil
}

func (s *Service) DeleteSponsor(ctx context.Context, id uuid.UUID) error {
	if err := s.sponsors.DeleteSponsor(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "sponsor not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete sponsor")
	}
	return nil
}

// Testimonials.

func (s *Service) ListTestimonials(ctx context.Context, search string, page pagination.Params) ([]*models.Testimonial, int, error) {
	out, total, err := s.testimonials.ListTestimonials(ctx, search, page)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list testimonials")
	}
	return out, total, nil
}

func (s *Service) GetTestimonial(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	tm, err := s.testimonials.FindTestimonialByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err, "testimonial")
	}
	return tm, nil
}

func (s *Service) CreateTestimonial(ctx context.Context, req *models.TestimonialRequest) (*models.Testimonial, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	tm := &models.Testimonial{
		ID:         uuid.New(),
		Name:       req.Name,
		Occupation: req.Occupation,
		Quote:      req.Quote,
		Image:      req.Image,
		Category:   req.Category,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.testimonials.CreateTestimonial(ctx, tm); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create testimonial")
	}
	return tm, nil
}

func (s *Service) UpdateTestimonial(ctx context.Context, id uuid.UUID, req *models.TestimonialRequest) (*models.Testimonial, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tm, err := s.GetTestimonial(ctx, id)
	if err != nil {
		return nil, err
	}
	tm.Name = req.Name
	tm.Occupation = req.Occupation
	tm.Quote = req.Quote
	tm.Image = req.Image
	tm.Category = req.Category
	tm.UpdatedAt = s.now()

	if err := s.testimonials.UpdateTestimonial(ctx, tm); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update testimonial")
	}
	return tm, nil
}

func (s *Service) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	if err := s.testimonials.DeleteTestimonial(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "testimonial not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete testimonial")
	}
	return nil
}
