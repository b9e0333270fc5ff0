// Package service implements the publication use cases: authoring,
// visibility, view counting, and comments.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"lawclinic/internal/publication/models"
	"lawclinic/internal/publication/store"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

const featuredLimit = 5

// Viewer identifies the caller for visibility decisions. The zero value is
// an anonymous reader.
type Viewer struct {
	ID      uuid.UUID
	IsStaff bool
}

func (v Viewer) authenticated() bool { return v.ID != uuid.Nil }

// Service carries the publication use cases.
type Service struct {
	publications store.PublicationStore
	categories   store.CategoryStore
	comments     store.CommentStore
	logger       *slog.Logger
}

func New(publications store.PublicationStore, categories store.CategoryStore, comments store.CommentStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		publications: publications,
		categories:   categories,
		comments:     comments,
		logger:       logger,
	}
}

// ListParams mirrors the listing query string.
type ListParams struct {
	Status       string
	CategorySlug string
	Featured     *bool
	Search       string
	OrderBy      string
}

// ListParamsFromQuery reads the supported filter parameters.
func ListParamsFromQuery(r *http.Request) ListParams {
	q := r.URL.Query()
	p := ListParams{
		Status:       q.Get("status"),
		CategorySlug: q.Get("category"),
		Search:       q.Get("search"),
		OrderBy:      q.Get("ordering"),
	}
	if v := q.Get("is_featured"); v == "true" || v == "false" {
		featured := v == "true"
		p.Featured = &featured
	}
	return p
}

// List returns the publications the viewer may see: published work for
// everyone, the viewer's own drafts on top, everything for staff.
func (s *Service) List(ctx context.Context, viewer Viewer, params ListParams, page pagination.Params) ([]*models.Publication, int, error) {
	f := store.Filter{
		AllStatuses:  viewer.IsStaff,
		Status:       params.Status,
		CategorySlug: params.CategorySlug,
		Featured:     params.Featured,
		Search:       params.Search,
		OrderBy:      params.OrderBy,
	}
	if viewer.authenticated() && !viewer.IsStaff {
		id := viewer.ID
		f.ViewerID = &id
	}

	pubs, total, err := s.publications.List(ctx, f, page)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list publications")
	}
	return pubs, total, nil
}

// Get returns a publication by slug, applying the same visibility rules as
// List and bumping the view counter for readers other than the author.
func (s *Service) Get(ctx context.Context, viewer Viewer, slug string) (*models.Publication, error) {
	pub, err := s.findVisible(ctx, viewer, slug)
	if err != nil {
		return nil, err
	}

	if viewer.ID != pub.AuthorID {
		if err := s.publications.IncrementViews(ctx, pub.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to increment views", "error", err, "slug", slug)
		} else {
			pub.ViewsCount++
		}
	}
	return pub, nil
}

func (s *Service) findVisible(ctx context.Context, viewer Viewer, slug string) (*models.Publication, error) {
	pub, err := s.publications.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "publication not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load publication")
	}
	if pub.Status != models.StatusPublished && !viewer.IsStaff && viewer.ID != pub.AuthorID {
		// Hidden work looks absent, not forbidden.
		return nil, dErrors.New(dErrors.CodeNotFound, "publication not found")
	}
	return pub, nil
}

// Create stores a new publication authored by the viewer. The slug,
// published-at stamp, and reading estimate are derived before the write.
func (s *Service) Create(ctx context.Context, viewer Viewer, req *models.CreateRequest) (*models.Publication, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	categories, err := s.resolveCategories(ctx, req.CategorySlugs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	allowComments := true
	if req.AllowComments != nil {
		allowComments = *req.AllowComments
	}

	pub := &models.Publication{
		ID:              uuid.New(),
		Title:           req.Title,
		Slug:            req.Slug,
		AuthorID:        viewer.ID,
		Categories:      categories,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		FeaturedImage:   req.FeaturedImage,
		Status:          req.Status,
		MinsRead:        req.MinsRead,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		Keywords:        req.Keywords,
		IsFeatured:      req.IsFeatured,
		AllowComments:   allowComments,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	pub.EnsureSlug()
	pub.StampPublishedAt(now)
	pub.EstimateMinsRead()

	if err := s.publications.Create(ctx, pub); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeValidation, "a publication with this slug already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create publication")
	}

	s.logger.InfoContext(ctx, "publication created", "publication_id", pub.ID, "slug", pub.Slug)
	return pub, nil
}

func (s *Service) resolveCategories(ctx context.Context, slugs []string) ([]models.Category, error) {
	if len(slugs) == 0 {
		return []models.Category{}, nil
	}
	categories, err := s.categories.FindCategoriesBySlugs(ctx, slugs)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown category")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve categories")
	}
	return categories, nil
}

// Update applies a partial update. Only the author or staff may edit.
func (s *Service) Update(ctx context.Context, viewer Viewer, slug string, req *models.UpdateRequest) (*models.Publication, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pub, err := s.findVisible(ctx, viewer, slug)
	if err != nil {
		return nil, err
	}
	if pub.AuthorID != viewer.ID && !viewer.IsStaff {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the author may edit this publication")
	}

	applyUpdate(pub, req)
	if req.CategorySlugs != nil {
		categories, err := s.resolveCategories(ctx, *req.CategorySlugs)
		if err != nil {
			return nil, err
		}
		pub.Categories = categories
	}
	now := time.Now()
	pub.StampPublishedAt(now)
	pub.UpdatedAt = now

	if err := s.publications.Update(ctx, pub); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeValidation, "a publication with this slug already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update publication")
	}
	return pub, nil
}

func applyUpdate(pub *models.Publication, req *models.UpdateRequest) {
	if req.Title != nil {
		pub.Title = *req.Title
	}
	if req.Content != nil {
		pub.Content = *req.Content
	}
	if req.Excerpt != nil {
		pub.Excerpt = *req.Excerpt
	}
	if req.FeaturedImage != nil {
		pub.FeaturedImage = *req.FeaturedImage
	}
	if req.Status != nil {
		pub.Status = *req.Status
	}
	if req.MinsRead != nil {
		pub.MinsRead = *req.MinsRead
	}
	if req.MetaTitle != nil {
		pub.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		pub.MetaDescription = *req.MetaDescription
	}
	if req.Keywords != nil {
		pub.Keywords = *req.Keywords
	}
	if req.IsFeatured != nil {
		pub.IsFeatured = *req.IsFeatured
	}
	if req.AllowComments != nil {
		pub.AllowComments = *req.AllowComments
	}
}

// Delete removes a publication. Only the author or staff may delete.
func (s *Service) Delete(ctx context.Context, viewer Viewer, slug string) error {
	pub, err := s.findVisible(ctx, viewer, slug)
	if err != nil {
		return err
	}
	if pub.AuthorID != viewer.ID && !viewer.IsStaff {
		return dErrors.New(dErrors.CodeForbidden, "only the author may delete this publication")
	}

	if err := s.publications.Delete(ctx, pub.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete publication")
	}
	s.logger.InfoContext(ctx, "publication deleted", "publication_id", pub.ID, "slug", slug)
	return nil
}

// Featured returns the newest published featured publications.
func (s *Service) Featured(ctx context.Context) ([]*models.Publication, error) {
	pubs, err := s.publications.ListFeatured(ctx, featuredLimit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list featured publications")
	}
	return pubs, nil
}

// Mine returns all of the viewer's publications, drafts included.
func (s *Service) Mine(ctx context.Context, viewer Viewer) ([]*models.Publication, error) {
	pubs, err := s.publications.ListByAuthor(ctx, viewer.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list publications")
	}
	return pubs, nil
}

// Stats returns the staff dashboard summary.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	stats, err := s.publications.Stats(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build statistics")
	}
	return stats, nil
}
