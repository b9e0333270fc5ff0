// Package store persists publications, categories, and comments.
// Implementations return pkg/platform/sentinel errors; the service layer
// translates them into domain errors.
package store

import (
	"context"

	"github.com/google/uuid"

	"lawclinic/internal/publication/models"
	"lawclinic/pkg/pagination"
)

// Filter narrows a publication listing. Visibility fields are set by the
// service from the caller's identity; the rest mirror the query string.
type Filter struct {
	// ViewerID widens the listing with that author's own non-published
	// work. Nil means anonymous.
	ViewerID *uuid.UUID
	// AllStatuses lifts the published-only restriction entirely (staff).
	AllStatuses bool

	Status       string
	CategorySlug string
	AuthorID     *uuid.UUID
	Featured     *bool
	// Search matches title, content, excerpt, and SEO fields,
	// case-insensitively.
	Search string
	// OrderBy is one of published_at, created_at, title, views_count,
	// optionally prefixed with '-' for descending. Empty means
	// -published_at.
	OrderBy string
}

type PublicationStore interface {
	Create(ctx context.Context, p *models.Publication) error
	FindBySlug(ctx context.Context, slug string) (*models.Publication, error)
	Update(ctx context.Context, p *models.Publication) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, page pagination.Params) ([]*models.Publication, int, error)
	// ListFeatured returns the newest published featured publications.
	ListFeatured(ctx context.Context, limit int) ([]*models.Publication, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Publication, error)
	// IncrementViews bumps the view counter store-side so concurrent reads
	// never lose an increment.
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*models.Stats, error)
}

// CategoryStore and CommentStore use entity-qualified method names so a
// single backing store can satisfy all three interfaces.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	// FindCategoriesBySlugs resolves a set of category slugs, rejecting
	// unknown ones with sentinel.ErrNotFound.
	FindCategoriesBySlugs(ctx context.Context, slugs []string) ([]models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	FindCommentByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	// ListCommentsByPublication returns approved comments, oldest first.
	// With includeUnapproved it returns everything (staff and author views).
	ListCommentsByPublication(ctx context.Context, publicationID uuid.UUID, includeUnapproved bool) ([]*models.Comment, error)
}
