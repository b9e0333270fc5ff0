package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"lawclinic/internal/publication/models"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/platform/sentinel"
)

// ListCategories returns all categories ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list categories")
	}
	return categories, nil
}

// GetCategory returns a category by slug.
func (s *Service) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	c, err := s.categories.FindCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "category not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load category")
	}
	return c, nil
}

// CreateCategory adds a category, deriving the slug from the name when
// absent.
func (s *Service) CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &models.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.EnsureSlug()

	if err := s.categories.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeValidation, "a category with this name or slug already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create category")
	}
	return c, nil
}

// UpdateCategory renames a category or changes its description.
func (s *Service) UpdateCategory(ctx context.Context, slug string, req *models.CategoryRequest) (*models.Category, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.GetCategory(ctx, slug)
	if err != nil {
		return nil, err
	}

	c.Name = req.Name
	if req.Slug != "" {
		c.Slug = req.Slug
	}
	c.Description = req.Description
	c.UpdatedAt = time.Now()

	if err := s.categories.UpdateCategory(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeValidation, "a category with this name or slug already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update category")
	}
	return c, nil
}

// DeleteCategory removes a category. Publications keep existing; the link
// rows go away with it.
func (s *Service) DeleteCategory(ctx context.Context, slug string) error {
	c, err := s.GetCategory(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.categories.DeleteCategory(ctx, c.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete category")
	}
	return nil
}
