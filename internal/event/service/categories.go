package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"lawclinic/internal/event/models"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/platform/sentinel"
)

// ListCategories returns all event categories ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list event categories")
	}
	return categories, nil
}

// GetCategory returns one event category by id.
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event category not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event category")
	}
	return category, nil
}

// CreateCategory stores a new event category.
func (s *Service) CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	category := &models.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event category")
	}
	return category, nil
}

// UpdateCategory replaces a category's name and description.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, req *models.CategoryRequest) (*models.Category, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = req.Name
	category.Description = req.Description
	category.UpdatedAt = s.now()

	if err := s.categories.UpdateCategory(ctx, category); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update event category")
	}
	return category, nil
}

// DeleteCategory removes a category. Events keep running without one.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "event category not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete event category")
	}
	return nil
}
