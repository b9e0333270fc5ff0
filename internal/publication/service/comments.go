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

// AddComment attaches a comment to a publication. Comments by the
// publication's author are approved immediately; everyone else's await
// moderation. A parent comment must belong to the same publication.
func (s *Service) AddComment(ctx context.Context, viewer Viewer, slug string, req *models.CommentRequest) (*models.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pub, err := s.findVisible(ctx, viewer, slug)
	if err != nil {
		return nil, err
	}
	if !pub.AllowComments {
		return nil, dErrors.New(dErrors.CodeForbidden, "comments are not allowed on this publication")
	}

	if req.ParentID != nil {
		parent, err := s.comments.FindCommentByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeValidation, "parent comment not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load parent comment")
		}
		if parent.PublicationID != pub.ID {
			return nil, dErrors.New(dErrors.CodeValidation, "parent comment belongs to another publication")
		}
	}

	now := time.Now()
	comment := &models.Comment{
		ID:            uuid.New(),
		PublicationID: pub.ID,
		AuthorID:      viewer.ID,
		ParentID:      req.ParentID,
		Content:       req.Content,
		IsApproved:    viewer.ID == pub.AuthorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store comment")
	}
	return comment, nil
}

// ListComments returns a publication's comments. The author and staff see
// unapproved comments too.
func (s *Service) ListComments(ctx context.Context, viewer Viewer, slug string) ([]*models.Comment, error) {
	pub, err := s.findVisible(ctx, viewer, slug)
	if err != nil {
		return nil, err
	}

	includeUnapproved := viewer.IsStaff || viewer.ID == pub.AuthorID
	comments, err := s.comments.ListCommentsByPublication(ctx, pub.ID, includeUnapproved)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list comments")
	}
	return comments, nil
}
