// Package service implements the help request use cases. Submission is
// open to the public; everything else sits behind authentication at the
// transport layer.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"lawclinic/internal/helprequest/models"
	"lawclinic/internal/helprequest/store"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// recentWindow bounds the recent-count statistic.
const recentWindow = 30 * 24 * time.Hour

// Service carries the help request use cases.
type Service struct {
	requests store.Store
	logger   *slog.Logger
	now      func() time.Time
}

func New(requests store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{requests: requests, logger: logger, now: time.Now}
}

// ListParams mirrors the listing query string.
type ListParams struct {
	LegalIssueType  string
	HadPreviousHelp string
	Search          string
}

func ListParamsFromQuery(r *http.Request) ListParams {
	q := r.URL.Query()
	return ListParams{
		LegalIssueType:  q.Get("legal_issue_type"),
		HadPreviousHelp: q.Get("had_previous_help"),
		Search:          q.Get("search"),
	}
}

// Submit records a new help request.
func (s *Service) Submit(ctx context.Context, req *models.CreateRequest) (*models.HelpRequest, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	hr := &models.HelpRequest{
		ID:              uuid.New(),
		FullName:        req.FullName,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		LegalIssueType:  req.LegalIssueType,
		HadPreviousHelp: req.HadPreviousHelp,
		Description:     req.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.requests.Create(ctx, hr); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to submit help request")
	}
	return hr, nil
}

// List returns help requests newest first.
func (s *Service) List(ctx context.Context, params ListParams, page pagination.Params) ([]*models.HelpRequest, int, error) {
	f := store.Filter{
		LegalIssueType:  params.LegalIssueType,
		HadPreviousHelp: params.HadPreviousHelp,
		Search:          params.Search,
	}
	out, total, err := s.requests.List(ctx, f, page)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list help requests")
	}
	return out, total, nil
}

// Get returns one help request by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error) {
	hr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "help request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load help request")
	}
	return hr, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *models.UpdateRequest) (*models.HelpRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		hr.FullName = *req.FullName
	}
	if req.Email != nil {
		hr.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		hr.PhoneNumber = *req.PhoneNumber
	}
	if req.LegalIssueType != nil {
		hr.LegalIssueType = *req.LegalIssueType
	}
	if req.HadPreviousHelp != nil {
		hr.HadPreviousHelp = *req.HadPreviousHelp
	}
	if req.Description != nil {
		hr.Description = *req.Description
	}
	hr.UpdatedAt = s.now()

	if err := s.requests.Update(ctx, hr); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update help request")
	}
	return hr, nil
}

// Delete removes a help request.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.requests.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "help request not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete help request")
	}
	return nil
}

// Statistics summarizes the backlog for the staff dashboard.
func (s *Service) Statistics(ctx context.Context) (*models.Stats, error) {
	stats, err := s.requests.Stats(ctx, s.now().Add(-recentWindow))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build help request statistics")
	}
	return stats, nil
}
