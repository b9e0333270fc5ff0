package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawclinic/internal/helprequest/models"
	"lawclinic/internal/helprequest/store"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(store.NewInMemoryStore(), slog.New(slog.DiscardHandler))
}

func submit(t *testing.T, svc *Service, mutate func(*models.CreateRequest)) *models.HelpRequest {
	t.Helper()
	req := &models.CreateRequest{
		FullName:       "Amina Bello",
		Email:          "amina@example.com",
		LegalIssueType: "tenancy",
		Description:    "My landlord locked me out.",
	}
	if mutate != nil {
		mutate(req)
	}
	hr, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	return hr
}

func TestSubmit(t *testing.T) {
	svc := newTestService(t)

	t.Run("defaults previous help to no", func(t *testing.T) {
		hr := submit(t, svc, nil)
		assert.Equal(t, models.PreviousHelpNo, hr.HadPreviousHelp)
		assert.Equal(t, "amina@example.com", hr.Email)
	})

	t.Run("malformed input is refused", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*models.CreateRequest)
		}{
			{"missing name", func(r *models.CreateRequest) { r.FullName = " " }},
			{"bad email", func(r *models.CreateRequest) { r.Email = "not-an-email" }},
			{"missing issue type", func(r *models.CreateRequest) { r.LegalIssueType = "" }},
			{"bad previous help", func(r *models.CreateRequest) { r.HadPreviousHelp = "maybe" }},
			{"missing description", func(r *models.CreateRequest) { r.Description = "" }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				req := &models.CreateRequest{
					FullName:       "Amina Bello",
					Email:          "amina@example.com",
					LegalIssueType: "tenancy",
					Description:    "details",
				}
				tc.mutate(req)
				_, err := svc.Submit(context.Background(), req)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			})
		}
	})
}

func TestListAndFilter(t *testing.T) {
	svc := newTestService(t)
	submit(t, svc, nil)
	submit(t, svc, func(r *models.CreateRequest) {
		r.FullName = "Joseph Udo"
		r.Email = "joseph@example.com"
		r.LegalIssueType = "employment"
		r.HadPreviousHelp = models.PreviousHelpYes
		r.Description = "My employer withheld my final wages."
	})

	t.Run("filter by issue type", func(t *testing.T) {
		out, total, err := svc.List(context.Background(), ListParams{LegalIssueType: "employment"},
			pagination.Params{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "Joseph Udo", out[0].FullName)
	})

	t.Run("search matches description", func(t *testing.T) {
		_, total, err := svc.List(context.Background(), ListParams{Search: "landlord"},
			pagination.Params{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newTestService(t)
	hr := submit(t, svc, nil)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		phone := "+2348012345678"
		updated, err := svc.Update(context.Background(), hr.ID, &models.UpdateRequest{PhoneNumber: &phone})
		require.NoError(t, err)
		assert.Equal(t, phone, updated.PhoneNumber)
		assert.Equal(t, hr.FullName, updated.FullName)
	})

	t.Run("invalid update is refused", func(t *testing.T) {
		bad := "maybe"
		_, err := svc.Update(context.Background(), hr.ID, &models.UpdateRequest{HadPreviousHelp: &bad})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("delete round trip", func(t *testing.T) {
		require.NoError(t, svc.Delete(context.Background(), hr.ID))
		_, err := svc.Get(context.Background(), hr.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		err := svc.Delete(context.Background(), uuid.New())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestStatistics(t *testing.T) {
	svc := newTestService(t)
	for i := 0; i < 3; i++ {
		submit(t, svc, nil)
	}
	submit(t, svc, func(r *models.CreateRequest) {
		r.LegalIssueType = "employment"
		r.HadPreviousHelp = models.PreviousHelpYes
	})

	submit(t, svc, func(r *models.CreateRequest) { r.LegalIssueType = "probate" })

	// Move the clock past the recent window so nothing counts as recent.
	svc.now = func() time.Time { return time.Now().Add(45 * 24 * time.Hour) }

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalCount)
	assert.Zero(t, stats.RecentCount)
	assert.Equal(t, 1, stats.PreviousHelpYes)
	assert.Equal(t, 4, stats.PreviousHelpNo)
	require.NotEmpty(t, stats.ByIssueType)
	assert.Equal(t, models.IssueTypeCount{LegalIssueType: "tenancy", Count: 3}, stats.ByIssueType[0])
}
