package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawclinic/internal/event/models"
	"lawclinic/internal/event/store"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.InMemoryStore) {
	t.Helper()
	mem := store.NewInMemoryStore()
	svc := New(mem, mem, mem, slog.New(slog.DiscardHandler))
	svc.now = func() time.Time { return testNow }
	return svc, mem
}

func staffViewer() Viewer { return Viewer{ID: uuid.New(), IsStaff: true} }

func userViewer() Viewer { return Viewer{ID: uuid.New()} }

func createEvent(t *testing.T, svc *Service, viewer Viewer, mutate func(*models.CreateRequest)) *models.Event {
	t.Helper()
	req := &models.CreateRequest{
		Title:       "Legal Aid Workshop",
		Description: "Hands-on help with tenancy disputes.",
		StartDate:   testNow.Add(48 * time.Hour),
		EndDate:     testNow.Add(52 * time.Hour),
	}
	if mutate != nil {
		mutate(req)
	}
	event, err := svc.Create(context.Background(), viewer, req)
	require.NoError(t, err)
	return event
}

func TestCreateEvent(t *testing.T) {
	svc, _ := newTestService(t)
	organizer := userViewer()

	t.Run("derives slug and organizer", func(t *testing.T) {
		event := createEvent(t, svc, organizer, nil)
		assert.Equal(t, "legal-aid-workshop", event.Slug)
		require.NotNil(t, event.OrganizerID)
		assert.Equal(t, organizer.ID, *event.OrganizerID)
		assert.Equal(t, models.StatusScheduled, event.Status)
	})

	t.Run("colliding titles get numeric suffixes", func(t *testing.T) {
		second := createEvent(t, svc, organizer, nil)
		third := createEvent(t, svc, organizer, nil)
		assert.Equal(t, "legal-aid-workshop-1", second.Slug)
		assert.Equal(t, "legal-aid-workshop-2", third.Slug)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		bogus := uuid.New()
		_, err := svc.Create(context.Background(), organizer, &models.CreateRequest{
			Title:       "Categorized Event",
			Description: "d",
			StartDate:   testNow.Add(time.Hour),
			EndDate:     testNow.Add(2 * time.Hour),
			CategoryID:  &bogus,
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestListPeriods(t *testing.T) {
	svc, _ := newTestService(t)
	organizer := userViewer()

	mk := func(title string, start, end time.Time) {
		createEvent(t, svc, organizer, func(r *models.CreateRequest) {
			r.Title = title
			r.StartDate = start
			r.EndDate = end
		})
	}
	mk("Future Seminar", testNow.Add(72*time.Hour), testNow.Add(74*time.Hour))
	mk("Finished Clinic", testNow.Add(-72*time.Hour), testNow.Add(-70*time.Hour))
	mk("Morning Session", testNow.Add(-2*time.Hour), testNow.Add(2*time.Hour))

	titles := func(period string) []string {
		events, total, err := svc.List(context.Background(), ListParams{Period: period}, pagination.Params{Page: 1, PageSize: 10})
		require.NoError(t, err)
		out := make([]string, 0, total)
		for _, e := range events {
			out = append(out, e.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Future Seminar"}, titles(store.PeriodUpcoming))
	assert.ElementsMatch(t, []string{"Finished Clinic"}, titles(store.PeriodPast))
	assert.ElementsMatch(t, []string{"Morning Session"}, titles(store.PeriodToday))
	assert.Len(t, titles(""), 3)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	organizer := userViewer()
	event := createEvent(t, svc, organizer, nil)

	t.Run("non-organizer is refused", func(t *testing.T) {
		title := "Hijacked"
		_, err := svc.Update(context.Background(), userViewer(), event.Slug, &models.UpdateRequest{Title: &title})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("organizer updates fields", func(t *testing.T) {
		location := "Main Hall"
		status := models.StatusPostponed
		updated, err := svc.Update(context.Background(), organizer, event.Slug, &models.UpdateRequest{
			Location: &location,
			Status:   &status,
		})
		require.NoError(t, err)
		assert.Equal(t, "Main Hall", updated.Location)
		assert.Equal(t, models.StatusPostponed, updated.Status)
	})

	t.Run("update cannot invert the window", func(t *testing.T) {
		end := event.StartDate.Add(-time.Hour)
		_, err := svc.Update(context.Background(), organizer, event.Slug, &models.UpdateRequest{EndDate: &end})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("staff may delete someone else's event", func(t *testing.T) {
		require.NoError(t, svc.Delete(context.Background(), staffViewer(), event.Slug))
		_, err := svc.Get(context.Background(), event.Slug)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)
	organizer := userViewer()

	t.Run("registration not required is refused", func(t *testing.T) {
		event := createEvent(t, svc, organizer, func(r *models.CreateRequest) {
			r.Title = "Open House"
		})
		_, err := svc.Register(context.Background(), userViewer(), event.Slug, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("successful registration carries notes", func(t *testing.T) {
		event := createEvent(t, svc, organizer, func(r *models.CreateRequest) {
			r.Title = "Workshop A"
			r.RegistrationRequired = true
		})
		attendee := userViewer()
		reg, err := svc.Register(context.Background(), attendee, event.Slug, &models.RegisterRequest{Notes: "wheelchair access"})
		require.NoError(t, err)
		assert.Equal(t, attendee.ID, reg.UserID)
		assert.Equal(t, "wheelchair access", reg.Notes)
		assert.False(t, reg.Attended)
	})

	t.Run("duplicate registration is refused", func(t *testing.T) {
		event := createEvent(t, svc, organizer, func(r *models.CreateRequest) {
			r.Title = "Workshop B"
			r.RegistrationRequired = true
		})
		attendee := userViewer()
		_, err := svc.Register(context.Background(), attendee, event.Slug, nil)
		require.NoError(t, err)
		_, err = svc.Register(context.Background(), attendee, event.Slug, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("past deadline is refused", func(t *testing.T) {
		deadline := testNow.Add(-time.Hour)
		event := createEvent(t, svc, organizer, func(r *models.CreateRequest) {
			r.Title = "Workshop C"
			r.RegistrationRequired = true
			r.RegistrationDeadline = &deadline
		})
		_, err := svc.Register(context.Background(), userViewer(), event.Slug, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("capacity is enforced", func(t *testing.T) {
		event := createEvent(t, svc, organizer, func(r *models.CreateRequest) {
			r.Title = "Workshop D"
			r.RegistrationRequired = true
			r.MaxParticipants = 2
		})
		_, err := svc.Register(context.Background(), userViewer(), event.Slug, nil)
		require.NoError(t, err)
		_, err = svc.Register(context.Background(), userViewer(), event.Slug, nil)
		require.NoError(t, err)
		_, err = svc.Register(context.Background(), userViewer(), event.Slug, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestRegisterConcurrent(t *testing.T) {
	svc, _ := newTestService(t)
	event := createEvent(t, svc, userViewer(), func(r *models.CreateRequest) {
		r.Title = "Limited Seats"
		r.RegistrationRequired = true
		r.MaxParticipants = 3
	})

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), userViewer(), event.Slug, nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		}
	}
	assert.Equal(t, 3, succeeded)
}

func TestUnregisterAndCheck(t *testing.T) {
	svc, _ := newTestService(t)
	event := createEvent(t, svc, userViewer(), func(r *models.CreateRequest) {
		r.RegistrationRequired = true
	})
	attendee := userViewer()

	t.Run("unregistered viewer is not registered", func(t *testing.T) {
		status, err := svc.CheckRegistration(context.Background(), attendee, event.Slug)
		require.NoError(t, err)
		assert.False(t, status.Registered)
		assert.Nil(t, status.Registration)
	})

	t.Run("registration round trip", func(t *testing.T) {
		_, err := svc.Register(context.Background(), attendee, event.Slug, nil)
		require.NoError(t, err)

		status, err := svc.CheckRegistration(context.Background(), attendee, event.Slug)
		require.NoError(t, err)
		assert.True(t, status.Registered)
		require.NotNil(t, status.Registration)

		regs, err := svc.MyRegistrations(context.Background(), attendee)
		require.NoError(t, err)
		assert.Len(t, regs, 1)

		require.NoError(t, svc.Unregister(context.Background(), attendee, event.Slug))
	})

	t.Run("unregistering twice is refused", func(t *testing.T) {
		err := svc.Unregister(context.Background(), attendee, event.Slug)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestMarkAttended(t *testing.T) {
	svc, _ := newTestService(t)
	event := createEvent(t, svc, userViewer(), func(r *models.CreateRequest) {
		r.RegistrationRequired = true
	})
	reg, err := svc.Register(context.Background(), userViewer(), event.Slug, nil)
	require.NoError(t, err)

	updated, err := svc.MarkAttended(context.Background(), reg.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Attended)

	_, err = svc.MarkAttended(context.Background(), uuid.New(), true)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestEventCategories(t *testing.T) {
	svc, _ := newTestService(t)

	category, err := svc.CreateCategory(context.Background(), &models.CategoryRequest{Name: "Workshops"})
	require.NoError(t, err)

	t.Run("events can be filed under a category", func(t *testing.T) {
		event := createEvent(t, svc, userViewer(), func(r *models.CreateRequest) {
			r.Title = "Filed Event"
			r.CategoryID = &category.ID
		})
		require.NotNil(t, event.CategoryID)

		events, total, err := svc.List(context.Background(), ListParams{CategoryID: &category.ID}, pagination.Params{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "Filed Event", events[0].Title)
	})

	t.Run("update and list", func(t *testing.T) {
		updated, err := svc.UpdateCategory(context.Background(), category.ID, &models.CategoryRequest{Name: "Public Workshops"})
		require.NoError(t, err)
		assert.Equal(t, "Public Workshops", updated.Name)

		all, err := svc.ListCategories(context.Background())
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("deleting a category detaches its events", func(t *testing.T) {
		require.NoError(t, svc.DeleteCategory(context.Background(), category.ID))

		event, err := svc.Get(context.Background(), "filed-event")
		require.NoError(t, err)
		assert.Nil(t, event.CategoryID)
	})
}
