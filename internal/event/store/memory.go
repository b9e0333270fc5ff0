package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lawclinic/internal/event/models"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// InMemoryStore keeps events, categories, and registrations in process
// memory. It backs tests and DSN-less development runs.
type InMemoryStore struct {
	mu            sync.RWMutex
	events        map[uuid.UUID]*models.Event
	categories    map[uuid.UUID]*models.Category
	registrations map[uuid.UUID]*models.Registration
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		events:        make(map[uuid.UUID]*models.Event),
		categories:    make(map[uuid.UUID]*models.Category),
		registrations: make(map[uuid.UUID]*models.Registration),
	}
}

func copyEvent(e *models.Event) *models.Event {
	cp := *e
	return &cp
}

func (s *InMemoryStore) Create(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.events {
		if existing.Slug == e.Slug {
			return sentinel.ErrConflict
		}
	}
	s.events[e.ID] = copyEvent(e)
	return nil
}

func (s *InMemoryStore) FindBySlug(_ context.Context, slug string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.Slug == slug {
			return copyEvent(e), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) SlugExists(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) Update(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.events {
		if existing.ID != e.ID && existing.Slug == e.Slug {
			return sentinel.ErrConflict
		}
	}
	s.events[e.ID] = copyEvent(e)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.events, id)
	for rid, r := range s.registrations {
		if r.EventID == id {
			delete(s.registrations, rid)
		}
	}
	return nil
}

func matchesFilter(e *models.Event, f Filter) bool {
	switch f.Period {
	case PeriodUpcoming:
		if !e.IsUpcoming(f.Now) {
			return false
		}
	case PeriodPast:
		if !e.EndDate.Before(f.Now) {
			return false
		}
	case PeriodToday:
		dayStart := time.Date(f.Now.Year(), f.Now.Month(), f.Now.Day(), 0, 0, 0, 0, f.Now.Location())
		dayEnd := dayStart.Add(24 * time.Hour)
		startsToday := !e.StartDate.Before(dayStart) && e.StartDate.Before(dayEnd)
		spansToday := e.StartDate.Before(dayStart) && !e.EndDate.Before(dayStart)
		if !startsToday && !spansToday {
			return false
		}
	}
	if f.CategoryID != nil && (e.CategoryID == nil || *e.CategoryID != *f.CategoryID) {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Featured != nil && e.Featured != *f.Featured {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := strings.ToLower(e.Title + "\n" + e.Description + "\n" + e.Location)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func sortEvents(items []*models.Event, orderBy string) {
	if orderBy == "" {
		orderBy = "-start_date"
	}
	desc := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")

	less := func(a, b *models.Event) bool {
		switch field {
		case "title":
			return a.Title < b.Title
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.StartDate.Before(b.StartDate)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func (s *InMemoryStore) List(_ context.Context, f Filter, page pagination.Params) ([]*models.Event, int, error) {
	s.mu.RLock()
	var matched []*models.Event
	for _, e := range s.events {
		if matchesFilter(e, f) {
			matched = append(matched, copyEvent(e))
		}
	}
	s.mu.RUnlock()

	sortEvents(matched, f.OrderBy)
	return pagination.Slice(matched, page), len(matched), nil
}

// Category operations.

func (s *InMemoryStore) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindCategoryByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) UpdateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) DeleteCategory(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.categories, id)
	for _, e := range s.events {
		if e.CategoryID != nil && *e.CategoryID == id {
			e.CategoryID = nil
		}
	}
	return nil
}

func (s *InMemoryStore) ListCategories(_ context.Context) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Registration operations.

func (s *InMemoryStore) CreateRegistration(_ context.Context, r *models.Registration, maxParticipants int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, existing := range s.registrations {
		if existing.EventID == r.EventID {
			if existing.UserID == r.UserID {
				return sentinel.ErrConflict
			}
			count++
		}
	}
	if maxParticipants > 0 && count >= maxParticipants {
		return sentinel.ErrInvalidState
	}

	cp := *r
	s.registrations[r.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindRegistration(_ context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.registrations {
		if r.EventID == eventID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindRegistrationByID(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registrations[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *InMemoryStore) DeleteRegistration(_ context.Context, eventID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.registrations {
		if r.EventID == eventID && r.UserID == userID {
			delete(s.registrations, id)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) UpdateRegistration(_ context.Context, r *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *r
	s.registrations[r.ID] = &cp
	return nil
}

func (s *InMemoryStore) CountRegistrations(_ context.Context, eventID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, r := range s.registrations {
		if r.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) ListRegistrationsByUser(_ context.Context, userID uuid.UUID) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Registration
	for _, r := range s.registrations {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return out, nil
}
