package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"lawclinic/internal/sitesettings/models"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// InMemoryStore keeps site content in process memory. It backs tests and
// DSN-less development runs.
type InMemoryStore struct {
	mu           sync.RWMutex
	appData      map[uuid.UUID]*models.AppData
	galleries    map[uuid.UUID]*models.Gallery
	images       map[uuid.UUID]*models.GalleryImage
	sponsors     map[uuid.UUID]*models.Sponsor
	testimonials map[uuid.UUID]*models.Testimonial
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		appData:      make(map[uuid.UUID]*models.AppData),
		galleries:    make(map[uuid.UUID]*models.Gallery),
		images:       make(map[uuid.UUID]*models.GalleryImage),
		sponsors:     make(map[uuid.UUID]*models.Sponsor),
		testimonials: make(map[uuid.UUID]*models.Testimonial),
	}
}

// orderingLess sorts by the optional ordering value, nils last.
func orderingLess(a, b *int) (less, decided bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return false, true
	case b == nil:
		return true, true
	case *a != *b:
		return *a < *b, true
	}
	return false, false
}

// App data.

func (s *InMemoryStore) CreateAppData(_ context.Context, d *models.AppData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.appData {
		if strings.EqualFold(existing.Name, d.Name) {
			return sentinel.ErrConflict
		}
	}
	cp := *d
	s.appData[d.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindAppDataByID(_ context.Context, id uuid.UUID) (*models.AppData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.appData[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *InMemoryStore) UpdateAppData(_ context.Context, d *models.AppData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appData[d.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *d
	s.appData[d.ID] = &cp
	return nil
}

func (s *InMemoryStore) DeleteAppData(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appData[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.appData, id)
	return nil
}

func (s *InMemoryStore) ListAppData(_ context.Context) ([]*models.AppData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AppData, 0, len(s.appData))
	for _, d := range s.appData {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Galleries.

func (s *InMemoryStore) CreateGallery(_ context.Context, g *models.Gallery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *g
	s.galleries[g.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindGalleryByID(_ context.Context, id uuid.UUID) (*models.Gallery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.galleries[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *InMemoryStore) UpdateGallery(_ context.Context, g *models.Gallery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.galleries[g.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *g
	s.galleries[g.ID] = &cp
	return nil
}

func (s *InMemoryStore) DeleteGallery(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.galleries[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.galleries, id)
	for imgID, img := range s.images {
		if img.GalleryID == id {
			delete(s.images, imgID)
		}
	}
	return nil
}

func matchesGallery(g *models.Gallery, f GalleryFilter) bool {
	if f.Department != "" && g.Department != f.Department {
		return false
	}
	if f.IsPrevious != nil && g.IsPrevious != *f.IsPrevious {
		return false
	}
	if f.Year != nil && (g.Year == nil || *g.Year != *f.Year) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(g.Title+"\n"+g.Description), needle) {
			return false
		}
	}
	return true
}

func sortGalleries(items []*models.Gallery, orderBy string) {
	desc := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")

	less := func(a, b *models.Gallery) bool {
		switch field {
		case "title":
			return a.Title < b.Title
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		case "year":
			if l, ok := orderingLess(a.Year, b.Year); ok {
				return l
			}
			return a.Title < b.Title
		default:
			if l, ok := orderingLess(a.Ordering, b.Ordering); ok {
				return l
			}
			return a.Title < b.Title
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func (s *InMemoryStore) ListGalleries(_ context.Context, f GalleryFilter, page pagination.Params) ([]*models.Gallery, int, error) {
	s.mu.RLock()
	var matched []*models.Gallery
	for _, g := range s.galleries {
		if matchesGallery(g, f) {
			cp := *g
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	sortGalleries(matched, f.OrderBy)
	return pagination.Slice(matched, page), len(matched), nil
}

// Gallery images.

func (s *InMemoryStore) CreateGalleryImage(_ context.Context, img *models.GalleryImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.galleries[img.GalleryID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *img
	s.images[img.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindGalleryImageByID(_ context.Context, id uuid.UUID) (*models.GalleryImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *img
	return &cp, nil
}

func (s *InMemoryStore) UpdateGalleryImage(_ context.Context, img *models.GalleryImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.images[img.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *img
	s.images[img.ID] = &cp
	return nil
}

func (s *InMemoryStore) DeleteGalleryImage(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.images[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.images, id)
	return nil
}

func (s *InMemoryStore) ListGalleryImages(_ context.Context, galleryID *uuid.UUID, page pagination.Params) ([]*models.GalleryImage, int, error) {
	s.mu.RLock()
	var matched []*models.GalleryImage
	for _, img := range s.images {
		if galleryID != nil && img.GalleryID != *galleryID {
			continue
		}
		cp := *img
		matched = append(matched, &cp)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if l, ok := orderingLess(matched[i].Ordering, matched[j].Ordering); ok {
			return l
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return pagination.Slice(matched, page), len(matched), nil
}

// Sponsors.

func (s *InMemoryStore) CreateSponsor(_ context.Context, sp *models.Sponsor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sp
	s.sponsors[sp.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindSponsorByID(_ context.Context, id uuid.UUID) (*models.Sponsor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.sponsors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sp
	return &cp, nil
}

func (s *InMemoryStore) UpdateSponsor(_ context.Context, sp *models.Sponsor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sponsors[sp.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *sp
	s.sponsors[sp.ID] = &cp
	return nil
}

func (s *InMemoryStore) DeleteSponsor(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sponsors[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sponsors, id)
	return nil
}

func (s *InMemoryStore) ListSponsors(_ context.Context, f SponsorFilter, page pagination.Params) ([]*models.Sponsor, int, error) {
	s.mu.RLock()
	var matched []*models.Sponsor
	for _, sp := range s.sponsors {
		if f.Type != "" && sp.Type != f.Type {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(sp.Name), strings.ToLower(f.Search)) {
			continue
		}
		cp := *sp
		matched = append(matched, &cp)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if l, ok := orderingLess(matched[i].Ordering, matched[j].Ordering); ok {
			return l
		}
		return matched[i].Name < matched[j].Name
	})
	return pagination.Slice(matched, page), len(matched), nil
}

// Testimonials.

func (s *InMemoryStore) CreateTestimonial(_ context.Context, tm *models.Testimonial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tm
	s.testimonials[tm.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindTestimonialByID(_ context.Context, id uuid.UUID) (*models.Testimonial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tm, ok := s.testimonials[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *tm
	return &cp, nil
}

func (s *InMemoryStore) UpdateTestimonial(_ context.Context, tm *models.Testimonial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.testimonials[tm.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *tm
	s.testimonials[tm.ID] = &cp
	return nil
}

func (s *InMemoryStore) DeleteTestimonial(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.testimonials[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.testimonials, id)
	return nil
}

func (s *InMemoryStore) ListTestimonials(_ context.Context, search string, page pagination.Params) ([]*models.Testimonial, int, error) {
	s.mu.RLock()
	var matched []*models.Testimonial
	for _, tm := range s.testimonials {
		if search != "" {
			needle := strings.ToLower(search)
			haystack := strings.ToLower(tm.Name + "\n" + tm.Occupation + "\n" + tm.Quote)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		cp := *tm
		matched = append(matched, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return pagination.Slice(matched, page), len(matched), nil
}
