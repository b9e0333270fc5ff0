package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"lawclinic/internal/publication/models"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// InMemoryStore keeps publications, categories, and comments in process
// memory. It backs tests and DSN-less development runs.
type InMemoryStore struct {
	mu           sync.RWMutex
	publications map[uuid.UUID]*models.Publication
	categories   map[uuid.UUID]*models.Category
	comments     map[uuid.UUID]*models.Comment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		publications: make(map[uuid.UUID]*models.Publication),
		categories:   make(map[uuid.UUID]*models.Category),
		comments:     make(map[uuid.UUID]*models.Comment),
	}
}

func copyPublication(p *models.Publication) *models.Publication {
	cp := *p
	cp.Categories = append([]models.Category(nil), p.Categories...)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		cp.PublishedAt = &t
	}
	return &cp
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.publications {
		if existing.Slug == p.Slug {
			return sentinel.ErrConflict
		}
	}
	s.publications[p.ID] = copyPublication(p)
	return nil
}

func (s *InMemoryStore) FindBySlug(_ context.Context, slug string) (*models.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.publications {
		if p.Slug == slug {
			return copyPublication(p), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, p *models.Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.publications[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.publications {
		if existing.ID != p.ID && existing.Slug == p.Slug {
			return sentinel.ErrConflict
		}
	}
	s.publications[p.ID] = copyPublication(p)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.publications[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.publications, id)
	for cid, c := range s.comments {
		if c.PublicationID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func matchesFilter(p *models.Publication, f Filter) bool {
	if !f.AllStatuses && p.Status != models.StatusPublished {
		if f.ViewerID == nil || p.AuthorID != *f.ViewerID {
			return false
		}
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	if f.Featured != nil && p.IsFeatured != *f.Featured {
		return false
	}
	if f.CategorySlug != "" {
		found := false
		for _, c := range p.Categories {
			if c.Slug == f.CategorySlug {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := strings.ToLower(strings.Join([]string{
			p.Title, p.Content, p.Excerpt, p.MetaTitle, p.MetaDescription, p.Keywords,
		}, "\n"))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func sortPublications(items []*models.Publication, orderBy string) {
	if orderBy == "" {
		orderBy = "-published_at"
	}
	desc := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")

	less := func(a, b *models.Publication) bool {
		switch field {
		case "title":
			return a.Title < b.Title
		case "views_count":
			return a.ViewsCount < b.ViewsCount
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		default: // published_at; unpublished sorts last
			if a.PublishedAt == nil || b.PublishedAt == nil {
				return b.PublishedAt == nil && a.PublishedAt != nil
			}
			return a.PublishedAt.Before(*b.PublishedAt)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func (s *InMemoryStore) List(_ context.Context, f Filter, page pagination.Params) ([]*models.Publication, int, error) {
	s.mu.RLock()
	var matched []*models.Publication
	for _, p := range s.publications {
		if matchesFilter(p, f) {
			matched = append(matched, copyPublication(p))
		}
	}
	s.mu.RUnlock()

	sortPublications(matched, f.OrderBy)
	return pagination.Slice(matched, page), len(matched), nil
}

func (s *InMemoryStore) ListFeatured(_ context.Context, limit int) ([]*models.Publication, error) {
	s.mu.RLock()
	var featured []*models.Publication
	for _, p := range s.publications {
		if p.IsFeatured && p.Status == models.StatusPublished {
			featured = append(featured, copyPublication(p))
		}
	}
	s.mu.RUnlock()

	sortPublications(featured, "-published_at")
	if len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}

func (s *InMemoryStore) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]*models.Publication, error) {
	s.mu.RLock()
	var mine []*models.Publication
	for _, p := range s.publications {
		if p.AuthorID == authorID {
			mine = append(mine, copyPublication(p))
		}
	}
	s.mu.RUnlock()

	sortPublications(mine, "-created_at")
	return mine, nil
}

func (s *InMemoryStore) IncrementViews(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.publications[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.ViewsCount++
	return nil
}

func (s *InMemoryStore) Stats(_ context.Context) (*models.Stats, error) {
	s.mu.RLock()
	all := make([]*models.Publication, 0, len(s.publications))
	for _, p := range s.publications {
		all = append(all, copyPublication(p))
	}
	categories := make([]*models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cp := *c
		categories = append(categories, &cp)
	}
	s.mu.RUnlock()

	stats := &models.Stats{TotalCount: len(all)}
	counts := make(map[string]int)
	for _, p := range all {
		switch p.Status {
		case models.StatusPublished:
			stats.PublishedCount++
		case models.StatusDraft:
			stats.DraftCount++
		}
		if p.IsFeatured {
			stats.FeaturedCount++
		}
		for _, c := range p.Categories {
			counts[c.Slug]++
		}
	}

	sortPublications(all, "-views_count")
	stats.MostViewed = topN(all, 5)
	sortPublications(all, "-created_at")
	stats.Recent = topN(all, 5)

	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	stats.ByCategory = make([]models.CategoryCount, 0, len(categories))
	for _, c := range categories {
		stats.ByCategory = append(stats.ByCategory, models.CategoryCount{
			Name: c.Name, Slug: c.Slug, Count: counts[c.Slug],
		})
	}
	return stats, nil
}

func topN(items []*models.Publication, n int) []*models.Publication {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]*models.Publication, len(items))
	copy(out, items)
	return out
}

// Category operations.

func (s *InMemoryStore) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == c.Name || existing.Slug == c.Slug {
			return sentinel.ErrConflict
		}
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindCategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindCategoriesBySlugs(ctx context.Context, slugs []string) ([]models.Category, error) {
	out := make([]models.Category, 0, len(slugs))
	for _, slug := range slugs {
		c, err := s.FindCategoryBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *InMemoryStore) UpdateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.categories {
		if existing.ID != c.ID && (existing.Name == c.Name || existing.Slug == c.Slug) {
			return sentinel.ErrConflict
		}
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

// Comment operations.

func (s *InMemoryStore) CreateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindCommentByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) ListCommentsByPublication(_ context.Context, publicationID uuid.UUID, includeUnapproved bool) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Comment
	for _, c := range s.comments {
		if c.PublicationID != publicationID {
			continue
		}
		if !includeUnapproved && !c.IsApproved {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
