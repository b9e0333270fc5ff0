package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lawclinic/internal/helprequest/models"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// InMemoryStore keeps help requests in process memory. It backs tests and
// DSN-less development runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*models.HelpRequest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[uuid.UUID]*models.HelpRequest)}
}

func (s *InMemoryStore) Create(_ context.Context, hr *models.HelpRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *hr
	s.requests[hr.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.HelpRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hr, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *hr
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, hr *models.HelpRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[hr.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *hr
	s.requests[hr.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.requests, id)
	return nil
}

func matches(hr *models.HelpRequest, f Filter) bool {
	if f.LegalIssueType != "" && !strings.EqualFold(hr.LegalIssueType, f.LegalIssueType) {
		return false
	}
	if f.HadPreviousHelp != "" && hr.HadPreviousHelp != f.HadPreviousHelp {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := strings.ToLower(hr.FullName + "\n" + hr.Email + "\n" + hr.Description)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func (s *InMemoryStore) List(_ context.Context, f Filter, page pagination.Params) ([]*models.HelpRequest, int, error) {
	s.mu.RLock()
	var matched []*models.HelpRequest
	for _, hr := range s.requests {
		if matches(hr, f) {
			cp := *hr
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return pagination.Slice(matched, page), len(matched), nil
}

func (s *InMemoryStore) Stats(_ context.Context, recentSince time.Time) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.Stats{TotalCount: len(s.requests)}
	byType := make(map[string]int)
	for _, hr := range s.requests {
		byType[hr.LegalIssueType]++
		if hr.CreatedAt.After(recentSince) {
			stats.RecentCount++
		}
		if hr.HadPreviousHelp == models.PreviousHelpYes {
			stats.PreviousHelpYes++
		} else {
			stats.PreviousHelpNo++
		}
	}

	stats.ByIssueType = make([]models.IssueTypeCount, 0, len(byType))
	for issue, count := range byType {
		stats.ByIssueType = append(stats.ByIssueType, models.IssueTypeCount{LegalIssueType: issue, Count: count})
	}
	sort.Slice(stats.ByIssueType, func(i, j int) bool {
		a, b := stats.ByIssueType[i], stats.ByIssueType[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.LegalIssueType < b.LegalIssueType
	})
	return stats, nil
}
