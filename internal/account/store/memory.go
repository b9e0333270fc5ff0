package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"lawclinic/internal/account/models"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// InMemoryUserStore backs tests and local development. It favors clarity
// over performance and holds one mutex for the whole table, which also makes
// UpdateAtomic trivially atomic.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*models.User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return sentinel.ErrConflict
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user := s.byEmail(email); user != nil {
		cp := *user
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.users {
		if existing.ID != user.ID && (existing.Email == user.Email || existing.Username == user.Username) {
			return sentinel.ErrConflict
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *InMemoryUserStore) UpdateAtomic(_ context.Context, email string, fn func(*models.User) error) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.byEmail(email)
	if user == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *user
	if err := fn(&cp); err != nil {
		return nil, err
	}
	s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *InMemoryUserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *InMemoryUserStore) List(_ context.Context, p pagination.Params) ([]*models.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DateJoined.After(all[j].DateJoined) })
	return pagination.Slice(all, p), len(all), nil
}

func (s *InMemoryUserStore) Overview(_ context.Context) (*models.Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ov := &models.Overview{Total: len(s.users)}
	for _, u := range s.users {
		if u.IsVerified {
			ov.Verified++
		}
		if u.IsStaff {
			ov.Staff++
		}
		if u.IsActive {
			ov.Active++
		}
	}
	return ov, nil
}

// byEmail must be called with the mutex held.
func (s *InMemoryUserStore) byEmail(email string) *models.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}
