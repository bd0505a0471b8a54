package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
type UserStore struct {
	mu sync.RWMutex

	users map[string]*models.User // email -> User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*models.User)}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; exists {
		return store.ErrUserAlreadyExists
	}
	clone := *user
	s.users[user.Email] = &clone

	return nil
}

func (s *UserStore) Get(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[email]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	clone := *user

	return &clone, nil
}

func (s *UserStore) Activate(ctx context.Context, email string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[email]
	if !exists {
		return store.ErrUserNotFound
	}
	user.Status = models.UserStatusActive
	user.Role = role

	return nil
}

func (s *UserStore) SetRole(ctx context.Context, email string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[email]
	if !exists {
		return store.ErrUserNotFound
	}
	user.Role = role

	return nil
}

func (s *UserStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; !exists {
		return store.ErrUserNotFound
	}
	delete(s.users, email)

	return nil
}

func (s *UserStore) ListByTenant(ctx context.Context, tenantKey string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.User
	for _, user := range s.users {
		if user.TenantKey == tenantKey {
			clone := *user
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })

	return result, nil
}
