package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// JoinRequestStore implements store.JoinRequestStore using in-memory storage.
type JoinRequestStore struct {
	mu sync.RWMutex

	requests map[string]*models.JoinRequest // join_id -> JoinRequest
	now      func() time.Time
}

func NewJoinRequestStore() *JoinRequestStore {
	return &JoinRequestStore{
		requests: make(map[string]*models.JoinRequest),
		now:      time.Now,
	}
}

func (s *JoinRequestStore) Create(ctx context.Context, req *models.JoinRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[req.JoinID]; exists {
		return store.ErrJoinRequestAlreadyExists
	}
	s.requests[req.JoinID] = cloneJoinRequest(req)

	return nil
}

func (s *JoinRequestStore) Put(ctx context.Context, req *models.JoinRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests[req.JoinID] = cloneJoinRequest(req)

	return nil
}

func (s *JoinRequestStore) Get(ctx context.Context, joinID string) (*models.JoinRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, exists := s.requests[joinID]
	if !exists {
		return nil, store.ErrJoinRequestNotFound
	}

	return cloneJoinRequest(req), nil
}

func (s *JoinRequestStore) SetStatus(ctx context.Context, joinID string, status models.JoinRequestStatus, decidedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, exists := s.requests[joinID]
	if !exists {
		return store.ErrJoinRequestNotFound
	}
	now := s.now().UTC()
	req.Status = status
	req.DecidedBy = decidedBy
	req.DecidedAt = &now

	return nil
}

func (s *JoinRequestStore) ListByTenant(ctx context.Context, tenantKey string, status models.JoinRequestStatus) ([]*models.JoinRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.JoinRequest
	for _, req := range s.requests {
		if req.TenantKey != tenantKey {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		result = append(result, cloneJoinRequest(req))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })

	return result, nil
}

func cloneJoinRequest(req *models.JoinRequest) *models.JoinRequest {
	clone := *req
	if req.DecidedAt != nil {
		t := *req.DecidedAt
		clone.DecidedAt = &t
	}
	return &clone
}
