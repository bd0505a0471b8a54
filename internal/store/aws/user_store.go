package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// UserStore is a DynamoDB implementation of store.UserStore keyed by email.
type UserStore struct {
	table
}

func NewUserStore(client *dynamodb.Client, tableName string) *UserStore {
	return &UserStore{table{client: client, name: tableName, key: keyEmail}}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.put(ctx, user, store.ErrUserAlreadyExists); err != nil {
		return err
	}

	log.Debug().Str("email", user.Email).Str("tenant", user.TenantKey).Msg("user created")
	return nil
}

func (s *UserStore) Get(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.get(ctx, email, &user, store.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Activate(ctx context.Context, email string, role models.Role) error {
	update := expression.Set(expression.Name("status"), expression.Value(models.UserStatusActive)).
		Set(expression.Name("role"), expression.Value(role))
	return s.update(ctx, email, update, store.ErrUserNotFound)
}

func (s *UserStore) SetRole(ctx context.Context, email string, role models.Role) error {
	update := expression.Set(expression.Name("role"), expression.Value(role))
	return s.update(ctx, email, update, store.ErrUserNotFound)
}

func (s *UserStore) Delete(ctx context.Context, email string) error {
	return s.delete(ctx, email, store.ErrUserNotFound)
}

func (s *UserStore) ListByTenant(ctx context.Context, tenantKey string) ([]*models.User, error) {
	filter := expression.Name(keyTenant).Equal(expression.Value(tenantKey))
	return scanInto[models.User](ctx, &s.table, &filter)
}

// JoinRequestStore is a DynamoDB implementation of store.JoinRequestStore.
type JoinRequestStore struct {
	table
	now func() time.Time
}

func NewJoinRequestStore(client *dynamodb.Client, tableName string) *JoinRequestStore {
	return &JoinRequestStore{
		table: table{client: client, name: tableName, key: keyJoinID},
		now:   time.Now,
	}
}

func (s *JoinRequestStore) Create(ctx context.Context, req *models.JoinRequest) error {
	if err := s.put(ctx, req, store.ErrJoinRequestAlreadyExists); err != nil {
		return err
	}

	log.Debug().Str("join_id", req.JoinID).Msg("join request created")
	return nil
}

func (s *JoinRequestStore) Put(ctx context.Context, req *models.JoinRequest) error {
	if err := s.put(ctx, req, nil); err != nil {
		return err
	}

	log.Debug().Str("join_id", req.JoinID).Str("status", string(req.Status)).Msg("join request replaced")
	return nil
}

func (s *JoinRequestStore) Get(ctx context.Context, joinID string) (*models.JoinRequest, error) {
	var req models.JoinRequest
	if err := s.get(ctx, joinID, &req, store.ErrJoinRequestNotFound); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *JoinRequestStore) SetStatus(ctx context.Context, joinID string, status models.JoinRequestStatus, decidedBy string) error {
	update := expression.Set(expression.Name("status"), expression.Value(status)).
		Set(expression.Name("decided_at"), expression.Value(s.now().UTC())).
		Set(expression.Name("decided_by"), expression.Value(decidedBy))
	return s.update(ctx, joinID, update, store.ErrJoinRequestNotFound)
}

func (s *JoinRequestStore) ListByTenant(ctx context.Context, tenantKey string, status models.JoinRequestStatus) ([]*models.JoinRequest, error) {
	filter := expression.Name(keyTenant).Equal(expression.Value(tenantKey))
	if status != "" {
		filter = filter.And(expression.Name("status").Equal(expression.Value(status)))
	}
	return scanInto[models.JoinRequest](ctx, &s.table, &filter)
}
