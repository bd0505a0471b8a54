package aws

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// SubscriptionStore is a DynamoDB implementation of store.SubscriptionStore.
// Counters are maintained with ADD updates; the limit check of
// IncrementIfBelow is evaluated by DynamoDB as a condition expression.
type SubscriptionStore struct {
	table
	now func() time.Time
}

func NewSubscriptionStore(client *dynamodb.Client, tableName string) *SubscriptionStore {
	return &SubscriptionStore{
		table: table{client: client, name: tableName, key: keyTenant},
		now:   time.Now,
	}
}

func (s *SubscriptionStore) Create(ctx context.Context, sub *models.Subscription) error {
	if err := s.put(ctx, sub, store.ErrSubscriptionAlreadyExists); err != nil {
		return err
	}

	log.Debug().Str("tenant", sub.TenantKey).Str("level", string(sub.Level)).Msg("subscription created")
	return nil
}

func (s *SubscriptionStore) Get(ctx context.Context, tenantKey string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.get(ctx, tenantKey, &sub, store.ErrSubscriptionNotFound); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *SubscriptionStore) Update(ctx context.Context, sub *models.Subscription) error {
	features := sub.FeaturesAccess
	if features == nil {
		features = []string{}
	}

	update := expression.Set(expression.Name("subscription_level"), expression.Value(sub.Level)).
		Set(expression.Name("run_quota"), expression.Value(sub.RunQuota)).
		Set(expression.Name("max_edits"), expression.Value(sub.MaxEdits)).
		Set(expression.Name("max_apps"), expression.Value(sub.MaxApps)).
		Set(expression.Name("features_access"), expression.Value(features)).
		Set(expression.Name("payment_status"), expression.Value(sub.PaymentStatus)).
		Set(expression.Name("progress"), expression.Value(sub.Progress)).
		Set(expression.Name("updated_at"), expression.Value(s.now().UTC()))

	return s.update(ctx, sub.TenantKey, update, store.ErrSubscriptionNotFound)
}

func (s *SubscriptionStore) Delete(ctx context.Context, tenantKey string) error {
	return s.delete(ctx, tenantKey, store.ErrSubscriptionNotFound)
}

func (s *SubscriptionStore) Increment(ctx context.Context, tenantKey string, action models.Action, by int64) (int64, error) {
	if !action.Valid() {
		return 0, fmt.Errorf("unknown action %q", action)
	}

	out, err := s.updateItem(ctx, &dynamodb.UpdateItemInput{
		Key:                 s.keyOf(tenantKey),
		UpdateExpression:    aws.String("ADD #counter :by"),
		ConditionExpression: aws.String("attribute_exists(#key)"),
		ExpressionAttributeNames: map[string]string{
			"#key":     keyTenant,
			"#counter": action.Counter(),
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":by": &types.AttributeValueMemberN{Value: strconv.FormatInt(by, 10)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}, store.ErrSubscriptionNotFound)
	if err != nil {
		return 0, err
	}

	return counterValue(out.Attributes, action.Counter())
}

// IncrementIfBelow adds one to the counter only while it is below its limit
// or the limit is negative (unlimited). When the condition fails the item is
// read back to tell a missing subscription from an exhausted one.
func (s *SubscriptionStore) IncrementIfBelow(ctx context.Context, tenantKey string, action models.Action) (int64, error) {
	if !action.Valid() {
		return 0, fmt.Errorf("unknown action %q", action)
	}

	out, err := s.updateItem(ctx, &dynamodb.UpdateItemInput{
		Key:                 s.keyOf(tenantKey),
		UpdateExpression:    aws.String("ADD #counter :one"),
		ConditionExpression: aws.String("attribute_exists(#key) AND (#counter < #limit OR #limit < :zero)"),
		ExpressionAttributeNames: map[string]string{
			"#key":     keyTenant,
			"#counter": action.Counter(),
			"#limit":   action.LimitField(),
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one":  &types.AttributeValueMemberN{Value: "1"},
			":zero": &types.AttributeValueMemberN{Value: "0"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}, store.ErrLimitReached)
	if errors.Is(err, store.ErrLimitReached) {
		if _, getErr := s.Get(ctx, tenantKey); getErr != nil {
			return 0, getErr
		}
		return 0, store.ErrLimitReached
	}
	if err != nil {
		return 0, err
	}

	return counterValue(out.Attributes, action.Counter())
}

func counterValue(attrs map[string]types.AttributeValue, name string) (int64, error) {
	var v int64
	if err := attributevalue.Unmarshal(attrs[name], &v); err != nil {
		return 0, fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return v, nil
}

// TierStore is a DynamoDB implementation of store.TierStore.
type TierStore struct {
	table
}

func NewTierStore(client *dynamodb.Client, tableName string) *TierStore {
	return &TierStore{table{client: client, name: tableName, key: keyTierCode}}
}

func (s *TierStore) Create(ctx context.Context, tier *models.Tier) error {
	return s.put(ctx, tier, store.ErrTierAlreadyExists)
}

func (s *TierStore) Put(ctx context.Context, tier *models.Tier) error {
	return s.put(ctx, tier, nil)
}

func (s *TierStore) Get(ctx context.Context, code models.TierCode) (*models.Tier, error) {
	var tier models.Tier
	if err := s.get(ctx, string(code), &tier, store.ErrTierNotFound); err != nil {
		return nil, err
	}
	return &tier, nil
}

func (s *TierStore) List(ctx context.Context) ([]*models.Tier, error) {
	tiers, err := scanInto[models.Tier](ctx, &s.table, nil)
	if err != nil {
		return nil, err
	}
	models.SortTiers(tiers)
	return tiers, nil
}

func (s *TierStore) Delete(ctx context.Context, code models.TierCode) error {
	return s.delete(ctx, string(code), store.ErrTierNotFound)
}

// RoleStore is a DynamoDB implementation of store.RoleStore.
type RoleStore struct {
	table
}

func NewRoleStore(client *dynamodb.Client, tableName string) *RoleStore {
	return &RoleStore{table{client: client, name: tableName, key: keyRoleID}}
}

func (s *RoleStore) Put(ctx context.Context, role *models.RoleDefinition) error {
	return s.put(ctx, role, nil)
}

func (s *RoleStore) Get(ctx context.Context, roleID string) (*models.RoleDefinition, error) {
	var role models.RoleDefinition
	if err := s.get(ctx, roleID, &role, store.ErrRoleNotFound); err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *RoleStore) List(ctx context.Context) ([]*models.RoleDefinition, error) {
	return scanInto[models.RoleDefinition](ctx, &s.table, nil)
}

func (s *RoleStore) Delete(ctx context.Context, roleID string) error {
	return s.delete(ctx, roleID, store.ErrRoleNotFound)
}
