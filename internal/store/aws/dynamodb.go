// Package aws implements the storage port on Amazon DynamoDB. Each entity
// lives in its own table keyed by a single string partition key.
package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfeidau/tenancy/internal/store"
	"github.com/wolfeidau/tenancy/internal/telemetry"
)

// Tables names the DynamoDB table of each entity.
type Tables struct {
	Users         string
	Organizations string
	Subscriptions string
	JoinRequests  string
	Tiers         string
	Roles         string
}

// DefaultTables returns the conventional table names,
// each prefixed with prefix when it is non-empty.
func DefaultTables(prefix string) Tables {
	name := func(n string) string {
		if prefix == "" {
			return n
		}
		return prefix + "_" + n
	}
	return Tables{
		Users:         name("users"),
		Organizations: name("clients_data"),
		Subscriptions: name("clients_subs"),
		JoinRequests:  name("pending_joins"),
		Tiers:         name("subscription_tiers_config"),
		Roles:         name("roles_config"),
	}
}

// Partition key attribute of each table.
const (
	keyEmail    = "email"
	keyTenant   = "client_name"
	keyJoinID   = "join_id"
	keyTierCode = "sub_level"
	keyRoleID   = "role_id"
)

// KeySchema maps each table name in t to its partition key attribute.
func (t Tables) KeySchema() map[string]string {
	return map[string]string{
		t.Users:         keyEmail,
		t.Organizations: keyTenant,
		t.Subscriptions: keyTenant,
		t.JoinRequests:  keyJoinID,
		t.Tiers:         keyTierCode,
		t.Roles:         keyRoleID,
	}
}

// NewStores returns DynamoDB backed stores for every entity.
func NewStores(client *dynamodb.Client, tables Tables) *store.Stores {
	return &store.Stores{
		Organizations: NewOrganizationStore(client, tables.Organizations),
		Users:         NewUserStore(client, tables.Users),
		JoinRequests:  NewJoinRequestStore(client, tables.JoinRequests),
		Subscriptions: NewSubscriptionStore(client, tables.Subscriptions),
		Tiers:         NewTierStore(client, tables.Tiers),
		Roles:         NewRoleStore(client, tables.Roles),
	}
}

// table bundles the generic item operations shared by every store.
type table struct {
	client *dynamodb.Client
	name   string
	key    string
}

func (t *table) keyOf(value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		t.key: &types.AttributeValueMemberS{Value: value},
	}
}

// get loads the item for id into out, returning notFound when it is absent.
func (t *table) get(ctx context.Context, id string, out any, notFound error) error {
	observe(ctx, t.name, "get")

	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            t.keyOf(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return wrapAWSError(ctx, err, "failed to get item from "+t.name)
	}

	if result.Item == nil {
		return notFound
	}

	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item from %s: %w", t.name, err)
	}

	return nil
}

// put writes item. With exists set to a non-nil error the write is
// conditional on the key being absent, and exists is returned on collision.
func (t *table) put(ctx context.Context, item any, exists error) error {
	observe(ctx, t.name, "put")

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for %s: %w", t.name, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      av,
	}
	if exists != nil {
		input.ConditionExpression = aws.String(fmt.Sprintf("attribute_not_exists(%s)", t.key))
	}

	_, err = t.client.PutItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return exists
		}
		return wrapAWSError(ctx, err, "failed to put item to "+t.name)
	}

	return nil
}

// update applies the update expression to an existing item. notFound is
// returned when the item is absent.
func (t *table) update(ctx context.Context, id string, update expression.UpdateBuilder, notFound error) error {
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(t.key))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = t.updateItem(ctx, &dynamodb.UpdateItemInput{
		Key:                       t.keyOf(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, notFound)

	return err
}

func (t *table) updateItem(ctx context.Context, input *dynamodb.UpdateItemInput, conditionFailed error) (*dynamodb.UpdateItemOutput, error) {
	observe(ctx, t.name, "update")

	input.TableName = aws.String(t.name)

	out, err := t.client.UpdateItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, conditionFailed
		}
		return nil, wrapAWSError(ctx, err, "failed to update item in "+t.name)
	}

	return out, nil
}

func (t *table) delete(ctx context.Context, id string, notFound error) error {
	observe(ctx, t.name, "delete")

	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(t.name),
		Key:                 t.keyOf(id),
		ConditionExpression: aws.String(fmt.Sprintf("attribute_exists(%s)", t.key)),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return notFound
		}
		return wrapAWSError(ctx, err, "failed to delete item from "+t.name)
	}

	return nil
}

// scan pages through the table, applying filter when it is non-nil, and
// returns the raw items.
func (t *table) scan(ctx context.Context, filter *expression.ConditionBuilder) ([]map[string]types.AttributeValue, error) {
	observe(ctx, t.name, "scan")

	input := &dynamodb.ScanInput{
		TableName:      aws.String(t.name),
		ConsistentRead: aws.Bool(true),
	}

	if filter != nil {
		expr, err := expression.NewBuilder().WithFilter(*filter).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build filter expression: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var items []map[string]types.AttributeValue

	paginator := dynamodb.NewScanPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapAWSError(ctx, err, "failed to scan "+t.name)
		}
		items = append(items, page.Items...)
	}

	return items, nil
}

// scanInto scans the table and unmarshals every item into a new T.
func scanInto[T any](ctx context.Context, t *table, filter *expression.ConditionBuilder) ([]*T, error) {
	items, err := t.scan(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]*T, 0, len(items))
	for _, item := range items {
		var v T
		if err := attributevalue.UnmarshalMap(item, &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item from %s: %w", t.name, err)
		}
		result = append(result, &v)
	}

	return result, nil
}

func observe(ctx context.Context, tableName, op string) {
	telemetry.Add(ctx, telemetry.GetMetrics().StoreOperationsTotal,
		attribute.String("backend", "dynamodb"),
		attribute.String("table", tableName),
		attribute.String("operation", op),
	)
}

// wrapAWSError wraps AWS errors with context and detects throttling.
func wrapAWSError(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	telemetry.Add(ctx, telemetry.GetMetrics().StoreOperationErrors, attribute.String("backend", "dynamodb"))

	var provisionedErr *types.ProvisionedThroughputExceededException
	if errors.As(err, &provisionedErr) {
		telemetry.Add(ctx, telemetry.GetMetrics().StoreThrottlesTotal, attribute.String("backend", "dynamodb"))
		return fmt.Errorf("%s: %w: %v", msg, store.ErrThrottled, err)
	}

	// the SDK does not type every throttling response
	errMsg := err.Error()
	if strings.Contains(errMsg, "ThrottlingException") ||
		strings.Contains(errMsg, "RequestLimitExceeded") ||
		strings.Contains(errMsg, "TooManyRequestsException") ||
		strings.Contains(errMsg, "Throttling") {
		telemetry.Add(ctx, telemetry.GetMetrics().StoreThrottlesTotal, attribute.String("backend", "dynamodb"))
		return fmt.Errorf("%s: %w: %v", msg, store.ErrThrottled, err)
	}

	return fmt.Errorf("%s: %w", msg, err)
}
