package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// OrganizationStore is a DynamoDB implementation of store.OrganizationStore.
// Admins and viewers are string sets so membership changes are single
// atomic ADD/DELETE updates.
type OrganizationStore struct {
	table
}

func NewOrganizationStore(client *dynamodb.Client, tableName string) *OrganizationStore {
	return &OrganizationStore{table{client: client, name: tableName, key: keyTenant}}
}

func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	if err := s.put(ctx, org, store.ErrOrganizationAlreadyExists); err != nil {
		return err
	}

	log.Debug().Str("tenant", org.TenantKey).Msg("organization created")
	return nil
}

func (s *OrganizationStore) Get(ctx context.Context, tenantKey string) (*models.Organization, error) {
	var org models.Organization
	if err := s.get(ctx, tenantKey, &org, store.ErrOrganizationNotFound); err != nil {
		return nil, err
	}
	return normalize(&org), nil
}

func (s *OrganizationStore) UpdateProfile(ctx context.Context, tenantKey, name string, profile models.Profile) error {
	update := expression.Set(expression.Name("profile"), expression.Value(profile))
	if name != "" {
		update = update.Set(expression.Name("organization_name"), expression.Value(name))
	}
	return s.update(ctx, tenantKey, update, store.ErrOrganizationNotFound)
}

func (s *OrganizationStore) AddAdmin(ctx context.Context, tenantKey, identity string) error {
	return s.move(ctx, tenantKey, identity, "ADD #admins :id DELETE #viewers :id")
}

func (s *OrganizationStore) AddViewer(ctx context.Context, tenantKey, identity string) error {
	return s.move(ctx, tenantKey, identity, "ADD #viewers :id DELETE #admins :id")
}

func (s *OrganizationStore) RemoveMember(ctx context.Context, tenantKey, identity string) error {
	return s.move(ctx, tenantKey, identity, "DELETE #admins :id, #viewers :id")
}

// move applies a set update to the admin and viewer sets. The expression
// builder has no string set operand, so the expression is written by hand.
func (s *OrganizationStore) move(ctx context.Context, tenantKey, identity, updateExpr string) error {
	if identity == "" {
		return nil
	}

	_, err := s.updateItem(ctx, &dynamodb.UpdateItemInput{
		Key:                 s.keyOf(tenantKey),
		UpdateExpression:    aws.String(updateExpr),
		ConditionExpression: aws.String("attribute_exists(#key)"),
		ExpressionAttributeNames: map[string]string{
			"#key":     keyTenant,
			"#admins":  "admins",
			"#viewers": "viewers",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberSS{Value: []string{identity}},
		},
	}, store.ErrOrganizationNotFound)

	return err
}

func (s *OrganizationStore) Delete(ctx context.Context, tenantKey string) error {
	if err := s.delete(ctx, tenantKey, store.ErrOrganizationNotFound); err != nil {
		return err
	}

	log.Info().Str("tenant", tenantKey).Msg("organization deleted")
	return nil
}

func (s *OrganizationStore) List(ctx context.Context) ([]*models.Organization, error) {
	return s.list(ctx, nil)
}

func (s *OrganizationStore) ListByMember(ctx context.Context, identity string) ([]*models.Organization, error) {
	filter := expression.Contains(expression.Name("admins"), identity).
		Or(expression.Contains(expression.Name("viewers"), identity))
	return s.list(ctx, &filter)
}

func (s *OrganizationStore) ListByAdmin(ctx context.Context, identity string) ([]*models.Organization, error) {
	filter := expression.Contains(expression.Name("admins"), identity)
	return s.list(ctx, &filter)
}

func (s *OrganizationStore) ListByLegalEntityMaster(ctx context.Context, identity string) ([]*models.Organization, error) {
	if identity == "" {
		return []*models.Organization{}, nil
	}
	filter := expression.Name("le_master").Equal(expression.Value(identity))
	return s.list(ctx, &filter)
}

func (s *OrganizationStore) list(ctx context.Context, filter *expression.ConditionBuilder) ([]*models.Organization, error) {
	orgs, err := scanInto[models.Organization](ctx, &s.table, filter)
	if err != nil {
		return nil, err
	}
	for _, org := range orgs {
		normalize(org)
	}
	return orgs, nil
}

// normalize restores the empty viewer set that DynamoDB cannot store.
func normalize(org *models.Organization) *models.Organization {
	if org.Viewers == nil {
		org.Viewers = []string{}
	}
	return org
}
