//go:build integration

package aws_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/tenancy/internal/bootstrap"
	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
	storeaws "github.com/wolfeidau/tenancy/internal/store/aws"
)

const (
	testDynamoDBEndpoint = "http://localhost:4101"
	testDynamoDBRegion   = "us-east-1"
)

// getDynamoDBClient creates a DynamoDB client for DynamoDB Local
func getDynamoDBClient(t *testing.T, ctx context.Context) *dynamodb.Client {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(testDynamoDBRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "test")),
	)
	require.NoError(t, err)

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(testDynamoDBEndpoint)
	})
}

// setupStores creates a fresh set of tables with a unique prefix.
func setupStores(t *testing.T) *store.Stores {
	t.Helper()
	ctx := context.Background()

	client := getDynamoDBClient(t, ctx)
	cfg := bootstrap.Config{
		DynamoClient:   client,
		Environment:    "test_" + uuid.NewString()[:8],
		CleanResources: true,
	}

	res, err := bootstrap.Bootstrap(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bootstrap.Cleanup(context.Background(), cfg, res)
	})

	return storeaws.NewStores(client, res.Tables)
}

func TestOrganizationStore_Integration(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()

	org := &models.Organization{
		TenantKey: "acme_com",
		Name:      "acme.com",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		CreatedBy: "sub-bob",
		Admins:    []string{"sub-bob"},
		Viewers:   []string{},
	}
	require.NoError(t, stores.Organizations.Create(ctx, org))
	require.ErrorIs(t, stores.Organizations.Create(ctx, org), store.ErrOrganizationAlreadyExists)

	got, err := stores.Organizations.Get(ctx, "acme_com")
	require.NoError(t, err)
	assert.Equal(t, org, got)

	require.NoError(t, stores.Organizations.AddViewer(ctx, "acme_com", "sub-carol"))
	require.NoError(t, stores.Organizations.AddAdmin(ctx, "acme_com", "sub-carol"))

	got, err = stores.Organizations.Get(ctx, "acme_com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sub-bob", "sub-carol"}, got.Admins)
	assert.Empty(t, got.Viewers)

	members, err := stores.Organizations.ListByMember(ctx, "sub-carol")
	require.NoError(t, err)
	require.Len(t, members, 1)

	require.NoError(t, stores.Organizations.RemoveMember(ctx, "acme_com", "sub-carol"))
	admins, err := stores.Organizations.ListByAdmin(ctx, "sub-carol")
	require.NoError(t, err)
	assert.Empty(t, admins)

	require.NoError(t, stores.Organizations.UpdateProfile(ctx, "acme_com", "Acme", models.Profile{Sector: "mining"}))
	got, err = stores.Organizations.Get(ctx, "acme_com")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "mining", got.Profile.Sector)

	require.ErrorIs(t, stores.Organizations.AddAdmin(ctx, "missing_com", "x"), store.ErrOrganizationNotFound)

	require.NoError(t, stores.Organizations.Delete(ctx, "acme_com"))
	require.ErrorIs(t, stores.Organizations.Delete(ctx, "acme_com"), store.ErrOrganizationNotFound)
}

func TestUserAndJoinRequestStore_Integration(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()

	user := &models.User{
		Email:     "carol@acme.com",
		TenantKey: "acme_com",
		Role:      models.RoleViewer,
		Status:    models.UserStatusPendingApproval,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, stores.Users.Create(ctx, user))
	require.ErrorIs(t, stores.Users.Create(ctx, user), store.ErrUserAlreadyExists)

	require.NoError(t, stores.Users.Activate(ctx, "carol@acme.com", models.RoleAdmin))
	got, err := stores.Users.Get(ctx, "carol@acme.com")
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, got.Status)
	assert.Equal(t, models.RoleAdmin, got.Role)

	users, err := stores.Users.ListByTenant(ctx, "acme_com")
	require.NoError(t, err)
	assert.Len(t, users, 1)

	req := &models.JoinRequest{
		JoinID:    models.JoinRequestID("carol@acme.com", "acme_com"),
		Email:     "carol@acme.com",
		TenantKey: "acme_com",
		Status:    models.JoinRequestPending,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, stores.JoinRequests.Create(ctx, req))
	require.ErrorIs(t, stores.JoinRequests.Create(ctx, req), store.ErrJoinRequestAlreadyExists)

	pending, err := stores.JoinRequests.ListByTenant(ctx, "acme_com", models.JoinRequestPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, stores.JoinRequests.SetStatus(ctx, req.JoinID, models.JoinRequestApproved, "sub-bob"))
	decided, err := stores.JoinRequests.Get(ctx, req.JoinID)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestApproved, decided.Status)
	assert.Equal(t, "sub-bob", decided.DecidedBy)
	assert.NotNil(t, decided.DecidedAt)

	pending, err = stores.JoinRequests.ListByTenant(ctx, "acme_com", models.JoinRequestPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	reopened := *req
	reopened.Message = "second attempt"
	require.NoError(t, stores.JoinRequests.Put(ctx, &reopened))
	reread, err := stores.JoinRequests.Get(ctx, req.JoinID)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestPending, reread.Status)
	assert.Equal(t, "second attempt", reread.Message)
	assert.Empty(t, reread.DecidedBy)
	assert.Nil(t, reread.DecidedAt)

	require.NoError(t, stores.Users.Delete(ctx, "carol@acme.com"))
	require.ErrorIs(t, stores.Users.Delete(ctx, "carol@acme.com"), store.ErrUserNotFound)
}

func TestSubscriptionStore_Integration(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()

	var l3 *models.Tier
	for _, tier := range models.DefaultTiers() {
		require.NoError(t, stores.Tiers.Create(ctx, tier))
		if tier.Code == models.TierL3 {
			l3 = tier
		}
	}

	tiers, err := stores.Tiers.List(ctx)
	require.NoError(t, err)
	require.Len(t, tiers, 5)
	assert.Equal(t, models.TierL0, tiers[0].Code)
	assert.Equal(t, models.TierLE, tiers[4].Code)

	sub := models.NewSubscription("acme_com", l3, time.Now())
	require.NoError(t, stores.Subscriptions.Create(ctx, sub))
	require.ErrorIs(t, stores.Subscriptions.Create(ctx, sub), store.ErrSubscriptionAlreadyExists)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := stores.Subscriptions.IncrementIfBelow(ctx, "acme_com", models.ActionRun); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, granted)

	_, err = stores.Subscriptions.IncrementIfBelow(ctx, "acme_com", models.ActionRun)
	require.ErrorIs(t, err, store.ErrLimitReached)

	_, err = stores.Subscriptions.IncrementIfBelow(ctx, "missing_com", models.ActionRun)
	require.ErrorIs(t, err, store.ErrSubscriptionNotFound)

	n, err := stores.Subscriptions.Increment(ctx, "acme_com", models.ActionEdit, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	sub.Level = models.TierLE
	sub.RunQuota = models.Unlimited
	require.NoError(t, stores.Subscriptions.Update(ctx, sub))

	n, err = stores.Subscriptions.IncrementIfBelow(ctx, "acme_com", models.ActionRun)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	got, err := stores.Subscriptions.Get(ctx, "acme_com")
	require.NoError(t, err)
	assert.Equal(t, models.TierLE, got.Level)
	assert.Equal(t, int64(2), got.EditCount)
}

func TestRoleStore_Integration(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()

	role := &models.RoleDefinition{RoleID: "auditor", Name: "Auditor", Permissions: []string{"orgs:read"}}
	require.NoError(t, stores.Roles.Put(ctx, role))

	got, err := stores.Roles.Get(ctx, "auditor")
	require.NoError(t, err)
	assert.Equal(t, role, got)

	require.NoError(t, stores.Roles.Delete(ctx, "auditor"))
	_, err = stores.Roles.Get(ctx, "auditor")
	require.ErrorIs(t, err, store.ErrRoleNotFound)
}
