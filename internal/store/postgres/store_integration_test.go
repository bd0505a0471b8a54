//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) *store.Stores {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := NewPool(ctx, &Config{
		ConnString:   fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		AutoMigrate:  true,
		QueryTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(context.Background())
	})

	// a second run must find every migration applied
	require.NoError(t, RunMigrations(ctx, pool))

	return NewStores(pool, 5*time.Second)
}

func TestIntegration_Stores(t *testing.T) {
	ctx := context.Background()
	stores := setupPostgresContainer(t, ctx)

	t.Run("organizations", func(t *testing.T) {
		org := &models.Organization{
			TenantKey: "acme_com",
			Name:      "acme.com",
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			CreatedBy: "sub-bob",
			Admins:    []string{"sub-bob"},
			Viewers:   []string{},
		}
		require.NoError(t, stores.Organizations.Create(ctx, org))
		require.ErrorIs(t, stores.Organizations.Create(ctx, org), store.ErrOrganizationAlreadyExists)

		require.NoError(t, stores.Organizations.AddViewer(ctx, "acme_com", "sub-carol"))
		require.NoError(t, stores.Organizations.AddViewer(ctx, "acme_com", "sub-carol"))
		require.NoError(t, stores.Organizations.AddAdmin(ctx, "acme_com", "sub-carol"))

		got, err := stores.Organizations.Get(ctx, "acme_com")
		require.NoError(t, err)
		assert.Equal(t, []string{"sub-bob", "sub-carol"}, got.Admins)
		assert.Empty(t, got.Viewers)
		assert.True(t, got.CreatedAt.Equal(org.CreatedAt))

		members, err := stores.Organizations.ListByMember(ctx, "sub-carol")
		require.NoError(t, err)
		require.Len(t, members, 1)

		require.NoError(t, stores.Organizations.UpdateProfile(ctx, "acme_com", "", models.Profile{Sector: "mining", CountriesOfOperation: []string{"AU"}}))
		got, err = stores.Organizations.Get(ctx, "acme_com")
		require.NoError(t, err)
		assert.Equal(t, "acme.com", got.Name)
		assert.Equal(t, []string{"AU"}, got.Profile.CountriesOfOperation)

		require.ErrorIs(t, stores.Organizations.AddAdmin(ctx, "missing_com", "x"), store.ErrOrganizationNotFound)
	})

	t.Run("users and join requests", func(t *testing.T) {
		user := &models.User{
			Email:     "carol@acme.com",
			TenantKey: "acme_com",
			Role:      models.RoleViewer,
			Status:    models.UserStatusPendingApproval,
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, stores.Users.Create(ctx, user))
		require.ErrorIs(t, stores.Users.Create(ctx, user), store.ErrUserAlreadyExists)
		require.NoError(t, stores.Users.Activate(ctx, "carol@acme.com", models.RoleViewer))

		got, err := stores.Users.Get(ctx, "carol@acme.com")
		require.NoError(t, err)
		assert.Equal(t, models.UserStatusActive, got.Status)

		req := &models.JoinRequest{
			JoinID:    models.JoinRequestID("carol@acme.com", "acme_com"),
			Email:     "carol@acme.com",
			TenantKey: "acme_com",
			Status:    models.JoinRequestPending,
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, stores.JoinRequests.Create(ctx, req))
		require.ErrorIs(t, stores.JoinRequests.Create(ctx, req), store.ErrJoinRequestAlreadyExists)

		all, err := stores.JoinRequests.ListByTenant(ctx, "acme_com", "")
		require.NoError(t, err)
		assert.Len(t, all, 1)

		require.NoError(t, stores.JoinRequests.SetStatus(ctx, req.JoinID, models.JoinRequestRejected, "sub-bob"))
		decided, err := stores.JoinRequests.Get(ctx, req.JoinID)
		require.NoError(t, err)
		assert.Equal(t, models.JoinRequestRejected, decided.Status)
		require.NotNil(t, decided.DecidedAt)

		pending, err := stores.JoinRequests.ListByTenant(ctx, "acme_com", models.JoinRequestPending)
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
	})

	t.Run("subscriptions", func(t *testing.T) {
		for _, tier := range models.DefaultTiers() {
			require.NoError(t, stores.Tiers.Put(ctx, tier))
		}
		l2, err := stores.Tiers.Get(ctx, models.TierL2)
		require.NoError(t, err)

		sub := models.NewSubscription("globex_com", l2, time.Now())
		require.NoError(t, stores.Subscriptions.Create(ctx, sub))

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			granted int
		)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := stores.Subscriptions.IncrementIfBelow(ctx, "globex_com", models.ActionAddApp); err == nil {
					mu.Lock()
					granted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 2, granted)

		_, err = stores.Subscriptions.IncrementIfBelow(ctx, "globex_com", models.ActionAddApp)
		require.ErrorIs(t, err, store.ErrLimitReached)
		_, err = stores.Subscriptions.IncrementIfBelow(ctx, "missing_com", models.ActionAddApp)
		require.ErrorIs(t, err, store.ErrSubscriptionNotFound)

		n, err := stores.Subscriptions.Increment(ctx, "globex_com", models.ActionRun, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("roles", func(t *testing.T) {
		role := &models.RoleDefinition{RoleID: "auditor", Name: "Auditor", Permissions: []string{"orgs:read"}}
		require.NoError(t, stores.Roles.Put(ctx, role))

		roles, err := stores.Roles.List(ctx)
		require.NoError(t, err)
		require.Len(t, roles, 1)
		assert.Equal(t, role, roles[0])

		require.NoError(t, stores.Roles.Delete(ctx, "auditor"))
		require.ErrorIs(t, stores.Roles.Delete(ctx, "auditor"), store.ErrRoleNotFound)
	})
}
