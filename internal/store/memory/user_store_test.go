package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

func TestMemoryUserStore(t *testing.T) {
	st := NewUserStore()
	ctx := context.Background()

	user := &models.User{
		Email:     "carol@acme.com",
		TenantKey: "acme_com",
		Role:      models.RoleViewer,
		Status:    models.UserStatusPendingApproval,
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.Create(ctx, user))
	require.ErrorIs(t, st.Create(ctx, user), store.ErrUserAlreadyExists)

	require.NoError(t, st.Activate(ctx, "carol@acme.com", models.RoleAdmin))
	require.NoError(t, st.Activate(ctx, "carol@acme.com", models.RoleAdmin))

	got, err := st.Get(ctx, "carol@acme.com")
	require.NoError(t, err)
	require.True(t, got.IsActive())
	require.Equal(t, models.RoleAdmin, got.Role)

	users, err := st.ListByTenant(ctx, "acme_com")
	require.NoError(t, err)
	require.Len(t, users, 1)

	require.NoError(t, st.Delete(ctx, "carol@acme.com"))
	_, err = st.Get(ctx, "carol@acme.com")
	require.ErrorIs(t, err, store.ErrUserNotFound)
	require.ErrorIs(t, st.SetRole(ctx, "carol@acme.com", models.RoleViewer), store.ErrUserNotFound)
}

func TestMemoryJoinRequestStore(t *testing.T) {
	st := NewJoinRequestStore()
	ctx := context.Background()

	req := &models.JoinRequest{
		JoinID:    models.JoinRequestID("carol@acme.com", "acme_com"),
		Email:     "carol@acme.com",
		TenantKey: "acme_com",
		Status:    models.JoinRequestPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.Create(ctx, req))
	require.ErrorIs(t, st.Create(ctx, req), store.ErrJoinRequestAlreadyExists)

	pending, err := st.ListByTenant(ctx, "acme_com", models.JoinRequestPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, st.SetStatus(ctx, req.JoinID, models.JoinRequestApproved, "alice"))

	pending, err = st.ListByTenant(ctx, "acme_com", models.JoinRequestPending)
	require.NoError(t, err)
	require.Empty(t, pending)

	got, err := st.Get(ctx, req.JoinID)
	require.NoError(t, err)
	require.Equal(t, models.JoinRequestApproved, got.Status)
	require.Equal(t, "alice", got.DecidedBy)
	require.NotNil(t, got.DecidedAt)

	reopened := *req
	reopened.Message = "second attempt"
	require.NoError(t, st.Put(ctx, &reopened))

	got, err = st.Get(ctx, req.JoinID)
	require.NoError(t, err)
	require.Equal(t, models.JoinRequestPending, got.Status)
	require.Equal(t, "second attempt", got.Message)
	require.Empty(t, got.DecidedBy)
	require.Nil(t, got.DecidedAt)

	_, err = st.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrJoinRequestNotFound)
}

func TestMemoryTierStore(t *testing.T) {
	st := NewTierStore()
	ctx := context.Background()

	for _, tier := range models.DefaultTiers() {
		require.NoError(t, st.Create(ctx, tier))
	}
	require.ErrorIs(t, st.Create(ctx, models.DefaultTiers()[0]), store.ErrTierAlreadyExists)

	tiers, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, tiers, 5)
	require.Equal(t, models.TierL0, tiers[0].Code)
	require.Equal(t, models.TierLE, tiers[4].Code)

	require.NoError(t, st.Delete(ctx, models.TierL3))
	_, err = st.Get(ctx, models.TierL3)
	require.ErrorIs(t, err, store.ErrTierNotFound)
}
