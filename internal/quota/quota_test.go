package quota

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tenancy/internal/errdefs"
	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store/memory"
)

func newServices(t *testing.T) (*TierService, *SubscriptionService) {
	t.Helper()

	tiers := NewTierService(memory.NewTierStore())
	n, err := tiers.Seed(context.Background(), models.DefaultTiers())
	require.NoError(t, err)
	require.Equal(t, 5, n)

	return tiers, NewSubscriptionService(memory.NewSubscriptionStore(), tiers)
}

func ptr[T any](v T) *T { return &v }

func TestTierService(t *testing.T) {
	tiers, _ := newServices(t)
	ctx := context.Background()

	n, err := tiers.Seed(ctx, models.DefaultTiers())
	require.NoError(t, err)
	assert.Zero(t, n)

	le, err := tiers.GetTierLimits(ctx, models.TierLE)
	require.NoError(t, err)
	assert.True(t, models.IsUnlimited(le.RunQuota))
	assert.Equal(t, []string{"ISM", "E8", "Detections"}, le.AllowedTabs)

	_, err = tiers.GetTierLimits(ctx, "L9")
	require.ErrorIs(t, err, errdefs.ErrTierNotFound)
	assert.Contains(t, err.Error(), "key=L9")

	err = tiers.PutTier(ctx, &models.Tier{Code: "L4", MaxEdits: -2})
	require.ErrorIs(t, err, errdefs.ErrInvalidArgument)

	require.NoError(t, tiers.PutTier(ctx, &models.Tier{Code: "L4", Name: "Custom", MaxEdits: 10, MaxApps: 10, RunQuota: 10}))
	list, err := tiers.ListTiers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 6)

	require.NoError(t, tiers.DeleteTier(ctx, "L4"))
	require.ErrorIs(t, tiers.DeleteTier(ctx, "L4"), errdefs.ErrTierNotFound)
}

func TestCreateSubscription(t *testing.T) {
	_, subs := newServices(t)
	ctx := context.Background()

	sub, err := subs.CreateSubscription(ctx, "acme_com", models.TierL0)
	require.NoError(t, err)
	assert.Equal(t, models.TierL0, sub.Level)
	assert.Equal(t, models.PaymentStatusUnpaid, sub.PaymentStatus)
	assert.Zero(t, sub.RunNumber)

	_, err = subs.CreateSubscription(ctx, "acme_com", models.TierL1)
	require.ErrorIs(t, err, errdefs.ErrDuplicateOrganization)

	_, err = subs.CreateSubscription(ctx, "globex_com", "L9")
	require.ErrorIs(t, err, errdefs.ErrTierNotFound)

	_, err = subs.GetSubscription(ctx, "globex_com")
	require.ErrorIs(t, err, errdefs.ErrSubscriptionNotFound)
}

func TestLimitsAreSnapshotted(t *testing.T) {
	tiers, subs := newServices(t)
	ctx := context.Background()

	_, err := subs.CreateSubscription(ctx, "acme_com", models.TierL2)
	require.NoError(t, err)

	l2, err := tiers.GetTierLimits(ctx, models.TierL2)
	require.NoError(t, err)
	l2.RunQuota = 100
	require.NoError(t, tiers.PutTier(ctx, l2))

	sub, err := subs.GetSubscription(ctx, "acme_com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), sub.RunQuota)

	sub, err = subs.UpdateSubscription(ctx, "acme_com", SubscriptionUpdate{Level: ptr(models.TierL2)})
	require.NoError(t, err)
	assert.Equal(t, int64(100), sub.RunQuota)
}

func TestUpdateSubscription(t *testing.T) {
	_, subs := newServices(t)
	ctx := context.Background()

	_, err := subs.CreateSubscription(ctx, "acme_com", models.TierL1)
	require.NoError(t, err)
	_, err = subs.IncrementRunCounter(ctx, "acme_com")
	require.NoError(t, err)

	sub, err := subs.UpdateSubscription(ctx, "acme_com", SubscriptionUpdate{
		Level:         ptr(models.TierL3),
		PaymentStatus: ptr(models.PaymentStatusPaid),
		Progress:      ptr(int64(40)),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierL3, sub.Level)
	assert.Equal(t, int64(3), sub.RunQuota)
	assert.Equal(t, int64(1), sub.RunNumber)
	assert.Equal(t, models.PaymentStatusPaid, sub.PaymentStatus)

	_, err = subs.UpdateSubscription(ctx, "acme_com", SubscriptionUpdate{PaymentStatus: ptr("maybe")})
	require.ErrorIs(t, err, errdefs.ErrInvalidArgument)

	_, err = subs.UpdateSubscription(ctx, "missing_com", SubscriptionUpdate{})
	require.ErrorIs(t, err, errdefs.ErrSubscriptionNotFound)
}

func TestEnforceLimit(t *testing.T) {
	_, subs := newServices(t)
	ctx := context.Background()

	_, err := subs.CreateSubscription(ctx, "acme_com", models.TierL2)
	require.NoError(t, err)

	require.NoError(t, subs.EnforceLimit(ctx, "acme_com", models.ActionRun))
	for range 2 {
		_, err = subs.IncrementRunCounter(ctx, "acme_com")
		require.NoError(t, err)
	}

	err = subs.EnforceLimit(ctx, "acme_com", models.ActionRun)
	require.ErrorIs(t, err, errdefs.ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "limit=run_quota")
	assert.Contains(t, err.Error(), "key=acme_com")

	require.NoError(t, subs.EnforceLimit(ctx, "acme_com", models.ActionEdit))
	require.ErrorIs(t, subs.EnforceLimit(ctx, "acme_com", "delete"), errdefs.ErrInvalidArgument)
	require.ErrorIs(t, subs.EnforceLimit(ctx, "missing_com", models.ActionRun), errdefs.ErrSubscriptionNotFound)
}

func TestEnforceLimitZeroTier(t *testing.T) {
	_, subs := newServices(t)
	ctx := context.Background()

	_, err := subs.CreateSubscription(ctx, "acme_com", models.TierL0)
	require.NoError(t, err)

	for _, action := range []models.Action{models.ActionAddApp, models.ActionEdit, models.ActionRun} {
		require.ErrorIs(t, subs.EnforceLimit(ctx, "acme_com", action), errdefs.ErrQuotaExceeded, action)
	}
}

func TestEnforceLimitUnlimited(t *testing.T) {
	_, subs := newServices(t)
	ctx := context.Background()

	_, err := subs.CreateLegalEntitySubscription(ctx, "LE_le_com_client_org", "master@le.com")
	require.NoError(t, err)

	for range 20 {
		_, err := subs.IncrementRunCounter(ctx, "LE_le_com_client_org")
		require.NoError(t, err)
	}
	require.NoError(t, subs.EnforceLimit(ctx, "LE_le_com_client_org", models.ActionRun))

	sub, err := subs.GetSubscription(ctx, "LE_le_com_client_org")
	require.NoError(t, err)
	assert.Equal(t, "master@le.com", sub.LegalEntityMaster)
}

func TestConsumeNeverExceedsLimit(t *testing.T) {
	_, subs := newServices(t)
	ctx := context.Background()

	_, err := subs.CreateSubscription(ctx, "acme_com", models.TierL3)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		granted  int
		exceeded int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := subs.ConsumeApp(ctx, "acme_com")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case errdefs.Kind(err) == errdefs.ErrQuotaExceeded:
				exceeded++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, granted)
	assert.Equal(t, 15, exceeded)

	_, err = subs.ConsumeRun(ctx, "acme_com")
	require.NoError(t, err)
	_, err = subs.ConsumeEdit(ctx, "acme_com")
	require.NoError(t, err)

	_, err = subs.Consume(ctx, "missing_com", models.ActionRun)
	require.ErrorIs(t, err, errdefs.ErrSubscriptionNotFound)
}

func TestCheckFeatureAllowed(t *testing.T) {
	_, subs := newServices(t)
	ctx := context.Background()

	_, err := subs.CreateSubscription(ctx, "acme_com", models.TierL2)
	require.NoError(t, err)

	ok, err := subs.CheckFeatureAllowed(ctx, "acme_com", "E8")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = subs.CheckFeatureAllowed(ctx, "acme_com", "Detections")
	require.NoError(t, err)
	assert.False(t, ok)
}
