package quota

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfeidau/tenancy/internal/errdefs"
	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
	"github.com/wolfeidau/tenancy/internal/telemetry"
)

// SubscriptionUpdate carries the mutable fields of a subscription. Nil fields
// are left unchanged. Setting Level re-snapshots limits from the tier.
type SubscriptionUpdate struct {
	Level         *models.TierCode `json:"subscription_level,omitempty"`
	PaymentStatus *string          `json:"payment_status,omitempty"`
	Progress      *int64           `json:"progress,omitempty"`
}

// SubscriptionService owns subscription records and enforces their limits.
type SubscriptionService struct {
	subs  store.SubscriptionStore
	tiers *TierService
	now   func() time.Time
}

// NewSubscriptionService returns a service snapshotting limits from tiers.
func NewSubscriptionService(subs store.SubscriptionStore, tiers *TierService) *SubscriptionService {
	return &SubscriptionService{subs: subs, tiers: tiers, now: time.Now}
}

// CreateSubscription snapshots the limits of code onto a new subscription.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, tenantKey string, code models.TierCode) (*models.Subscription, error) {
	return s.create(ctx, tenantKey, code, "")
}

// CreateLegalEntitySubscription creates an LE tier subscription owned by master.
func (s *SubscriptionService) CreateLegalEntitySubscription(ctx context.Context, tenantKey, master string) (*models.Subscription, error) {
	return s.create(ctx, tenantKey, models.TierLE, master)
}

func (s *SubscriptionService) create(ctx context.Context, tenantKey string, code models.TierCode, master string) (*models.Subscription, error) {
	if tenantKey == "" {
		return nil, errdefs.InvalidArgument("tenant key is required")
	}

	tier, err := s.tiers.GetTierLimits(ctx, code)
	if err != nil {
		return nil, err
	}

	sub := models.NewSubscription(tenantKey, tier, s.now().UTC())
	sub.LegalEntityMaster = master

	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrSubscriptionNotFound, tenantKey)
	}

	log.Info().Str("tenant", tenantKey).Str("tier", string(code)).Msg("subscription created")
	return sub, nil
}

// GetSubscription returns the subscription of tenantKey.
func (s *SubscriptionService) GetSubscription(ctx context.Context, tenantKey string) (*models.Subscription, error) {
	sub, err := s.subs.Get(ctx, tenantKey)
	if err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrSubscriptionNotFound, tenantKey)
	}
	return sub, nil
}

// UpdateSubscription merges upd into the stored subscription. Usage counters
// are never reset by an update.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, tenantKey string, upd SubscriptionUpdate) (*models.Subscription, error) {
	sub, err := s.GetSubscription(ctx, tenantKey)
	if err != nil {
		return nil, err
	}

	if upd.Level != nil {
		tier, err := s.tiers.GetTierLimits(ctx, *upd.Level)
		if err != nil {
			return nil, err
		}
		sub.ApplyTier(tier)
	}
	if upd.PaymentStatus != nil {
		switch *upd.PaymentStatus {
		case models.PaymentStatusPaid, models.PaymentStatusUnpaid:
			sub.PaymentStatus = *upd.PaymentStatus
		default:
			return nil, errdefs.InvalidArgument("payment_status must be paid or unpaid")
		}
	}
	if upd.Progress != nil {
		if *upd.Progress < 0 || *upd.Progress > 100 {
			return nil, errdefs.InvalidArgument("progress must be between 0 and 100")
		}
		sub.Progress = *upd.Progress
	}
	sub.UpdatedAt = s.now().UTC()

	if err := s.subs.Update(ctx, sub); err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrSubscriptionNotFound, tenantKey)
	}
	return sub, nil
}

// DeleteSubscription removes the subscription of tenantKey.
func (s *SubscriptionService) DeleteSubscription(ctx context.Context, tenantKey string) error {
	if err := s.subs.Delete(ctx, tenantKey); err != nil {
		return errdefs.FromStore(err, errdefs.ErrSubscriptionNotFound, tenantKey)
	}
	return nil
}

// EnforceLimit fails with QuotaExceeded when the counter for action has
// reached a finite limit. It has no side effect; pairing it with
// IncrementRunCounter is not atomic, use Consume where that matters.
func (s *SubscriptionService) EnforceLimit(ctx context.Context, tenantKey string, action models.Action) error {
	if !action.Valid() {
		return errdefs.InvalidArgument("unknown action " + string(action))
	}

	sub, err := s.GetSubscription(ctx, tenantKey)
	if err != nil {
		return err
	}

	used, limit := sub.Usage(action)
	if !models.IsUnlimited(limit) && used >= limit {
		telemetry.Add(ctx, telemetry.GetMetrics().QuotaDeniedTotal, attribute.String("action", string(action)))
		return errdefs.QuotaExceeded(tenantKey, action.LimitField(), used, limit)
	}
	return nil
}

// IncrementRunCounter adds one to run_number without checking the quota.
func (s *SubscriptionService) IncrementRunCounter(ctx context.Context, tenantKey string) (int64, error) {
	n, err := s.subs.Increment(ctx, tenantKey, models.ActionRun, 1)
	if err != nil {
		return 0, errdefs.FromStore(err, errdefs.ErrSubscriptionNotFound, tenantKey)
	}
	return n, nil
}

// Consume checks and increments the counter for action in one conditional
// store update and returns the new counter value.
func (s *SubscriptionService) Consume(ctx context.Context, tenantKey string, action models.Action) (int64, error) {
	if !action.Valid() {
		return 0, errdefs.InvalidArgument("unknown action " + string(action))
	}

	n, err := s.subs.IncrementIfBelow(ctx, tenantKey, action)
	if errors.Is(err, store.ErrLimitReached) {
		telemetry.Add(ctx, telemetry.GetMetrics().QuotaDeniedTotal, attribute.String("action", string(action)))

		var limit int64
		if sub, gerr := s.subs.Get(ctx, tenantKey); gerr == nil {
			_, limit = sub.Usage(action)
		}
		return n, errdefs.QuotaExceeded(tenantKey, action.LimitField(), n, limit)
	}
	if err != nil {
		return 0, errdefs.FromStore(err, errdefs.ErrSubscriptionNotFound, tenantKey)
	}

	telemetry.Add(ctx, telemetry.GetMetrics().QuotaConsumedTotal, attribute.String("action", string(action)))
	return n, nil
}

// ConsumeRun consumes one run from the tenant's run quota.
func (s *SubscriptionService) ConsumeRun(ctx context.Context, tenantKey string) (int64, error) {
	return s.Consume(ctx, tenantKey, models.ActionRun)
}

// ConsumeEdit consumes one edit from the tenant's edit limit.
func (s *SubscriptionService) ConsumeEdit(ctx context.Context, tenantKey string) (int64, error) {
	return s.Consume(ctx, tenantKey, models.ActionEdit)
}

// ConsumeApp consumes one application slot from the tenant's app limit.
func (s *SubscriptionService) ConsumeApp(ctx context.Context, tenantKey string) (int64, error) {
	return s.Consume(ctx, tenantKey, models.ActionAddApp)
}

// CheckFeatureAllowed reports whether feature is in the tenant's snapshotted feature set.
func (s *SubscriptionService) CheckFeatureAllowed(ctx context.Context, tenantKey, feature string) (bool, error) {
	sub, err := s.GetSubscription(ctx, tenantKey)
	if err != nil {
		return false, err
	}
	return sub.HasFeature(feature), nil
}
