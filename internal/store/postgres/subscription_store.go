package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// SubscriptionStore implements store.SubscriptionStore using PostgreSQL.
// IncrementIfBelow is a single conditional UPDATE, so the limit check and
// the increment cannot interleave with another writer.
type SubscriptionStore struct {
	*db
}

const subscriptionColumns = `
	client_name, subscription_level, run_number, run_quota, max_edits, edit_count,
	max_apps, apps_count, features_access, payment_status, progress, le_master,
	created_at, updated_at`

func (s *SubscriptionStore) Create(ctx context.Context, sub *models.Subscription) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		sub.TenantKey,
		sub.Level,
		sub.RunNumber,
		sub.RunQuota,
		sub.MaxEdits,
		sub.EditCount,
		sub.MaxApps,
		sub.AppsCount,
		nonNil(sub.FeaturesAccess),
		sub.PaymentStatus,
		sub.Progress,
		sub.LegalEntityMaster,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrSubscriptionAlreadyExists
		}
		return mapPostgresError(ctx, err, "failed to create subscription")
	}

	log.Debug().Str("tenant", sub.TenantKey).Str("level", string(sub.Level)).Msg("Created subscription")

	return nil
}

func (s *SubscriptionStore) Get(ctx context.Context, tenantKey string) (*models.Subscription, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var sub models.Subscription
	err := s.pool.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE client_name = $1`, tenantKey).Scan(
		&sub.TenantKey,
		&sub.Level,
		&sub.RunNumber,
		&sub.RunQuota,
		&sub.MaxEdits,
		&sub.EditCount,
		&sub.MaxApps,
		&sub.AppsCount,
		&sub.FeaturesAccess,
		&sub.PaymentStatus,
		&sub.Progress,
		&sub.LegalEntityMaster,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrSubscriptionNotFound
		}
		return nil, mapPostgresError(ctx, err, "failed to get subscription")
	}

	return &sub, nil
}

func (s *SubscriptionStore) Update(ctx context.Context, sub *models.Subscription) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, `
		UPDATE subscriptions SET
			subscription_level = $2,
			run_quota = $3,
			max_edits = $4,
			max_apps = $5,
			features_access = $6,
			payment_status = $7,
			progress = $8,
			updated_at = now()
		WHERE client_name = $1`,
		sub.TenantKey,
		sub.Level,
		sub.RunQuota,
		sub.MaxEdits,
		sub.MaxApps,
		nonNil(sub.FeaturesAccess),
		sub.PaymentStatus,
		sub.Progress,
	)
	if err != nil {
		return mapPostgresError(ctx, err, "failed to update subscription")
	}

	if result.RowsAffected() == 0 {
		return store.ErrSubscriptionNotFound
	}

	return nil
}

func (s *SubscriptionStore) Delete(ctx context.Context, tenantKey string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, `DELETE FROM subscriptions WHERE client_name = $1`, tenantKey)
	if err != nil {
		return mapPostgresError(ctx, err, "failed to delete subscription")
	}

	if result.RowsAffected() == 0 {
		return store.ErrSubscriptionNotFound
	}

	return nil
}

func (s *SubscriptionStore) Increment(ctx context.Context, tenantKey string, action models.Action, by int64) (int64, error) {
	if !action.Valid() {
		return 0, fmt.Errorf("unknown action %q", action)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// column names come from the closed set of actions
	query := fmt.Sprintf(`
		UPDATE subscriptions SET %[1]s = %[1]s + $2, updated_at = now()
		WHERE client_name = $1
		RETURNING %[1]s`, action.Counter())

	var n int64
	if err := s.pool.QueryRow(ctx, query, tenantKey, by).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, store.ErrSubscriptionNotFound
		}
		return 0, mapPostgresError(ctx, err, "failed to increment "+action.Counter())
	}

	return n, nil
}

func (s *SubscriptionStore) IncrementIfBelow(ctx context.Context, tenantKey string, action models.Action) (int64, error) {
	if !action.Valid() {
		return 0, fmt.Errorf("unknown action %q", action)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		UPDATE subscriptions SET %[1]s = %[1]s + 1, updated_at = now()
		WHERE client_name = $1 AND (%[1]s < %[2]s OR %[2]s < 0)
		RETURNING %[1]s`, action.Counter(), action.LimitField())

	var n int64
	err := s.pool.QueryRow(ctx, query, tenantKey).Scan(&n)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapPostgresError(ctx, err, "failed to increment "+action.Counter())
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE client_name = $1)`, tenantKey).Scan(&exists); err != nil {
		return 0, mapPostgresError(ctx, err, "failed to check subscription")
	}
	if !exists {
		return 0, store.ErrSubscriptionNotFound
	}

	return 0, store.ErrLimitReached
}
