// Package quota maps subscription tiers to limits and enforces them.
package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tenancy/internal/errdefs"
	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// TierService manages the tier catalogue.
type TierService struct {
	tiers store.TierStore
}

// NewTierService returns a service over the tier store.
func NewTierService(tiers store.TierStore) *TierService {
	return &TierService{tiers: tiers}
}

// GetTierLimits returns the limits registered for code.
func (s *TierService) GetTierLimits(ctx context.Context, code models.TierCode) (*models.Tier, error) {
	tier, err := s.tiers.Get(ctx, code)
	if err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrTierNotFound, string(code))
	}
	return tier, nil
}

// PutTier creates or replaces a tier definition.
func (s *TierService) PutTier(ctx context.Context, tier *models.Tier) error {
	if err := ValidateTier(tier); err != nil {
		return err
	}
	if err := s.tiers.Put(ctx, tier); err != nil {
		return errdefs.FromStore(err, errdefs.ErrTierNotFound, string(tier.Code))
	}
	return nil
}

// ListTiers returns every registered tier.
func (s *TierService) ListTiers(ctx context.Context) ([]*models.Tier, error) {
	tiers, err := s.tiers.List(ctx)
	if err != nil {
		return nil, errdefs.StorageUnavailable("list tiers", err)
	}
	return tiers, nil
}

// DeleteTier removes the definition for code. Existing subscriptions keep their snapshot.
func (s *TierService) DeleteTier(ctx context.Context, code models.TierCode) error {
	if err := s.tiers.Delete(ctx, code); err != nil {
		return errdefs.FromStore(err, errdefs.ErrTierNotFound, string(code))
	}
	return nil
}

// Seed inserts each tier that is not already registered and returns how
// many were added. Existing definitions are left untouched.
func (s *TierService) Seed(ctx context.Context, tiers []*models.Tier) (int, error) {
	added := 0
	for _, tier := range tiers {
		if err := ValidateTier(tier); err != nil {
			return added, err
		}
		err := s.tiers.Create(ctx, tier)
		switch {
		case err == nil:
			added++
			log.Info().Str("tier", string(tier.Code)).Msg("tier seeded")
		case errors.Is(err, store.ErrTierAlreadyExists):
			log.Debug().Str("tier", string(tier.Code)).Msg("tier already registered")
		default:
			return added, errdefs.StorageUnavailable("seed tier "+string(tier.Code), err)
		}
	}
	return added, nil
}

// ValidateTier checks a tier definition before it is stored.
func ValidateTier(tier *models.Tier) error {
	if tier == nil || tier.Code == "" {
		return errdefs.InvalidArgument("tier code is required")
	}
	for name, v := range map[string]int64{
		"max_edits": tier.MaxEdits,
		"max_apps":  tier.MaxApps,
		"run_quota": tier.RunQuota,
	} {
		if v < models.Unlimited {
			return errdefs.InvalidArgument(fmt.Sprintf("tier %s: %s must be >= %d", tier.Code, name, models.Unlimited))
		}
	}
	return nil
}
