package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/tenancy/internal/config"
	"github.com/wolfeidau/tenancy/internal/logger"
	"github.com/wolfeidau/tenancy/internal/quota"
	"github.com/wolfeidau/tenancy/internal/roles"
)

// SeedCmd loads the tier and role catalogue into the configured store.
type SeedCmd struct {
	config.Config `embed:""`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	stores, closeStores, err := openStores(ctx, log, &c.Config)
	if err != nil {
		return err
	}
	defer closeStores()

	return seedCatalogue(log.WithContext(ctx), c.CatalogueFile, quota.NewTierService(stores.Tiers), roles.NewService(stores.Roles))
}

// seedCatalogue adds the catalogue entries that are not yet stored.
func seedCatalogue(ctx context.Context, path string, tiers *quota.TierService, roleService *roles.Service) error {
	cat, err := config.LoadCatalogue(path)
	if err != nil {
		return err
	}

	addedTiers, err := tiers.Seed(ctx, cat.Tiers)
	if err != nil {
		return fmt.Errorf("failed to seed tiers: %w", err)
	}

	addedRoles, err := roleService.Seed(ctx, cat.Roles)
	if err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("file", path).
		Int("tiers_added", addedTiers).
		Int("roles_added", addedRoles).
		Msg("Catalogue seeded")

	return nil
}
