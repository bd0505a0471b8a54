package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// TierStore implements store.TierStore using PostgreSQL.
type TierStore struct {
	*db
}

const tierColumns = `sub_level, name, description, max_edits, max_apps, run_quota, allowed_tabs, price_monthly, price_onetime_registration`

func (s *TierStore) Create(ctx context.Context, tier *models.Tier) error {
	return s.write(ctx, `INSERT INTO subscription_tiers (`+tierColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, tier)
}

func (s *TierStore) Put(ctx context.Context, tier *models.Tier) error {
	return s.write(ctx, `
		INSERT INTO subscription_tiers (`+tierColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (sub_level) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			max_edits = EXCLUDED.max_edits,
			max_apps = EXCLUDED.max_apps,
			run_quota = EXCLUDED.run_quota,
			allowed_tabs = EXCLUDED.allowed_tabs,
			price_monthly = EXCLUDED.price_monthly,
			price_onetime_registration = EXCLUDED.price_onetime_registration`, tier)
}

func (s *TierStore) write(ctx context.Context, query string, tier *models.Tier) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, query,
		tier.Code,
		tier.Name,
		tier.Description,
		tier.MaxEdits,
		tier.MaxApps,
		tier.RunQuota,
		nonNil(tier.AllowedTabs),
		tier.PriceMonthly,
		tier.PriceOneTimeRegistration,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrTierAlreadyExists
		}
		return mapPostgresError(ctx, err, "failed to write tier")
	}

	return nil
}

func (s *TierStore) Get(ctx context.Context, code models.TierCode) (*models.Tier, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tier, err := scanTier(s.pool.QueryRow(ctx, `SELECT `+tierColumns+` FROM subscription_tiers WHERE sub_level = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTierNotFound
		}
		return nil, mapPostgresError(ctx, err, "failed to get tier")
	}

	return tier, nil
}

func (s *TierStore) List(ctx context.Context) ([]*models.Tier, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT `+tierColumns+` FROM subscription_tiers`)
	if err != nil {
		return nil, mapPostgresError(ctx, err, "failed to list tiers")
	}

	tiers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Tier, error) {
		return scanTier(row)
	})
	if err != nil {
		return nil, mapPostgresError(ctx, err, "failed to scan tiers")
	}

	models.SortTiers(tiers)
	return tiers, nil
}

func (s *TierStore) Delete(ctx context.Context, code models.TierCode) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, `DELETE FROM subscription_tiers WHERE sub_level = $1`, code)
	if err != nil {
		return mapPostgresError(ctx, err, "failed to delete tier")
	}

	if result.RowsAffected() == 0 {
		return store.ErrTierNotFound
	}

	return nil
}

func scanTier(row pgx.Row) (*models.Tier, error) {
	var tier models.Tier
	err := row.Scan(
		&tier.Code,
		&tier.Name,
		&tier.Description,
		&tier.MaxEdits,
		&tier.MaxApps,
		&tier.RunQuota,
		&tier.AllowedTabs,
		&tier.PriceMonthly,
		&tier.PriceOneTimeRegistration,
	)
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// RoleStore implements store.RoleStore using PostgreSQL.
type RoleStore struct {
	*db
}

func (s *RoleStore) Put(ctx context.Context, role *models.RoleDefinition) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO roles (role_id, name, description, permissions) VALUES ($1, $2, $3, $4)
		ON CONFLICT (role_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			permissions = EXCLUDED.permissions`,
		role.RoleID, role.Name, role.Description, nonNil(role.Permissions))
	if err != nil {
		return mapPostgresError(ctx, err, "failed to put role")
	}

	return nil
}

func (s *RoleStore) Get(ctx context.Context, roleID string) (*models.RoleDefinition, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var role models.RoleDefinition
	err := s.pool.QueryRow(ctx, `SELECT role_id, name, description, permissions FROM roles WHERE role_id = $1`, roleID).
		Scan(&role.RoleID, &role.Name, &role.Description, &role.Permissions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrRoleNotFound
		}
		return nil, mapPostgresError(ctx, err, "failed to get role")
	}

	return &role, nil
}

func (s *RoleStore) List(ctx context.Context) ([]*models.RoleDefinition, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT role_id, name, description, permissions FROM roles ORDER BY role_id`)
	if err != nil {
		return nil, mapPostgresError(ctx, err, "failed to list roles")
	}

	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.RoleDefinition, error) {
		var role models.RoleDefinition
		if err := row.Scan(&role.RoleID, &role.Name, &role.Description, &role.Permissions); err != nil {
			return nil, err
		}
		return &role, nil
	})
	if err != nil {
		return nil, mapPostgresError(ctx, err, "failed to scan roles")
	}

	return roles, nil
}

func (s *RoleStore) Delete(ctx context.Context, roleID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, `DELETE FROM roles WHERE role_id = $1`, roleID)
	if err != nil {
		return mapPostgresError(ctx, err, "failed to delete role")
	}

	if result.RowsAffected() == 0 {
		return store.ErrRoleNotFound
	}

	return nil
}
