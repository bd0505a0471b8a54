package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
// Admins and viewers are text[] columns updated in single statements.
type OrganizationStore struct {
	*db
}

const organizationColumns = `
	client_name, organization_name, created_at, created_by, owner_email,
	admins, viewers, le_master, type, partner_code,
	sector, website_url, countries_of_operation, home_url, about_us_url, additional_details`

// Create creates a new organization in the database.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `INSERT INTO organizations (` + organizationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := s.pool.Exec(ctx, query,
		org.TenantKey,
		org.Name,
		org.CreatedAt,
		org.CreatedBy,
		org.OwnerEmail,
		nonNil(org.Admins),
		nonNil(org.Viewers),
		org.LegalEntityMaster,
		org.Type,
		org.PartnerCode,
		org.Profile.Sector,
		org.Profile.WebsiteURL,
		nonNil(org.Profile.CountriesOfOperation),
		org.Profile.HomeURL,
		org.Profile.AboutUsURL,
		org.Profile.AdditionalDetails,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrOrganizationAlreadyExists
		}
		return mapPostgresError(ctx, err, "failed to create organization")
	}

	log.Debug().Str("tenant", org.TenantKey).Msg("Created organization")

	return nil
}

// Get retrieves an organization by tenant key.
func (s *OrganizationStore) Get(ctx context.Context, tenantKey string) (*models.Organization, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE client_name = $1`, tenantKey)

	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, mapPostgresError(ctx, err, "failed to get organization")
	}

	return org, nil
}

// UpdateProfile replaces the profile columns and, when name is set, the display name.
func (s *OrganizationStore) UpdateProfile(ctx context.Context, tenantKey, name string, profile models.Profile) error {
	query := `
		UPDATE organizations SET
			organization_name = COALESCE(NULLIF($2, ''), organization_name),
			sector = $3,
			website_url = $4,
			countries_of_operation = $5,
			home_url = $6,
			about_us_url = $7,
			additional_details = $8
		WHERE client_name = $1`

	return s.exec(ctx, query, tenantKey,
		name,
		profile.Sector,
		profile.WebsiteURL,
		nonNil(profile.CountriesOfOperation),
		profile.HomeURL,
		profile.AboutUsURL,
		profile.AdditionalDetails,
	)
}

func (s *OrganizationStore) AddAdmin(ctx context.Context, tenantKey, identity string) error {
	query := `
		UPDATE organizations SET
			admins = CASE WHEN $2 = ANY(admins) THEN admins ELSE array_append(admins, $2) END,
			viewers = array_remove(viewers, $2)
		WHERE client_name = $1`
	return s.exec(ctx, query, tenantKey, identity)
}

func (s *OrganizationStore) AddViewer(ctx context.Context, tenantKey, identity string) error {
	query := `
		UPDATE organizations SET
			viewers = CASE WHEN $2 = ANY(viewers) THEN viewers ELSE array_append(viewers, $2) END,
			admins = array_remove(admins, $2)
		WHERE client_name = $1`
	return s.exec(ctx, query, tenantKey, identity)
}

func (s *OrganizationStore) RemoveMember(ctx context.Context, tenantKey, identity string) error {
	query := `
		UPDATE organizations SET
			admins = array_remove(admins, $2),
			viewers = array_remove(viewers, $2)
		WHERE client_name = $1`
	return s.exec(ctx, query, tenantKey, identity)
}

// Delete deletes an organization by tenant key.
func (s *OrganizationStore) Delete(ctx context.Context, tenantKey string) error {
	if err := s.exec(ctx, `DELETE FROM organizations WHERE client_name = $1`, tenantKey); err != nil {
		return err
	}

	log.Info().Str("tenant", tenantKey).Msg("Deleted organization")

	return nil
}

func (s *OrganizationStore) List(ctx context.Context) ([]*models.Organization, error) {
	return s.list(ctx, `TRUE`)
}

func (s *OrganizationStore) ListByMember(ctx context.Context, identity string) ([]*models.Organization, error) {
	return s.list(ctx, `$1 = ANY(admins) OR $1 = ANY(viewers)`, identity)
}

func (s *OrganizationStore) ListByAdmin(ctx context.Context, identity string) ([]*models.Organization, error) {
	return s.list(ctx, `$1 = ANY(admins)`, identity)
}

func (s *OrganizationStore) ListByLegalEntityMaster(ctx context.Context, identity string) ([]*models.Organization, error) {
	return s.list(ctx, `le_master <> '' AND le_master = $1`, identity)
}

func (s *OrganizationStore) list(ctx context.Context, where string, args ...any) ([]*models.Organization, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE `+where+` ORDER BY client_name`, args...)
	if err != nil {
		return nil, mapPostgresError(ctx, err, "failed to list organizations")
	}

	orgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Organization, error) {
		return scanOrganization(row)
	})
	if err != nil {
		return nil, mapPostgresError(ctx, err, "failed to scan organizations")
	}

	return orgs, nil
}

// exec runs a single-row update and reports ErrOrganizationNotFound when no row matched.
func (s *OrganizationStore) exec(ctx context.Context, query string, args ...any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPostgresError(ctx, err, "failed to update organization")
	}

	if result.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}

	return nil
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(
		&org.TenantKey,
		&org.Name,
		&org.CreatedAt,
		&org.CreatedBy,
		&org.OwnerEmail,
		&org.Admins,
		&org.Viewers,
		&org.LegalEntityMaster,
		&org.Type,
		&org.PartnerCode,
		&org.Profile.Sector,
		&org.Profile.WebsiteURL,
		&org.Profile.CountriesOfOperation,
		&org.Profile.HomeURL,
		&org.Profile.AboutUsURL,
		&org.Profile.AdditionalDetails,
	)
	if err != nil {
		return nil, err
	}
	if len(org.Profile.CountriesOfOperation) == 0 {
		org.Profile.CountriesOfOperation = nil
	}
	return &org, nil
}

// nonNil maps a nil slice to an empty one so NOT NULL array columns accept it.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
