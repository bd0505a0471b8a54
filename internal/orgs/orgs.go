// Package orgs manages organizations directly: creation outside of the
// registration flow, profile updates, listing and switching.
package orgs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfeidau/tenancy/internal/auth"
	"github.com/wolfeidau/tenancy/internal/authz"
	"github.com/wolfeidau/tenancy/internal/errdefs"
	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/quota"
	"github.com/wolfeidau/tenancy/internal/store"
	"github.com/wolfeidau/tenancy/internal/telemetry"
	"github.com/wolfeidau/tenancy/internal/tenant"
)

// CreateOrgInput is the body of an organization creation.
type CreateOrgInput struct {
	OrgName   string `json:"orgName"`
	OrgDomain string `json:"orgDomain"`
	ProfileInput
}

// ProfileInput carries the optional profile fields. Empty fields are left
// unchanged on update.
type ProfileInput struct {
	Sector               string   `json:"sector,omitempty"`
	WebsiteURL           string   `json:"websiteUrl,omitempty"`
	CountriesOfOperation []string `json:"countriesOfOperation,omitempty"`
	HomeURL              string   `json:"homeUrl,omitempty"`
	AboutUsURL           string   `json:"aboutUsUrl,omitempty"`
	AdditionalDetails    string   `json:"additionalDetails,omitempty"`
}

// UpdateOrgInput is the body of a profile update.
type UpdateOrgInput struct {
	OrgName string `json:"orgName,omitempty"`
	ProfileInput
}

// CreateOrgResult reports the tenant key of a created organization.
type CreateOrgResult struct {
	TenantKey string `json:"clientName"`
}

// SwitchResult reports the organization the caller switched to.
type SwitchResult struct {
	SwitchedTo string `json:"switchedTo"`
}

// Service manages organizations and their lifecycle subscriptions.
type Service struct {
	orgs     store.OrganizationStore
	subs     *quota.SubscriptionService
	resolver *tenant.Resolver
	authz    *authz.Authorizer
	now      func() time.Time
}

// NewService wires the organization service.
func NewService(orgs store.OrganizationStore, subs *quota.SubscriptionService, resolver *tenant.Resolver, az *authz.Authorizer) *Service {
	return &Service{
		orgs:     orgs,
		subs:     subs,
		resolver: resolver,
		authz:    az,
		now:      time.Now,
	}
}

// CreateOrg creates the organization for in.OrgDomain with the caller as its
// only admin, along with an L0 subscription.
func (s *Service) CreateOrg(ctx context.Context, in CreateOrgInput, caller auth.Identity) (*CreateOrgResult, error) {
	if caller.IsAnonymous() {
		return nil, errdefs.Forbidden("", string(authz.AdministerOrg), "caller is not authenticated")
	}

	tenantKey, err := s.resolver.TenantFromDomain(in.OrgDomain)
	if err != nil {
		return nil, err
	}

	org := s.newOrganization(tenantKey, in, caller)
	org.OwnerEmail = caller.Email

	if err := s.create(ctx, org, false); err != nil {
		return nil, err
	}

	return &CreateOrgResult{TenantKey: tenantKey}, nil
}

// CreateLegalEntityOrg provisions an organization under the caller's legal
// entity. The caller must be classified LE_ADMIN; the tenant key combines
// the caller's email domain with in.OrgDomain.
func (s *Service) CreateLegalEntityOrg(ctx context.Context, in CreateOrgInput, caller auth.Identity) (*CreateOrgResult, error) {
	if err := authz.RequireAnyRole(caller, authz.RoleLEAdmin); err != nil {
		return nil, err
	}

	leDomain, err := tenant.EmailDomain(caller.Email)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolver.TenantFromDomain(in.OrgDomain); err != nil {
		return nil, err
	}

	tenantKey := tenant.ResolveLegalEntityTenant(leDomain, in.OrgDomain)

	org := s.newOrganization(tenantKey, in, caller)
	org.Type = models.OrganizationTypeLegalEntity
	org.LegalEntityMaster = caller.ID()

	if err := s.create(ctx, org, true); err != nil {
		return nil, err
	}

	return &CreateOrgResult{TenantKey: tenantKey}, nil
}

func (s *Service) newOrganization(tenantKey string, in CreateOrgInput, caller auth.Identity) *models.Organization {
	name := in.OrgName
	if name == "" {
		name = in.OrgDomain
	}
	return &models.Organization{
		TenantKey: tenantKey,
		Name:      name,
		CreatedAt: s.now().UTC(),
		CreatedBy: caller.ID(),
		Admins:    []string{caller.ID()},
		Viewers:   []string{},
		Profile:   mergeProfile(models.Profile{}, in.ProfileInput),
	}
}

func (s *Service) create(ctx context.Context, org *models.Organization, legalEntity bool) error {
	if err := s.orgs.Create(ctx, org); err != nil {
		return errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, org.TenantKey)
	}

	var err error
	if legalEntity {
		_, err = s.subs.CreateLegalEntitySubscription(ctx, org.TenantKey, org.LegalEntityMaster)
	} else {
		_, err = s.subs.CreateSubscription(ctx, org.TenantKey, models.TierL0)
	}
	if err != nil {
		// best effort, an organization without a subscription cannot be used
		if derr := s.orgs.Delete(context.WithoutCancel(ctx), org.TenantKey); derr != nil {
			zerolog.Ctx(ctx).Error().Err(derr).Str("tenant", org.TenantKey).Msg("failed to roll back organization")
		}
		return err
	}

	zerolog.Ctx(ctx).Info().Str("tenant", org.TenantKey).Str("created_by", org.CreatedBy).Bool("legal_entity", legalEntity).Msg("organization created")
	telemetry.Add(ctx, telemetry.GetMetrics().OrganizationsTotal, attribute.Bool("legal_entity", legalEntity))

	return nil
}

// UpdateOrg merges the non-empty fields of in into the organization profile.
func (s *Service) UpdateOrg(ctx context.Context, tenantKey string, in UpdateOrgInput, caller auth.Identity) (*models.Organization, error) {
	org, err := s.authorize(ctx, tenantKey, caller, authz.AdministerOrg)
	if err != nil {
		return nil, err
	}

	profile := mergeProfile(org.Profile, in.ProfileInput)
	if err := s.orgs.UpdateProfile(ctx, tenantKey, in.OrgName, profile); err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, tenantKey)
	}

	if in.OrgName != "" {
		org.Name = in.OrgName
	}
	org.Profile = profile

	return org, nil
}

// ListForUser returns the organizations visible to the caller. Legal-entity
// callers see the organizations they master; everyone else sees those whose
// admin or viewer set contains them.
func (s *Service) ListForUser(ctx context.Context, caller auth.Identity) ([]*models.Organization, error) {
	if caller.IsAnonymous() {
		return nil, errdefs.InvalidArgument("missing user context")
	}

	list := s.orgs.ListByMember
	if caller.Tier == models.TierLE {
		list = s.orgs.ListByLegalEntityMaster
	}

	result := []*models.Organization{}
	seen := map[string]bool{}
	for _, id := range identityKeys(caller) {
		orgs, err := list(ctx, id)
		if err != nil {
			return nil, errdefs.StorageUnavailable("list organizations", err)
		}
		for _, org := range orgs {
			if !seen[org.TenantKey] {
				seen[org.TenantKey] = true
				result = append(result, org)
			}
		}
	}

	return result, nil
}

// Switch checks that the caller may act within tenantKey.
func (s *Service) Switch(ctx context.Context, tenantKey string, caller auth.Identity) (*SwitchResult, error) {
	if caller.Tier == models.TierLE {
		org, err := s.get(ctx, tenantKey)
		if err != nil {
			return nil, err
		}
		if org.LegalEntityMaster == "" || !caller.Matches(org.LegalEntityMaster) {
			return nil, s.deny(ctx, tenantKey, authz.ViewOrg, "not the legal-entity master of this organization")
		}
		return &SwitchResult{SwitchedTo: tenantKey}, nil
	}

	if _, err := s.authorize(ctx, tenantKey, caller, authz.ViewOrg); err != nil {
		return nil, err
	}

	return &SwitchResult{SwitchedTo: tenantKey}, nil
}

// ListAll returns every organization. Platform admins only.
func (s *Service) ListAll(ctx context.Context, caller auth.Identity) ([]*models.Organization, error) {
	if err := s.authz.RequirePlatformAdmin(caller); err != nil {
		return nil, err
	}

	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, errdefs.StorageUnavailable("list organizations", err)
	}
	if orgs == nil {
		orgs = []*models.Organization{}
	}

	return orgs, nil
}

// Delete removes an organization and its subscription. Platform admins only.
func (s *Service) Delete(ctx context.Context, tenantKey string, caller auth.Identity) error {
	if err := s.authz.RequirePlatformAdmin(caller); err != nil {
		return err
	}

	if err := s.orgs.Delete(ctx, tenantKey); err != nil {
		return errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, tenantKey)
	}

	if err := s.subs.DeleteSubscription(ctx, tenantKey); err != nil && errdefs.Kind(err) != errdefs.ErrSubscriptionNotFound {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("tenant", tenantKey).Str("deleted_by", caller.ID()).Msg("organization deleted")
	return nil
}

// Get returns an organization the caller may view.
func (s *Service) Get(ctx context.Context, tenantKey string, caller auth.Identity) (*models.Organization, error) {
	if s.authz.IsPlatformAdmin(caller) {
		return s.get(ctx, tenantKey)
	}
	return s.authorize(ctx, tenantKey, caller, authz.ViewOrg)
}

func (s *Service) get(ctx context.Context, tenantKey string) (*models.Organization, error) {
	if tenantKey == "" {
		return nil, errdefs.InvalidArgument("organization is required")
	}
	org, err := s.orgs.Get(ctx, tenantKey)
	if err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, tenantKey)
	}
	return org, nil
}

func (s *Service) authorize(ctx context.Context, tenantKey string, caller auth.Identity, capability authz.Capability) (*models.Organization, error) {
	org, err := s.get(ctx, tenantKey)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(caller, org, capability); err != nil {
		telemetry.Add(ctx, telemetry.GetMetrics().AuthzDenialsTotal, attribute.String("capability", string(capability)))
		return nil, err
	}
	return org, nil
}

func (s *Service) deny(ctx context.Context, tenantKey string, capability authz.Capability, detail string) error {
	telemetry.Add(ctx, telemetry.GetMetrics().AuthzDenialsTotal, attribute.String("capability", string(capability)))
	return errdefs.Forbidden(tenantKey, string(capability), detail)
}

func mergeProfile(p models.Profile, in ProfileInput) models.Profile {
	if in.Sector != "" {
		p.Sector = in.Sector
	}
	if in.WebsiteURL != "" {
		p.WebsiteURL = in.WebsiteURL
	}
	if len(in.CountriesOfOperation) > 0 {
		p.CountriesOfOperation = append([]string(nil), in.CountriesOfOperation...)
	}
	if in.HomeURL != "" {
		p.HomeURL = in.HomeURL
	}
	if in.AboutUsURL != "" {
		p.AboutUsURL = in.AboutUsURL
	}
	if in.AdditionalDetails != "" {
		p.AdditionalDetails = in.AdditionalDetails
	}
	return p
}

func identityKeys(id auth.Identity) []string {
	var keys []string
	if id.SubjectID != "" {
		keys = append(keys, id.SubjectID)
	}
	if id.Email != "" {
		keys = append(keys, id.Email)
	}
	return keys
}
