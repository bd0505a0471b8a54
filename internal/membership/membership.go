// Package membership drives user-to-organization membership: registration,
// join requests, approval, invites and role changes.
package membership

import (
	"context"
	"errors"
	"strings"
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

const (
	MessageAlreadyRegistered = "User already registered with this organization"
	MessageJoinSubmitted     = "Organization exists, join request submitted (pending approval)"
	MessageCreated           = "New organization and user registered as admin"
	MessageJoinRequestSent   = "Join request sent"
)

// RegisterInput is the body of a registration.
type RegisterInput struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	PartnerCode string `json:"partnerCode,omitempty"`
}

// RegisterResult reports the outcome of RegisterOrJoin.
type RegisterResult struct {
	Message   string `json:"message"`
	TenantKey string `json:"client_name"`
	Joined    bool   `json:"joined"`
}

// JoinInput is the body of a join request.
type JoinInput struct {
	OrgDomain string `json:"orgDomain"`
	Message   string `json:"message,omitempty"`
}

// InviteInput is the body of an invite.
type InviteInput struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	TenantKey string `json:"client_name"`
}

// ApproveResult reports the outcome of ApproveJoinRequest.
type ApproveResult struct {
	Approved     bool        `json:"approved"`
	AssignedRole models.Role `json:"assignedRole"`
}

// Service implements the membership state machine over the storage port.
type Service struct {
	users    store.UserStore
	joins    store.JoinRequestStore
	orgs     store.OrganizationStore
	subs     *quota.SubscriptionService
	resolver *tenant.Resolver
	authz    *authz.Authorizer
	now      func() time.Time
}

// NewService wires the membership service.
func NewService(stores *store.Stores, subs *quota.SubscriptionService, resolver *tenant.Resolver, az *authz.Authorizer) *Service {
	return &Service{
		users:    stores.Users,
		joins:    stores.JoinRequests,
		orgs:     stores.Organizations,
		subs:     subs,
		resolver: resolver,
		authz:    az,
		now:      time.Now,
	}
}

// RegisterOrJoin registers a user against the organization derived from
// their email domain, creating the organization when it does not exist.
func (s *Service) RegisterOrJoin(ctx context.Context, in RegisterInput, caller auth.Identity) (*RegisterResult, error) {
	return s.register(ctx, in, caller, false)
}

// RegisterLegalEntity is RegisterOrJoin for legal-entity tenants: a newly
// created organization is flagged LE_ORG, mastered by the caller, and gets
// an LE tier subscription. Only platform admins may register one.
func (s *Service) RegisterLegalEntity(ctx context.Context, in RegisterInput, caller auth.Identity) (*RegisterResult, error) {
	if err := s.authz.RequirePlatformAdmin(caller); err != nil {
		telemetry.Add(ctx, telemetry.GetMetrics().AuthzDenialsTotal, attribute.String("capability", string(authz.PlatformAdmin)))
		s.recordRegistration(ctx, "rejected")
		return nil, err
	}
	return s.register(ctx, in, caller, true)
}

func (s *Service) register(ctx context.Context, in RegisterInput, caller auth.Identity, legalEntity bool) (*RegisterResult, error) {
	email := normalizeEmail(in.Email)
	if verified := normalizeEmail(caller.Email); verified != "" {
		if email == "" {
			email = verified
		}
		if email != verified {
			s.recordRegistration(ctx, "rejected")
			return nil, errdefs.Forbidden(email, "", "email does not match the authenticated identity")
		}
	}

	tenantKey, err := s.resolver.ResolveTenant(email)
	if err != nil {
		s.recordRegistration(ctx, "rejected")
		return nil, err
	}

	_, err = s.users.Get(ctx, email)
	switch {
	case err == nil:
		s.recordRegistration(ctx, "already_registered")
		return &RegisterResult{Message: MessageAlreadyRegistered, TenantKey: tenantKey, Joined: true}, nil
	case !errors.Is(err, store.ErrUserNotFound):
		return nil, errdefs.FromStore(err, errdefs.ErrUserNotFound, email)
	}

	existing, err := s.orgs.Get(ctx, tenantKey)
	switch {
	case err == nil:
		return s.submitJoin(ctx, email, in, caller, existing)
	case !errors.Is(err, store.ErrOrganizationNotFound):
		return nil, errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, tenantKey)
	}

	creator := caller.SubjectID
	if creator == "" {
		creator = email
	}

	org := &models.Organization{
		TenantKey:   tenantKey,
		Name:        strings.ReplaceAll(tenantKey, "_", "."),
		CreatedAt:   s.now().UTC(),
		CreatedBy:   creator,
		OwnerEmail:  email,
		Admins:      []string{creator},
		Viewers:     []string{},
		PartnerCode: in.PartnerCode,
	}
	if legalEntity {
		org.Type = models.OrganizationTypeLegalEntity
		org.LegalEntityMaster = creator
	}

	if err := s.orgs.Create(ctx, org); err != nil {
		if errors.Is(err, store.ErrOrganizationAlreadyExists) {
			// lost a creation race, the organization now exists
			existing, err := s.orgs.Get(ctx, tenantKey)
			if err != nil {
				return nil, errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, tenantKey)
			}
			return s.submitJoin(ctx, email, in, caller, existing)
		}
		return nil, errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, tenantKey)
	}

	if legalEntity {
		_, err = s.subs.CreateLegalEntitySubscription(ctx, tenantKey, creator)
	} else {
		_, err = s.subs.CreateSubscription(ctx, tenantKey, models.TierL0)
	}
	if err != nil {
		s.rollback(ctx, tenantKey, false)
		return nil, err
	}

	user := &models.User{
		Email:       email,
		Name:        in.Name,
		TenantKey:   tenantKey,
		Role:        models.RoleAdmin,
		Status:      models.UserStatusActive,
		SubjectID:   caller.SubjectID,
		PartnerCode: in.PartnerCode,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, store.ErrUserAlreadyExists) {
			s.rollback(ctx, tenantKey, true)
		}
		return nil, errdefs.FromStore(err, errdefs.ErrUserNotFound, email)
	}

	zerolog.Ctx(ctx).Info().Str("tenant", tenantKey).Str("email", email).Bool("legal_entity", legalEntity).Msg("organization registered")
	telemetry.Add(ctx, telemetry.GetMetrics().OrganizationsTotal, attribute.Bool("legal_entity", legalEntity))
	s.recordRegistration(ctx, "created")

	return &RegisterResult{Message: MessageCreated, TenantKey: tenantKey, Joined: true}, nil
}

// rollback removes the organization, and its subscription when one was
// written, after a later step of a registration failed.
func (s *Service) rollback(ctx context.Context, tenantKey string, subscription bool) {
	ctx = context.WithoutCancel(ctx)
	logger := zerolog.Ctx(ctx)
	if subscription {
		if err := s.subs.DeleteSubscription(ctx, tenantKey); err != nil && !errors.Is(err, errdefs.ErrSubscriptionNotFound) {
			logger.Error().Err(err).Str("tenant", tenantKey).Msg("failed to roll back subscription")
		}
	}
	if err := s.orgs.Delete(ctx, tenantKey); err != nil && !errors.Is(err, store.ErrOrganizationNotFound) {
		logger.Error().Err(err).Str("tenant", tenantKey).Msg("failed to roll back organization")
		return
	}
	logger.Warn().Str("tenant", tenantKey).Msg("registration rolled back")
}

func (s *Service) submitJoin(ctx context.Context, email string, in RegisterInput, caller auth.Identity, org *models.Organization) (*RegisterResult, error) {
	created, _, err := s.createPending(ctx, org, email, in.Name, in.PartnerCode, caller.SubjectID, "", false)
	if err != nil {
		return nil, err
	}
	if !created {
		s.recordRegistration(ctx, "already_registered")
		return &RegisterResult{Message: MessageAlreadyRegistered, TenantKey: org.TenantKey, Joined: true}, nil
	}

	s.recordRegistration(ctx, "join_submitted")
	return &RegisterResult{Message: MessageJoinSubmitted, TenantKey: org.TenantKey, Joined: false}, nil
}

// createPending creates the pending viewer membership and its join request.
// It returns false when a membership for email already existed, in which
// case the join request is only ensured when always is set.
func (s *Service) createPending(ctx context.Context, org *models.Organization, email, name, partnerCode, subjectID, message string, always bool) (bool, *models.JoinRequest, error) {
	user := &models.User{
		Email:       email,
		Name:        name,
		TenantKey:   org.TenantKey,
		Role:        models.RoleViewer,
		Status:      models.UserStatusPendingApproval,
		SubjectID:   subjectID,
		PartnerCode: partnerCode,
		CreatedAt:   s.now().UTC(),
	}

	created := true
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, store.ErrUserAlreadyExists) {
			return false, nil, errdefs.FromStore(err, errdefs.ErrUserNotFound, email)
		}
		created = false
	}
	if !created && !always {
		return false, nil, nil
	}

	member := false
	if !created {
		existing, err := s.users.Get(ctx, email)
		if err != nil {
			return false, nil, errdefs.FromStore(err, errdefs.ErrUserNotFound, email)
		}
		member = isMember(org, existing)
	}

	req, err := s.ensureJoinRequest(ctx, email, name, org.TenantKey, message, !member)
	if err != nil {
		return false, nil, err
	}

	return created, req, nil
}

// ensureJoinRequest creates the pending request for (email, tenantKey) or
// returns the existing pending one unchanged. A decided request is replaced
// by a fresh pending one when reopen is set, otherwise it is returned as is.
func (s *Service) ensureJoinRequest(ctx context.Context, email, name, tenantKey, message string, reopen bool) (*models.JoinRequest, error) {
	joinID := models.JoinRequestID(email, tenantKey)

	req := &models.JoinRequest{
		JoinID:    joinID,
		Email:     email,
		Name:      name,
		TenantKey: tenantKey,
		Message:   message,
		Status:    models.JoinRequestPending,
		CreatedAt: s.now().UTC(),
	}

	existing, err := s.joins.Get(ctx, joinID)
	switch {
	case err == nil:
		if existing.Status == models.JoinRequestPending || !reopen {
			return existing, nil
		}
		if err := s.joins.Put(ctx, req); err != nil {
			return nil, errdefs.FromStore(err, errdefs.ErrJoinRequestNotFound, joinID)
		}
		zerolog.Ctx(ctx).Info().Str("join_id", joinID).Str("previous", string(existing.Status)).Msg("join request reopened")
		telemetry.Add(ctx, telemetry.GetMetrics().JoinRequestsTotal)
		return req, nil
	case !errors.Is(err, store.ErrJoinRequestNotFound):
		return nil, errdefs.FromStore(err, errdefs.ErrJoinRequestNotFound, joinID)
	}

	if err := s.joins.Create(ctx, req); err != nil {
		if errors.Is(err, store.ErrJoinRequestAlreadyExists) {
			existing, err := s.joins.Get(ctx, joinID)
			if err != nil {
				return nil, errdefs.FromStore(err, errdefs.ErrJoinRequestNotFound, joinID)
			}
			return existing, nil
		}
		return nil, errdefs.FromStore(err, errdefs.ErrJoinRequestNotFound, joinID)
	}

	telemetry.Add(ctx, telemetry.GetMetrics().JoinRequestsTotal)
	return req, nil
}

// JoinRequest asks to join the organization owning orgDomain. The caller's
// membership record is only created when none exists yet.
func (s *Service) JoinRequest(ctx context.Context, in JoinInput, caller auth.Identity) (*models.JoinRequest, error) {
	if caller.Email == "" {
		return nil, errdefs.InvalidArgument("caller email is required")
	}

	tenantKey, err := s.resolver.TenantFromDomain(in.OrgDomain)
	if err != nil {
		return nil, err
	}

	org, err := s.orgs.Get(ctx, tenantKey)
	if err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, tenantKey)
	}

	_, req, err := s.createPending(ctx, org, normalizeEmail(caller.Email), caller.Name, "", caller.SubjectID, in.Message, true)
	if err != nil {
		return nil, err
	}

	return req, nil
}

// ApproveJoinRequest activates the membership behind joinID with role and
// marks the request approved. Every write is an unconditional set, so a
// retry after a partial failure converges.
func (s *Service) ApproveJoinRequest(ctx context.Context, joinID string, approver auth.Identity, role models.Role) (*ApproveResult, error) {
	if role == "" {
		role = models.RoleViewer
	}
	if !role.Valid() {
		return nil, errdefs.InvalidArgument("role must be admin, viewer or runner")
	}

	req, org, err := s.loadForDecision(ctx, joinID, approver)
	if err != nil {
		return nil, err
	}
	if req.Status == models.JoinRequestRejected {
		return nil, errdefs.InvalidArgument("join request " + joinID + " was rejected")
	}

	user, err := s.users.Get(ctx, req.Email)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		user = &models.User{
			Email:     req.Email,
			Name:      req.Name,
			TenantKey: req.TenantKey,
			Role:      role,
			Status:    models.UserStatusActive,
			CreatedAt: s.now().UTC(),
		}
		if err := s.users.Create(ctx, user); err != nil && !errors.Is(err, store.ErrUserAlreadyExists) {
			return nil, errdefs.FromStore(err, errdefs.ErrUserNotFound, req.Email)
		}
	case err != nil:
		return nil, errdefs.FromStore(err, errdefs.ErrUserNotFound, req.Email)
	case user.TenantKey == req.TenantKey:
		if err := s.users.Activate(ctx, req.Email, role); err != nil {
			return nil, errdefs.FromStore(err, errdefs.ErrUserNotFound, req.Email)
		}
	}

	if err := s.assign(ctx, org.TenantKey, user.IdentityID(), role); err != nil {
		return nil, err
	}

	if err := s.joins.SetStatus(ctx, joinID, models.JoinRequestApproved, approver.ID()); err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrJoinRequestNotFound, joinID)
	}

	zerolog.Ctx(ctx).Info().Str("join_id", joinID).Str("role", string(role)).Str("approver", approver.ID()).Msg("join request approved")
	telemetry.Add(ctx, telemetry.GetMetrics().JoinDecisionsTotal, attribute.String("decision", "approved"))

	return &ApproveResult{Approved: true, AssignedRole: role}, nil
}

// RejectJoinRequest marks joinID rejected and removes the still-pending
// membership it created. The request cannot be approved afterwards, but a
// new join request or registration reopens it.
func (s *Service) RejectJoinRequest(ctx context.Context, joinID string, approver auth.Identity) error {
	req, _, err := s.loadForDecision(ctx, joinID, approver)
	if err != nil {
		return err
	}
	if req.Status == models.JoinRequestApproved {
		return errdefs.InvalidArgument("join request " + joinID + " was already approved")
	}

	if err := s.joins.SetStatus(ctx, joinID, models.JoinRequestRejected, approver.ID()); err != nil {
		return errdefs.FromStore(err, errdefs.ErrJoinRequestNotFound, joinID)
	}

	user, err := s.users.Get(ctx, req.Email)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
	case err != nil:
		return errdefs.FromStore(err, errdefs.ErrUserNotFound, req.Email)
	case user.TenantKey == req.TenantKey && !user.IsActive():
		if err := s.users.Delete(ctx, req.Email); err != nil && !errors.Is(err, store.ErrUserNotFound) {
			return errdefs.FromStore(err, errdefs.ErrUserNotFound, req.Email)
		}
	}

	zerolog.Ctx(ctx).Info().Str("join_id", joinID).Str("approver", approver.ID()).Msg("join request rejected")
	telemetry.Add(ctx, telemetry.GetMetrics().JoinDecisionsTotal, attribute.String("decision", "rejected"))

	return nil
}

func (s *Service) loadForDecision(ctx context.Context, joinID string, approver auth.Identity) (*models.JoinRequest, *models.Organization, error) {
	req, err := s.joins.Get(ctx, joinID)
	if err != nil {
		return nil, nil, errdefs.FromStore(err, errdefs.ErrJoinRequestNotFound, joinID)
	}

	org, err := s.administer(ctx, req.TenantKey, approver)
	if err != nil {
		return nil, nil, err
	}

	return req, org, nil
}

// InviteUser pre-creates a pending viewer membership. No join request is
// recorded for invites.
func (s *Service) InviteUser(ctx context.Context, in InviteInput, inviter auth.Identity) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := tenant.EmailDomain(email); err != nil {
		return nil, err
	}

	if _, err := s.administer(ctx, in.TenantKey, inviter); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		Name:      in.Name,
		TenantKey: in.TenantKey,
		Role:      models.RoleViewer,
		Status:    models.UserStatusPendingApproval,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrUserNotFound, email)
	}

	zerolog.Ctx(ctx).Info().Str("tenant", in.TenantKey).Str("email", email).Str("inviter", inviter.ID()).Msg("user invited")
	return user, nil
}

// UpdateUserRole reassigns the role of a member of tenantKey.
func (s *Service) UpdateUserRole(ctx context.Context, email, tenantKey string, role models.Role, admin auth.Identity) (*models.User, error) {
	if !role.Valid() {
		return nil, errdefs.InvalidArgument("role must be admin, viewer or runner")
	}

	org, err := s.administer(ctx, tenantKey, admin)
	if err != nil {
		return nil, err
	}

	user, err := s.memberOf(ctx, normalizeEmail(email), org)
	if err != nil {
		return nil, err
	}

	id := user.IdentityID()
	if role != models.RoleAdmin && isLastAdmin(org, user) {
		return nil, errdefs.Forbidden(tenantKey, string(authz.AdministerOrg), "cannot demote the last admin")
	}

	if user.TenantKey == tenantKey {
		if err := s.users.SetRole(ctx, user.Email, role); err != nil {
			return nil, errdefs.FromStore(err, errdefs.ErrUserNotFound, user.Email)
		}
		user.Role = role
	}

	if user.IsActive() || org.IsMember(id) || org.IsMember(user.Email) {
		if err := s.assign(ctx, tenantKey, id, role); err != nil {
			return nil, err
		}
		if id != user.Email && org.IsMember(user.Email) {
			if err := s.orgs.RemoveMember(ctx, tenantKey, user.Email); err != nil {
				return nil, errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, tenantKey)
			}
		}
	}

	return user, nil
}

// RemoveUser removes a member from tenantKey. The last admin cannot be removed.
func (s *Service) RemoveUser(ctx context.Context, email, tenantKey string, admin auth.Identity) error {
	org, err := s.administer(ctx, tenantKey, admin)
	if err != nil {
		return err
	}

	user, err := s.memberOf(ctx, normalizeEmail(email), org)
	if err != nil {
		return err
	}

	if isLastAdmin(org, user) {
		return errdefs.Forbidden(tenantKey, string(authz.AdministerOrg), "cannot remove the last admin")
	}

	for _, id := range []string{user.IdentityID(), user.Email} {
		if err := s.orgs.RemoveMember(ctx, tenantKey, id); err != nil {
			return errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, tenantKey)
		}
	}

	if user.TenantKey == tenantKey {
		if err := s.users.Delete(ctx, user.Email); err != nil && !errors.Is(err, store.ErrUserNotFound) {
			return errdefs.FromStore(err, errdefs.ErrUserNotFound, user.Email)
		}
	}

	zerolog.Ctx(ctx).Info().Str("tenant", tenantKey).Str("email", user.Email).Str("admin", admin.ID()).Msg("user removed")
	return nil
}

// ListPendingJoinRequests returns the pending requests of tenantKey.
func (s *Service) ListPendingJoinRequests(ctx context.Context, tenantKey string, admin auth.Identity) ([]*models.JoinRequest, error) {
	if _, err := s.administer(ctx, tenantKey, admin); err != nil {
		return nil, err
	}

	reqs, err := s.joins.ListByTenant(ctx, tenantKey, models.JoinRequestPending)
	if err != nil {
		return nil, errdefs.StorageUnavailable("list join requests "+tenantKey, err)
	}
	if reqs == nil {
		reqs = []*models.JoinRequest{}
	}

	return reqs, nil
}

// GetUser returns the membership record for email.
func (s *Service) GetUser(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	user, err := s.users.Get(ctx, email)
	if err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrUserNotFound, email)
	}
	return user, nil
}

// ListAdminOrganizations returns the organizations the caller administers.
func (s *Service) ListAdminOrganizations(ctx context.Context, caller auth.Identity) ([]*models.Organization, error) {
	var result []*models.Organization
	seen := map[string]bool{}

	for _, id := range identityKeys(caller) {
		orgs, err := s.orgs.ListByAdmin(ctx, id)
		if err != nil {
			return nil, errdefs.StorageUnavailable("list admin organizations", err)
		}
		for _, org := range orgs {
			if !seen[org.TenantKey] {
				seen[org.TenantKey] = true
				result = append(result, org)
			}
		}
	}
	if result == nil {
		result = []*models.Organization{}
	}

	return result, nil
}

// administer loads tenantKey and requires the caller to administer it.
func (s *Service) administer(ctx context.Context, tenantKey string, caller auth.Identity) (*models.Organization, error) {
	if tenantKey == "" {
		return nil, errdefs.InvalidArgument("organization is required")
	}

	org, err := s.orgs.Get(ctx, tenantKey)
	if err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, tenantKey)
	}

	if err := s.authz.Authorize(caller, org, authz.AdministerOrg); err != nil {
		telemetry.Add(ctx, telemetry.GetMetrics().AuthzDenialsTotal, attribute.String("capability", string(authz.AdministerOrg)))
		return nil, err
	}

	return org, nil
}

// memberOf loads email and checks it belongs to org, either by provisioning
// or by appearing in its admin/viewer sets.
func (s *Service) memberOf(ctx context.Context, email string, org *models.Organization) (*models.User, error) {
	user, err := s.users.Get(ctx, email)
	if err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrUserNotFound, email)
	}
	if user.TenantKey != org.TenantKey && !org.IsMember(user.IdentityID()) && !org.IsMember(user.Email) {
		return nil, errdefs.NotFound(errdefs.ErrUserNotFound, email)
	}
	return user, nil
}

func (s *Service) assign(ctx context.Context, tenantKey, identity string, role models.Role) error {
	var err error
	if role == models.RoleAdmin {
		err = s.orgs.AddAdmin(ctx, tenantKey, identity)
	} else {
		err = s.orgs.AddViewer(ctx, tenantKey, identity)
	}
	if err != nil {
		return errdefs.FromStore(err, errdefs.ErrOrganizationNotFound, tenantKey)
	}
	return nil
}

func (s *Service) recordRegistration(ctx context.Context, outcome string) {
	telemetry.Add(ctx, telemetry.GetMetrics().RegistrationsTotal, attribute.String("outcome", outcome))
}

// isMember reports whether user is an active member of org, either by
// provisioning or through its admin/viewer sets.
func isMember(org *models.Organization, user *models.User) bool {
	if user.TenantKey == org.TenantKey && user.IsActive() {
		return true
	}
	return org.IsMember(user.IdentityID()) || org.IsMember(user.Email)
}

func isLastAdmin(org *models.Organization, user *models.User) bool {
	if len(org.Admins) != 1 {
		return false
	}
	return org.Admins[0] == user.IdentityID() || strings.EqualFold(org.Admins[0], user.Email)
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

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
