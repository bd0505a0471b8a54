// Package roles manages the platform role catalogue.
package roles

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/tenancy/internal/errdefs"
	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

type Service struct {
	roles store.RoleStore
}

func NewService(roles store.RoleStore) *Service {
	return &Service{roles: roles}
}

// Put creates or replaces a role definition.
func (s *Service) Put(ctx context.Context, role *models.RoleDefinition) error {
	if err := Validate(role); err != nil {
		return err
	}

	if err := s.roles.Put(ctx, role); err != nil {
		return errdefs.FromStore(err, errdefs.ErrRoleNotFound, role.RoleID)
	}

	zerolog.Ctx(ctx).Info().Str("role_id", role.RoleID).Int("permissions", len(role.Permissions)).Msg("role saved")
	return nil
}

func (s *Service) Get(ctx context.Context, roleID string) (*models.RoleDefinition, error) {
	role, err := s.roles.Get(ctx, roleID)
	if err != nil {
		return nil, errdefs.FromStore(err, errdefs.ErrRoleNotFound, roleID)
	}
	return role, nil
}

func (s *Service) List(ctx context.Context) ([]*models.RoleDefinition, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, errdefs.StorageUnavailable("list roles", err)
	}
	if roles == nil {
		roles = []*models.RoleDefinition{}
	}
	return roles, nil
}

func (s *Service) Delete(ctx context.Context, roleID string) error {
	if err := s.roles.Delete(ctx, roleID); err != nil {
		return errdefs.FromStore(err, errdefs.ErrRoleNotFound, roleID)
	}
	return nil
}

// Seed stores the given definitions, skipping ids already present, and
// returns how many were added.
func (s *Service) Seed(ctx context.Context, roles []*models.RoleDefinition) (int, error) {
	added := 0
	for _, role := range roles {
		_, err := s.roles.Get(ctx, role.RoleID)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrRoleNotFound) {
			return added, errdefs.FromStore(err, errdefs.ErrRoleNotFound, role.RoleID)
		}
		if err := s.Put(ctx, role); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// Validate checks the required fields of a role definition.
func Validate(role *models.RoleDefinition) error {
	switch {
	case role == nil:
		return errdefs.InvalidArgument("role is required")
	case strings.TrimSpace(role.RoleID) == "":
		return errdefs.InvalidArgument("role_id is required")
	case strings.TrimSpace(role.Name) == "":
		return errdefs.InvalidArgument("name is required")
	}
	for _, p := range role.Permissions {
		if strings.TrimSpace(p) == "" {
			return errdefs.InvalidArgument("permissions must not contain empty values")
		}
	}
	return nil
}
