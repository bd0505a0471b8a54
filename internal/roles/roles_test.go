package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tenancy/internal/errdefs"
	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store/memory"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewRoleStore())

	roles, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, roles)

	auditor := &models.RoleDefinition{RoleID: "auditor", Name: "Auditor", Permissions: []string{"orgs:read"}}
	require.NoError(t, svc.Put(ctx, auditor))

	got, err := svc.Get(ctx, "auditor")
	require.NoError(t, err)
	assert.Equal(t, auditor, got)

	auditor.Permissions = append(auditor.Permissions, "subs:read")
	require.NoError(t, svc.Put(ctx, auditor))

	got, err = svc.Get(ctx, "auditor")
	require.NoError(t, err)
	assert.Equal(t, []string{"orgs:read", "subs:read"}, got.Permissions)

	require.NoError(t, svc.Delete(ctx, "auditor"))

	_, err = svc.Get(ctx, "auditor")
	require.ErrorIs(t, err, errdefs.ErrRoleNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "auditor"), errdefs.ErrRoleNotFound)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		role    *models.RoleDefinition
		wantErr bool
	}{
		{name: "valid", role: &models.RoleDefinition{RoleID: "ops", Name: "Ops"}},
		{name: "nil", role: nil, wantErr: true},
		{name: "missing id", role: &models.RoleDefinition{Name: "Ops"}, wantErr: true},
		{name: "missing name", role: &models.RoleDefinition{RoleID: "ops"}, wantErr: true},
		{name: "blank permission", role: &models.RoleDefinition{RoleID: "ops", Name: "Ops", Permissions: []string{" "}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.role)
			if tt.wantErr {
				require.ErrorIs(t, err, errdefs.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewRoleStore())

	require.NoError(t, svc.Put(ctx, &models.RoleDefinition{RoleID: "ops", Name: "Operations"}))

	added, err := svc.Seed(ctx, []*models.RoleDefinition{
		{RoleID: "ops", Name: "Ops"},
		{RoleID: "auditor", Name: "Auditor"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	ops, err := svc.Get(ctx, "ops")
	require.NoError(t, err)
	assert.Equal(t, "Operations", ops.Name)
}
