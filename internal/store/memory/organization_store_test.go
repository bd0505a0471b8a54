package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

func newOrg(key string, admins ...string) *models.Organization {
	return &models.Organization{
		TenantKey: key,
		Name:      key,
		CreatedAt: time.Now(),
		Admins:    admins,
		Viewers:   []string{},
	}
}

func TestMemoryOrganizationStore_Create(t *testing.T) {
	t.Run("create new organization", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		err := st.Create(ctx, newOrg("acme_com", "alice"))
		require.NoError(t, err)

		org, err := st.Get(ctx, "acme_com")
		require.NoError(t, err)
		require.Equal(t, []string{"alice"}, org.Admins)
	})

	t.Run("create duplicate organization returns error", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		require.NoError(t, st.Create(ctx, newOrg("acme_com", "alice")))

		err := st.Create(ctx, newOrg("acme_com", "bob"))
		require.ErrorIs(t, err, store.ErrOrganizationAlreadyExists)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("stored copy is isolated from caller", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		org := newOrg("acme_com", "alice")
		require.NoError(t, st.Create(ctx, org))
		org.Admins[0] = "mallory"

		got, err := st.Get(ctx, "acme_com")
		require.NoError(t, err)
		require.Equal(t, "alice", got.Admins[0])
	})
}

func TestMemoryOrganizationStore_Members(t *testing.T) {
	st := NewOrganizationStore()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newOrg("acme_com", "alice")))
	require.NoError(t, st.Create(ctx, newOrg("globex_com", "bob")))

	require.NoError(t, st.AddViewer(ctx, "acme_com", "bob"))
	require.NoError(t, st.AddAdmin(ctx, "acme_com", "bob"))
	require.NoError(t, st.AddAdmin(ctx, "acme_com", "bob"))

	org, err := st.Get(ctx, "acme_com")
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, org.Admins)
	require.Empty(t, org.Viewers)

	orgs, err := st.ListByMember(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	require.Equal(t, "acme_com", orgs[0].TenantKey)

	orgs, err = st.ListByAdmin(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, orgs, 1)

	require.NoError(t, st.RemoveMember(ctx, "acme_com", "bob"))
	orgs, err = st.ListByMember(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, orgs, 1)

	err = st.AddAdmin(ctx, "missing_com", "bob")
	require.ErrorIs(t, err, store.ErrOrganizationNotFound)
}

func TestMemoryOrganizationStore_UpdateAndDelete(t *testing.T) {
	st := NewOrganizationStore()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newOrg("acme_com", "alice")))

	err := st.UpdateProfile(ctx, "acme_com", "Acme Inc", models.Profile{Sector: "mining"})
	require.NoError(t, err)

	org, err := st.Get(ctx, "acme_com")
	require.NoError(t, err)
	require.Equal(t, "Acme Inc", org.Name)
	require.Equal(t, "mining", org.Profile.Sector)

	require.NoError(t, st.Delete(ctx, "acme_com"))
	_, err = st.Get(ctx, "acme_com")
	require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	require.ErrorIs(t, st.Delete(ctx, "acme_com"), store.ErrOrganizationNotFound)
}

func TestMemoryOrganizationStore_ListByLegalEntityMaster(t *testing.T) {
	st := NewOrganizationStore()
	ctx := context.Background()

	le := newOrg("LE_le_example_com_client_org", "master")
	le.LegalEntityMaster = "master"
	le.Type = models.OrganizationTypeLegalEntity
	require.NoError(t, st.Create(ctx, le))
	require.NoError(t, st.Create(ctx, newOrg("acme_com", "alice")))

	orgs, err := st.ListByLegalEntityMaster(ctx, "master")
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	require.True(t, orgs[0].IsLegalEntity())

	orgs, err = st.ListByLegalEntityMaster(ctx, "")
	require.NoError(t, err)
	require.Empty(t, orgs)
}
