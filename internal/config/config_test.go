package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/tenant"
)

func defaults() *Config {
	return &Config{
		StoreType:         StoreMemory,
		PlatformAdminRole: "platform_admin",
		Tables: TableFlags{
			Users:         "users",
			Organizations: "clients_data",
			Subscriptions: "clients_subs",
			JoinRequests:  "pending_joins",
			Tiers:         "subscription_tiers_config",
			Roles:         "roles_config",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "memory", mutate: func(c *Config) {}},
		{name: "dynamodb", mutate: func(c *Config) { c.StoreType = StoreDynamoDB }},
		{
			name:    "postgres without connection string",
			mutate:  func(c *Config) { c.StoreType = StorePostgres },
			wantErr: "connection string is required",
		},
		{
			name: "postgres",
			mutate: func(c *Config) {
				c.StoreType = StorePostgres
				c.Postgres.ConnString = "postgres://localhost/tenancy"
			},
		},
		{name: "unknown store", mutate: func(c *Config) { c.StoreType = "redis" }, wantErr: "unknown store type"},
		{name: "blank admin role", mutate: func(c *Config) { c.PlatformAdminRole = " " }, wantErr: "platform admin role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDynamoTables(t *testing.T) {
	cfg := defaults()
	assert.Equal(t, "clients_data", cfg.DynamoTables().Organizations)

	cfg.Tables.Prefix = "dev"
	tables := cfg.DynamoTables()
	assert.Equal(t, "dev_users", tables.Users)
	assert.Equal(t, "dev_roles_config", tables.Roles)
}

func TestDomainDenyList(t *testing.T) {
	cfg := defaults()
	assert.Equal(t, tenant.DefaultGenericDomains, cfg.DomainDenyList())

	cfg.GenericDomains = []string{"example.org"}
	assert.Equal(t, []string{"example.org"}, cfg.DomainDenyList())
}

func TestLoadCatalogue(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		cat, err := LoadCatalogue("")
		require.NoError(t, err)
		assert.Len(t, cat.Tiers, 5)
		assert.Empty(t, cat.Roles)
	})

	t.Run("file", func(t *testing.T) {
		cat, err := LoadCatalogue(filepath.Join("testdata", "catalogue.yaml"))
		require.NoError(t, err)
		require.Len(t, cat.Tiers, 3)
		assert.Equal(t, models.TierL2, cat.Tiers[1].Code)
		assert.Equal(t, []string{"ISM", "E8"}, cat.Tiers[1].AllowedTabs)
		assert.Equal(t, []string{}, cat.Tiers[0].AllowedTabs)
		assert.Equal(t, models.Unlimited, cat.Tiers[2].RunQuota)
		require.Len(t, cat.Roles, 1)
		assert.Equal(t, []string{"orgs:read"}, cat.Roles[0].Permissions)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCatalogue(filepath.Join("testdata", "nope.yaml"))
		require.ErrorContains(t, err, "failed to read catalogue file")
	})
}

func TestParseCatalogue(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: ""},
		{name: "malformed", input: "tiers: [", wantErr: "failed to parse YAML catalogue"},
		{name: "tier without code", input: "tiers:\n  - name: Free\n", wantErr: "tiers[0]"},
		{name: "limit below unlimited", input: "tiers:\n  - code: L1\n    max_apps: -2\n", wantErr: "max_apps"},
		{name: "duplicate tier", input: "tiers:\n  - code: L1\n  - code: L1\n", wantErr: "duplicate tier L1"},
		{name: "role without name", input: "roles:\n  - role_id: auditor\n", wantErr: "roles[0]"},
		{name: "duplicate role", input: "roles:\n  - {role_id: a, name: A}\n  - {role_id: a, name: B}\n", wantErr: "duplicate role a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := ParseCatalogue([]byte(tt.input))
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cat.Tiers)
			assert.NotNil(t, cat.Roles)
		})
	}
}
