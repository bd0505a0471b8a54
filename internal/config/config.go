package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/wolfeidau/tenancy/internal/authz"
	storeaws "github.com/wolfeidau/tenancy/internal/store/aws"
	"github.com/wolfeidau/tenancy/internal/store/postgres"
	"github.com/wolfeidau/tenancy/internal/tenant"
)

const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
)

// Config is built once by the command and handed to the constructors that need it.
type Config struct {
	StoreType         string   `help:"store type (memory, dynamodb or postgres)" default:"memory" env:"TENANCY_STORE_TYPE" enum:"memory,dynamodb,postgres"`
	GenericDomains    []string `help:"email domains that cannot own an organization" env:"TENANCY_GENERIC_DOMAINS"`
	PlatformAdminRole string   `help:"role granting platform-wide administration" default:"platform_admin" env:"TENANCY_PLATFORM_ADMIN_ROLE"`
	CatalogueFile     string   `help:"YAML file with the tier and role catalogue" type:"existingfile" env:"TENANCY_CATALOGUE_FILE"`

	AWS      AWSFlags      `embed:"" prefix:"aws-"`
	Tables   TableFlags    `embed:"" prefix:"table-"`
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
	Auth     AuthFlags     `embed:"" prefix:"auth-"`
}

type AWSFlags struct {
	Region   string `help:"AWS region" default:"us-east-1" env:"AWS_REGION"`
	Endpoint string `help:"override DynamoDB endpoint, e.g. DynamoDB Local" env:"TENANCY_DYNAMODB_ENDPOINT"`
	Local    bool   `help:"use static test credentials, for DynamoDB Local" env:"TENANCY_DYNAMODB_LOCAL"`
}

// TableFlags names the DynamoDB tables. A prefix is joined to every name with an underscore.
type TableFlags struct {
	Prefix        string `help:"prefix applied to every table name" env:"TENANCY_TABLE_PREFIX"`
	Users         string `help:"users table" default:"users"`
	Organizations string `help:"organizations table" default:"clients_data"`
	Subscriptions string `help:"subscriptions table" default:"clients_subs"`
	JoinRequests  string `help:"join requests table" default:"pending_joins"`
	Tiers         string `help:"tier catalogue table" default:"subscription_tiers_config"`
	Roles         string `help:"role catalogue table" default:"roles_config"`
}

type PostgresFlags struct {
	ConnString      string        `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`
	MaxConns        int32         `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32         `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"1h"`
	MaxConnIdleTime time.Duration `help:"maximum connection idle time" default:"30m"`
	QueryTimeout    time.Duration `help:"per query timeout" default:"5s"`
	AutoMigrate     bool          `help:"run database migrations on startup" default:"false" env:"TENANCY_POSTGRES_AUTO_MIGRATE"`
}

type AuthFlags struct {
	Issuer       string        `help:"token issuer URL, keys are read from <issuer>/.well-known/jwks.json" env:"TENANCY_AUTH_ISSUER"`
	ClientID     string        `help:"expected audience or client_id" env:"TENANCY_AUTH_CLIENT_ID"`
	JWKSCacheTTL time.Duration `help:"how long fetched signing keys are trusted" default:"10m"`
}

// Validate checks the settings required by the selected store type.
func (c *Config) Validate() error {
	switch c.StoreType {
	case StoreMemory, StoreDynamoDB:
	case StorePostgres:
		if c.Postgres.ConnString == "" {
			return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
		}
	default:
		return fmt.Errorf("unknown store type %q", c.StoreType)
	}
	if strings.TrimSpace(c.PlatformAdminRole) == "" {
		return errors.New("platform admin role must not be empty")
	}
	return nil
}

// DomainDenyList returns the configured generic domains, or the built-in list when none are set.
func (c *Config) DomainDenyList() []string {
	if len(c.GenericDomains) == 0 {
		return slices.Clone(tenant.DefaultGenericDomains)
	}
	return c.GenericDomains
}

// AdminRole returns the platform admin role, falling back to the default.
func (c *Config) AdminRole() string {
	if c.PlatformAdminRole == "" {
		return authz.DefaultPlatformAdminRole
	}
	return c.PlatformAdminRole
}

// DynamoTables resolves the table names with the prefix applied.
func (c *Config) DynamoTables() storeaws.Tables {
	name := func(n string) string {
		if c.Tables.Prefix == "" {
			return n
		}
		return c.Tables.Prefix + "_" + n
	}
	return storeaws.Tables{
		Users:         name(c.Tables.Users),
		Organizations: name(c.Tables.Organizations),
		Subscriptions: name(c.Tables.Subscriptions),
		JoinRequests:  name(c.Tables.JoinRequests),
		Tiers:         name(c.Tables.Tiers),
		Roles:         name(c.Tables.Roles),
	}
}

// PostgresConfig converts the flags into pool settings.
func (c *Config) PostgresConfig() *postgres.Config {
	return &postgres.Config{
		ConnString:      c.Postgres.ConnString,
		MaxConns:        c.Postgres.MaxConns,
		MinConns:        c.Postgres.MinConns,
		MaxConnLifetime: c.Postgres.MaxConnLifetime,
		MaxConnIdleTime: c.Postgres.MaxConnIdleTime,
		QueryTimeout:    c.Postgres.QueryTimeout,
		AutoMigrate:     c.Postgres.AutoMigrate,
	}
}
