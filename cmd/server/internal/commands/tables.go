package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfeidau/tenancy/internal/bootstrap"
	"github.com/wolfeidau/tenancy/internal/config"
	"github.com/wolfeidau/tenancy/internal/logger"
	"github.com/wolfeidau/tenancy/internal/store/postgres"
)

// CreateTablesCmd creates the DynamoDB tables, typically against DynamoDB Local.
type CreateTablesCmd struct {
	AWS    config.AWSFlags   `embed:"" prefix:"aws-"`
	Tables config.TableFlags `embed:"" prefix:"table-"`
	Clean  bool              `help:"delete existing tables first" default:"false"`
}

func (c *CreateTablesCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	client, err := newDynamoClient(ctx, c.AWS)
	if err != nil {
		return err
	}

	cfg := config.Config{Tables: c.Tables}
	tables := cfg.DynamoTables()

	res, err := bootstrap.Bootstrap(ctx, bootstrap.Config{
		DynamoClient:   client,
		Tables:         &tables,
		CleanResources: c.Clean,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("users", res.Tables.Users).
		Str("organizations", res.Tables.Organizations).
		Str("subscriptions", res.Tables.Subscriptions).
		Str("join_requests", res.Tables.JoinRequests).
		Str("tiers", res.Tables.Tiers).
		Str("roles", res.Tables.Roles).
		Msg("DynamoDB tables ready")

	return nil
}

// MigrateCmd applies pending PostgreSQL migrations.
type MigrateCmd struct {
	Postgres config.PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	if c.Postgres.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}

	cfg := config.Config{Postgres: c.Postgres}
	pgCfg := cfg.PostgresConfig()
	pgCfg.AutoMigrate = false

	pool, err := postgres.NewPool(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}
