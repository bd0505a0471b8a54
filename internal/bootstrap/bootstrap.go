// Package bootstrap creates the DynamoDB tables used by the tenancy store,
// for DynamoDB Local during development and for integration tests.
package bootstrap

import (
	"context"
	"fmt"

	storeaws "github.com/wolfeidau/tenancy/internal/store/aws"
)

// Bootstrap creates all required DynamoDB tables
// If CleanResources is true, deletes existing tables first to ensure clean state
// If CleanResources is false, creates tables only if they don't exist (preserves data)
func Bootstrap(ctx context.Context, cfg Config) (*Resources, error) {
	if cfg.DynamoClient == nil {
		return nil, fmt.Errorf("DynamoClient is required")
	}

	tables := storeaws.DefaultTables(cfg.Environment)
	if cfg.Tables != nil {
		tables = *cfg.Tables
	}

	if err := CreateTables(ctx, cfg.DynamoClient, tables, cfg.CleanResources); err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB tables: %w", err)
	}

	return &Resources{Tables: tables}, nil
}

// Cleanup deletes all resources created by Bootstrap
func Cleanup(ctx context.Context, cfg Config, res *Resources) error {
	if err := DeleteTables(ctx, cfg.DynamoClient, res.Tables); err != nil {
		return fmt.Errorf("failed to delete tables: %w", err)
	}
	return nil
}
