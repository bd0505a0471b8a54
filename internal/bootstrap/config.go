package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	storeaws "github.com/wolfeidau/tenancy/internal/store/aws"
)

// Config holds configuration for bootstrapping the DynamoDB tables
type Config struct {
	DynamoClient *dynamodb.Client

	// Environment prefixes every table name, e.g. "dev" gives "dev_users".
	// Ignored when Tables is set.
	Environment string

	// Tables overrides the derived table names.
	Tables *storeaws.Tables

	// CleanResources controls whether to delete existing tables before creating
	// Set to false to preserve data across restarts
	CleanResources bool
}

// Resources holds identifiers for created infrastructure resources
type Resources struct {
	Tables storeaws.Tables
}
