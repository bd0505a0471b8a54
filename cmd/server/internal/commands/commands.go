package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/tenancy/internal/config"
	"github.com/wolfeidau/tenancy/internal/store"
	storeaws "github.com/wolfeidau/tenancy/internal/store/aws"
	memorystore "github.com/wolfeidau/tenancy/internal/store/memory"
	"github.com/wolfeidau/tenancy/internal/store/postgres"
)

// storeConnectTimeout bounds how long startup waits for the backing store.
const storeConnectTimeout = time.Minute

type Globals struct {
	Debug   bool
	Version string
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

// openStores connects the configured backend, retrying until it answers.
// The returned close func releases any connections.
func openStores(ctx context.Context, log zerolog.Logger, cfg *config.Config) (*store.Stores, func(), error) {
	switch cfg.StoreType {
	case config.StoreDynamoDB:
		client, err := newDynamoClient(ctx, cfg.AWS)
		if err != nil {
			return nil, nil, err
		}

		tables := cfg.DynamoTables()
		_, err = retry(ctx, log, "dynamodb", func() (*dynamodb.DescribeTableOutput, error) {
			return client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tables.Users)})
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to reach DynamoDB table %s: %w", tables.Users, err)
		}

		log.Info().Str("users_table", tables.Users).Msg("Using DynamoDB stores")
		return storeaws.NewStores(client, tables), func() {}, nil

	case config.StorePostgres:
		pgCfg := cfg.PostgresConfig()
		pool, err := retry(ctx, log, "postgres", func() (*pgxpool.Pool, error) {
			return postgres.NewPool(ctx, pgCfg)
		})
		if err != nil {
			return nil, nil, err
		}

		log.Info().Msg("Using PostgreSQL stores with shared connection pool")
		return postgres.NewStores(pool, pgCfg.QueryTimeout), pool.Close, nil

	default:
		log.Info().Msg("Using in-memory stores")
		return memorystore.NewStores(), func() {}, nil
	}
}

func retry[T any](ctx context.Context, log zerolog.Logger, backend string, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(storeConnectTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Str("backend", backend).Dur("retry_in", next).Msg("Store not ready")
		}),
	)
}

func newDynamoClient(ctx context.Context, flags config.AWSFlags) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(flags.Region),
	}
	if flags.Local {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "test")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if flags.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(flags.Endpoint)
		})
	}

	return dynamodb.NewFromConfig(awsCfg, clientOpts...), nil
}
