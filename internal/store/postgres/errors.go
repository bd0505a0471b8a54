package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfeidau/tenancy/internal/store"
	"github.com/wolfeidau/tenancy/internal/telemetry"
)

// isUniqueViolation reports whether err is a primary key or unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// mapPostgresError wraps err with msg, classifying resource exhaustion as
// store.ErrThrottled. Errors other than PostgreSQL errors are wrapped as is.
func mapPostgresError(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	telemetry.Add(ctx, telemetry.GetMetrics().StoreOperationErrors, attribute.String("backend", "postgres"))

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", msg, err)
	}

	switch pgErr.Code {
	case pgerrcode.CheckViolation:
		return fmt.Errorf("%s: check constraint violation: %s: %w", msg, pgErr.ConstraintName, err)

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return fmt.Errorf("%s: transaction conflict (retryable): %w", msg, err)

	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection:
		return fmt.Errorf("%s: database connection error: %w", msg, err)

	case pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown:
		return fmt.Errorf("%s: database server unavailable: %w", msg, err)

	case pgerrcode.QueryCanceled:
		return fmt.Errorf("%s: query canceled: %w", msg, err)

	case pgerrcode.InsufficientResources,
		pgerrcode.DiskFull,
		pgerrcode.OutOfMemory,
		pgerrcode.TooManyConnections:
		telemetry.Add(ctx, telemetry.GetMetrics().StoreThrottlesTotal, attribute.String("backend", "postgres"))
		return fmt.Errorf("%s: %w: %v", msg, store.ErrThrottled, err)

	default:
		return fmt.Errorf("%s: postgres error [%s]: %s (detail: %s, hint: %s): %w",
			msg, pgErr.Code, pgErr.Message, pgErr.Detail, pgErr.Hint, err)
	}
}
