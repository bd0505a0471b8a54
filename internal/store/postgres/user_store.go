package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	*db
}

const userColumns = `email, name, client_name, role, status, subject_id, partner_code, created_at`

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.Email,
		user.Name,
		user.TenantKey,
		user.Role,
		user.Status,
		user.SubjectID,
		user.PartnerCode,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserAlreadyExists
		}
		return mapPostgresError(ctx, err, "failed to create user")
	}

	log.Debug().Str("email", user.Email).Str("tenant", user.TenantKey).Msg("Created user")

	return nil
}

func (s *UserStore) Get(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, mapPostgresError(ctx, err, "failed to get user")
	}

	return user, nil
}

func (s *UserStore) Activate(ctx context.Context, email string, role models.Role) error {
	return s.exec(ctx, `UPDATE users SET status = $2, role = $3 WHERE email = $1`, email, models.UserStatusActive, role)
}

func (s *UserStore) SetRole(ctx context.Context, email string, role models.Role) error {
	return s.exec(ctx, `UPDATE users SET role = $2 WHERE email = $1`, email, role)
}

func (s *UserStore) Delete(ctx context.Context, email string) error {
	return s.exec(ctx, `DELETE FROM users WHERE email = $1`, email)
}

func (s *UserStore) ListByTenant(ctx context.Context, tenantKey string) ([]*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE client_name = $1 ORDER BY email`, tenantKey)
	if err != nil {
		return nil, mapPostgresError(ctx, err, "failed to list users")
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, mapPostgresError(ctx, err, "failed to scan users")
	}

	return users, nil
}

func (s *UserStore) exec(ctx context.Context, query string, args ...any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPostgresError(ctx, err, "failed to update user")
	}

	if result.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.Email,
		&user.Name,
		&user.TenantKey,
		&user.Role,
		&user.Status,
		&user.SubjectID,
		&user.PartnerCode,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// JoinRequestStore implements store.JoinRequestStore using PostgreSQL.
type JoinRequestStore struct {
	*db
}

const joinRequestColumns = `join_id, email, name, client_name, message, status, created_at, decided_at, decided_by`

func (s *JoinRequestStore) Create(ctx context.Context, req *models.JoinRequest) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `INSERT INTO join_requests (`+joinRequestColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.JoinID,
		req.Email,
		req.Name,
		req.TenantKey,
		req.Message,
		req.Status,
		req.CreatedAt,
		req.DecidedAt,
		req.DecidedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrJoinRequestAlreadyExists
		}
		return mapPostgresError(ctx, err, "failed to create join request")
	}

	log.Debug().Str("join_id", req.JoinID).Msg("Created join request")

	return nil
}

func (s *JoinRequestStore) Put(ctx context.Context, req *models.JoinRequest) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `INSERT INTO join_requests (`+joinRequestColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (join_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			client_name = EXCLUDED.client_name,
			message = EXCLUDED.message,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			decided_at = EXCLUDED.decided_at,
			decided_by = EXCLUDED.decided_by`,
		req.JoinID,
		req.Email,
		req.Name,
		req.TenantKey,
		req.Message,
		req.Status,
		req.CreatedAt,
		req.DecidedAt,
		req.DecidedBy,
	)
	if err != nil {
		return mapPostgresError(ctx, err, "failed to put join request")
	}

	log.Debug().Str("join_id", req.JoinID).Str("status", string(req.Status)).Msg("Replaced join request")

	return nil
}

func (s *JoinRequestStore) Get(ctx context.Context, joinID string) (*models.JoinRequest, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req, err := scanJoinRequest(s.pool.QueryRow(ctx, `SELECT `+joinRequestColumns+` FROM join_requests WHERE join_id = $1`, joinID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrJoinRequestNotFound
		}
		return nil, mapPostgresError(ctx, err, "failed to get join request")
	}

	return req, nil
}

func (s *JoinRequestStore) SetStatus(ctx context.Context, joinID string, status models.JoinRequestStatus, decidedBy string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, `UPDATE join_requests SET status = $2, decided_at = now(), decided_by = $3 WHERE join_id = $1`,
		joinID, status, decidedBy)
	if err != nil {
		return mapPostgresError(ctx, err, "failed to update join request")
	}

	if result.RowsAffected() == 0 {
		return store.ErrJoinRequestNotFound
	}

	return nil
}

func (s *JoinRequestStore) ListByTenant(ctx context.Context, tenantKey string, status models.JoinRequestStatus) ([]*models.JoinRequest, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT `+joinRequestColumns+` FROM join_requests
		WHERE client_name = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at, join_id`, tenantKey, string(status))
	if err != nil {
		return nil, mapPostgresError(ctx, err, "failed to list join requests")
	}

	reqs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.JoinRequest, error) {
		return scanJoinRequest(row)
	})
	if err != nil {
		return nil, mapPostgresError(ctx, err, "failed to scan join requests")
	}

	return reqs, nil
}

func scanJoinRequest(row pgx.Row) (*models.JoinRequest, error) {
	var req models.JoinRequest
	err := row.Scan(
		&req.JoinID,
		&req.Email,
		&req.Name,
		&req.TenantKey,
		&req.Message,
		&req.Status,
		&req.CreatedAt,
		&req.DecidedAt,
		&req.DecidedBy,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
