package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepo persists users in the users table.
//
// Expected schema:
//
//	CREATE TABLE users (
//	  id            TEXT PRIMARY KEY,
//	  email         TEXT NOT NULL UNIQUE,
//	  password_hash TEXT NOT NULL,
//	  avatar        TEXT NOT NULL DEFAULT '',
//	  roles         JSONB NOT NULL DEFAULT '[]',
//	  refresh_token TEXT NOT NULL DEFAULT '',
//	  deleted       BOOLEAN NOT NULL DEFAULT FALSE,
//	  suspended     BOOLEAN NOT NULL DEFAULT FALSE,
//	  created_at    TIMESTAMPTZ NOT NULL,
//	  updated_at    TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

var _ Repository = (*PostgresRepo)(nil)

const userColumns = `id, email, password_hash, avatar, roles, refresh_token, deleted, suspended, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, u User) (User, error) {
	const q = `
INSERT INTO users (id, email, password_hash, avatar, roles, refresh_token, deleted, suspended, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING ` + userColumns
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return User{}, err
	}
	row := r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.PasswordHash, u.Avatar, roles, u.RefreshToken,
		u.Deleted, u.Suspended, u.CreatedAt, u.UpdatedAt,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrAlreadyExists
		}
		return User{}, err
	}
	return created, nil
}

func (r *PostgresRepo) FindActiveByID(ctx context.Context, id string) (User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1 AND deleted = FALSE AND suspended = FALSE
`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) FindActiveByEmail(ctx context.Context, email string) (User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1 AND deleted = FALSE AND suspended = FALSE
`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *PostgresRepo) FindActiveByRefreshToken(ctx context.Context, token string) (User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE refresh_token = $1 AND refresh_token <> '' AND deleted = FALSE AND suspended = FALSE
`
	return scanUser(r.db.QueryRowContext(ctx, q, token))
}

func (r *PostgresRepo) RotateRefreshToken(ctx context.Context, id, token string) (User, error) {
	const q = `
UPDATE users
SET refresh_token = $2, updated_at = NOW()
WHERE id = $1 AND deleted = FALSE AND suspended = FALSE
RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, q, id, token))
}

func (r *PostgresRepo) Update(ctx context.Context, u User) (User, error) {
	const q = `
UPDATE users
SET email = $2, avatar = $3, roles = $4, updated_at = NOW()
WHERE id = $1 AND deleted = FALSE
RETURNING ` + userColumns
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return User{}, err
	}
	updated, err := scanUser(r.db.QueryRowContext(ctx, q, u.ID, u.Email, u.Avatar, roles))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrAlreadyExists
		}
		return User{}, err
	}
	return updated, nil
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const q = `
UPDATE users
SET password_hash = $2, updated_at = NOW()
WHERE id = $1 AND deleted = FALSE
`
	return r.exec(ctx, q, id, passwordHash)
}

func (r *PostgresRepo) SetSuspended(ctx context.Context, id string, suspended bool) error {
	const q = `
UPDATE users
SET suspended = $2, updated_at = NOW()
WHERE id = $1 AND deleted = FALSE
`
	return r.exec(ctx, q, id, suspended)
}

func (r *PostgresRepo) SetDeleted(ctx context.Context, id string) error {
	// Soft delete; the refresh token is cleared so the record can never
	// match a rotation lookup again.
	const q = `
UPDATE users
SET deleted = TRUE, refresh_token = '', updated_at = NOW()
WHERE id = $1
`
	return r.exec(ctx, q, id)
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]User, int, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE ($1 OR deleted = FALSE)
  AND ($2 = '' OR roles @> $3::jsonb)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5
`
	roleJSON, err := json.Marshal([]string{f.Role})
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, q, f.IncludeDeleted, f.Role, roleJSON, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	const cq = `
SELECT COUNT(*)
FROM users
WHERE ($1 OR deleted = FALSE)
  AND ($2 = '' OR roles @> $3::jsonb)
`
	var total int
	if err := r.db.QueryRowContext(ctx, cq, f.IncludeDeleted, f.Role, roleJSON).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var roles []byte
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Avatar,
		&roles,
		&u.RefreshToken,
		&u.Deleted,
		&u.Suspended,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if err := json.Unmarshal(roles, &u.Roles); err != nil {
		return User{}, err
	}
	u.CreatedAt = createdAt
	u.UpdatedAt = updatedAt
	return u, nil
}
