package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PostgresRepo persists profiles.
//
// Expected schema:
//
//	CREATE TABLE profiles (
//	  user_id    TEXT PRIMARY KEY,
//	  first_name TEXT NOT NULL DEFAULT '',
//	  last_name  TEXT NOT NULL DEFAULT '',
//	  phone      TEXT NOT NULL DEFAULT '',
//	  company    TEXT NOT NULL DEFAULT '',
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

var _ Repository = (*PostgresRepo)(nil)

const profileColumns = `user_id, first_name, last_name, phone, company, created_at, updated_at`

func (r *PostgresRepo) Upsert(ctx context.Context, p Profile) (Profile, error) {
	const q = `
INSERT INTO profiles (user_id, first_name, last_name, phone, company, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6)
ON CONFLICT (user_id) DO UPDATE SET
  first_name = EXCLUDED.first_name,
  last_name  = EXCLUDED.last_name,
  phone      = EXCLUDED.phone,
  company    = EXCLUDED.company,
  updated_at = EXCLUDED.updated_at
RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRowContext(ctx, q,
		p.UserID, p.FirstName, p.LastName, p.Phone, p.Company, p.UpdatedAt,
	))
}

func (r *PostgresRepo) FindByUserID(ctx context.Context, userID string) (Profile, error) {
	const q = `
SELECT ` + profileColumns + `
FROM profiles
WHERE user_id = $1
`
	return scanProfile(r.db.QueryRowContext(ctx, q, userID))
}

func (r *PostgresRepo) FindByUserIDs(ctx context.Context, userIDs []string) (map[string]Profile, error) {
	out := make(map[string]Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	// Bind the id set as one jsonb parameter so the query text stays constant.
	idsJSON, err := json.Marshal(userIDs)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT ` + profileColumns + `
FROM profiles
WHERE user_id IN (SELECT jsonb_array_elements_text($1::jsonb))
`
	rows, err := r.db.QueryContext(ctx, q, idsJSON)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out[p.UserID] = p
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Delete(ctx context.Context, userID string) error {
	const q = `DELETE FROM profiles WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, q, userID)
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

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	if err := row.Scan(
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.Phone,
		&p.Company,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}
