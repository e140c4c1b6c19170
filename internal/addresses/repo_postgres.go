package addresses

import (
	"context"
	"database/sql"
	"errors"

	"commerce-platform/pkg/utils"
)

// PostgresRepo persists addresses.
//
// Expected schema:
//
//	CREATE TABLE addresses (
//	  id         TEXT PRIMARY KEY,
//	  user_id    TEXT NOT NULL,
//	  kind       TEXT NOT NULL,
//	  full_name  TEXT NOT NULL,
//	  line1      TEXT NOT NULL,
//	  line2      TEXT NOT NULL DEFAULT '',
//	  city       TEXT NOT NULL,
//	  state      TEXT NOT NULL DEFAULT '',
//	  post_code  TEXT NOT NULL,
//	  country    TEXT NOT NULL,
//	  phone      TEXT NOT NULL DEFAULT '',
//	  is_default BOOLEAN NOT NULL DEFAULT FALSE,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

var _ Repository = (*PostgresRepo)(nil)

const addressColumns = `id, user_id, kind, full_name, line1, line2, city, state, post_code, country, phone, is_default, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, a Address) (Address, error) {
	const q = `
INSERT INTO addresses (id, user_id, kind, full_name, line1, line2, city, state, post_code, country, phone, is_default, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
RETURNING ` + addressColumns
	return scanAddress(r.db.QueryRowContext(ctx, q,
		a.ID, a.UserID, a.Kind, a.FullName, a.Line1, a.Line2, a.City,
		a.State, a.PostCode, a.Country, a.Phone, a.Default, a.CreatedAt, a.UpdatedAt,
	))
}

func (r *PostgresRepo) FindByID(ctx context.Context, userID, id string) (Address, error) {
	const q = `
SELECT ` + addressColumns + `
FROM addresses
WHERE id = $1 AND user_id = $2
`
	return scanAddress(r.db.QueryRowContext(ctx, q, id, userID))
}

func (r *PostgresRepo) Update(ctx context.Context, a Address) (Address, error) {
	const q = `
UPDATE addresses
SET kind = $3, full_name = $4, line1 = $5, line2 = $6, city = $7, state = $8,
    post_code = $9, country = $10, phone = $11, updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING ` + addressColumns
	return scanAddress(r.db.QueryRowContext(ctx, q,
		a.ID, a.UserID, a.Kind, a.FullName, a.Line1, a.Line2, a.City,
		a.State, a.PostCode, a.Country, a.Phone,
	))
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, id string) error {
	const q = `
DELETE FROM addresses
WHERE id = $1 AND user_id = $2
`
	res, err := r.db.ExecContext(ctx, q, id, userID)
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

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Address, error) {
	const q = `
SELECT ` + addressColumns + `
FROM addresses
WHERE user_id = $1
ORDER BY is_default DESC, created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) SetDefault(ctx context.Context, userID, id string) (Address, error) {
	var out Address
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		target, err := scanAddress(tx.QueryRowContext(ctx, `
SELECT `+addressColumns+`
FROM addresses
WHERE id = $1 AND user_id = $2
FOR UPDATE
`, id, userID))
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE addresses
SET is_default = FALSE, updated_at = NOW()
WHERE user_id = $1 AND kind = $2 AND is_default
`, userID, target.Kind); err != nil {
			return err
		}

		out, err = scanAddress(tx.QueryRowContext(ctx, `
UPDATE addresses
SET is_default = TRUE, updated_at = NOW()
WHERE id = $1
RETURNING `+addressColumns, id))
		return err
	})
	if err != nil {
		return Address{}, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (Address, error) {
	var a Address
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Kind,
		&a.FullName,
		&a.Line1,
		&a.Line2,
		&a.City,
		&a.State,
		&a.PostCode,
		&a.Country,
		&a.Phone,
		&a.Default,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Address{}, ErrNotFound
		}
		return Address{}, err
	}
	return a, nil
}
