package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"commerce-platform/pkg/utils"
)

// PostgresRepo persists orders with line items as a JSONB column.
//
// Expected schema:
//
//	CREATE TABLE orders (
//	  id         TEXT PRIMARY KEY,
//	  user_id    TEXT NOT NULL,
//	  session    TEXT NOT NULL UNIQUE,
//	  status     TEXT NOT NULL,
//	  line_items JSONB NOT NULL DEFAULT '[]',
//	  currency   TEXT NOT NULL,
//	  tax_minor  BIGINT NOT NULL DEFAULT 0,
//	  refunded   BOOLEAN NOT NULL DEFAULT FALSE,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

var _ Repository = (*PostgresRepo)(nil)

const orderColumns = `id, user_id, session, status, line_items, currency, tax_minor, refunded, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, o Order) (Order, error) {
	const q = `
INSERT INTO orders (id, user_id, session, status, line_items, currency, tax_minor, refunded, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING ` + orderColumns
	items, err := json.Marshal(o.LineItems)
	if err != nil {
		return Order{}, err
	}
	return scanOrder(r.db.QueryRowContext(ctx, q,
		o.ID, o.UserID, o.Session, o.Status, items, o.Currency,
		o.TaxMinor, o.Refunded, o.CreatedAt, o.UpdatedAt,
	))
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	return scanOrder(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) FindBySession(ctx context.Context, session string) (Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE session = $1
`
	return scanOrder(r.db.QueryRowContext(ctx, q, session))
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id string, to OrderStatus) (Order, error) {
	var out Order
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		// Lock the row so two concurrent transitions serialize; the loser
		// re-evaluates against the winner's status.
		const sel = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
FOR UPDATE
`
		current, err := scanOrder(tx.QueryRowContext(ctx, sel, id))
		if err != nil {
			return err
		}
		if !CanTransition(current.Status, to) {
			return ErrInvalidTransition
		}

		const upd = `
UPDATE orders
SET status = $2, refunded = $3, updated_at = NOW()
WHERE id = $1
RETURNING ` + orderColumns
		out, err = scanOrder(tx.QueryRowContext(ctx, upd, id, to, current.Refunded || to == StatusRefunded))
		return err
	})
	if err != nil {
		return Order{}, err
	}
	return out, nil
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	from := f.From
	if from.IsZero() {
		from = time.Unix(0, 0).UTC()
	}
	to := f.To
	if to.IsZero() {
		to = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE ($1 = '' OR user_id = $1)
  AND ($2 = '' OR status = $2)
  AND created_at >= $3 AND created_at < $4
ORDER BY created_at DESC
LIMIT $5 OFFSET $6
`
	rows, err := r.db.QueryContext(ctx, q, f.UserID, string(f.Status), from, to, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	const cq = `
SELECT COUNT(*)
FROM orders
WHERE ($1 = '' OR user_id = $1)
  AND ($2 = '' OR status = $2)
  AND created_at >= $3 AND created_at < $4
`
	var total int
	if err := r.db.QueryRowContext(ctx, cq, f.UserID, string(f.Status), from, to).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var items []byte
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Session,
		&o.Status,
		&items,
		&o.Currency,
		&o.TaxMinor,
		&o.Refunded,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	if err := json.Unmarshal(items, &o.LineItems); err != nil {
		return Order{}, err
	}
	return o, nil
}
