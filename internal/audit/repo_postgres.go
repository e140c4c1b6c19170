package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo persists audit events in an insert-only table.
//
// Expected schema:
//
//	CREATE TABLE audit_events (
//	  id             TEXT PRIMARY KEY,
//	  type           TEXT NOT NULL,
//	  actor_user_id  TEXT NOT NULL DEFAULT '',
//	  actor_email    TEXT NOT NULL DEFAULT '',
//	  ip_address     TEXT NOT NULL DEFAULT '',
//	  target_user_id TEXT NOT NULL DEFAULT '',
//	  order_id       TEXT NOT NULL DEFAULT '',
//	  message        TEXT NOT NULL DEFAULT '',
//	  metadata       TEXT NOT NULL DEFAULT '',
//	  created_at     TIMESTAMPTZ NOT NULL
//	);
//
// Recommended: a trigger preventing UPDATE/DELETE, partitioning by time for
// retention.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

var _ Repository = (*PostgresRepo)(nil)

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (id, type, actor_user_id, actor_email, ip_address, target_user_id, order_id, message, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.Type, e.ActorUserID, e.ActorEmail, e.IPAddress,
		e.TargetUserID, e.OrderID, e.Message, e.Metadata, e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Event, int, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	const q = `
SELECT id, type, actor_user_id, actor_email, ip_address, target_user_id, order_id, message, metadata, created_at
FROM audit_events
WHERE ($1 = '' OR type = $1)
  AND ($2 = '' OR target_user_id = $2)
  AND ($3 = '' OR order_id = $3)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5
`
	rows, err := r.db.QueryContext(ctx, q, string(f.Type), f.TargetUserID, f.OrderID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.Type, &e.ActorUserID, &e.ActorEmail, &e.IPAddress,
			&e.TargetUserID, &e.OrderID, &e.Message, &e.Metadata, &e.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	const cq = `
SELECT COUNT(*)
FROM audit_events
WHERE ($1 = '' OR type = $1)
  AND ($2 = '' OR target_user_id = $2)
  AND ($3 = '' OR order_id = $3)
`
	var total int
	if err := r.db.QueryRowContext(ctx, cq, string(f.Type), f.TargetUserID, f.OrderID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
