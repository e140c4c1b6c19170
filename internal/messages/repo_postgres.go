package messages

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists contact messages.
//
// Expected schema:
//
//	CREATE TABLE messages (
//	  id         TEXT PRIMARY KEY,
//	  name       TEXT NOT NULL,
//	  email      TEXT NOT NULL,
//	  phone      TEXT NOT NULL DEFAULT '',
//	  comment    TEXT NOT NULL,
//	  status     TEXT NOT NULL DEFAULT 'unread',
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

var _ Repository = (*PostgresRepo)(nil)

const messageColumns = `id, name, email, phone, comment, status, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, m Message) (Message, error) {
	const q = `
INSERT INTO messages (id, name, email, phone, comment, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + messageColumns
	return scanMessage(r.db.QueryRowContext(ctx, q,
		m.ID, m.Name, m.Email, m.Phone, m.Comment, m.Status, m.CreatedAt, m.UpdatedAt,
	))
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (Message, error) {
	const q = `
SELECT ` + messageColumns + `
FROM messages
WHERE id = $1
`
	return scanMessage(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) SetStatus(ctx context.Context, id string, s Status) (Message, error) {
	const q = `
UPDATE messages
SET status = $2, updated_at = NOW()
WHERE id = $1
RETURNING ` + messageColumns
	return scanMessage(r.db.QueryRowContext(ctx, q, id, s))
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Message, int, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	const q = `
SELECT ` + messageColumns + `
FROM messages
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`
	rows, err := r.db.QueryContext(ctx, q, string(f.Status), perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	const cq = `
SELECT COUNT(*)
FROM messages
WHERE ($1 = '' OR status = $1)
`
	var total int
	if err := r.db.QueryRowContext(ctx, cq, string(f.Status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (Message, error) {
	var m Message
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.Phone,
		&m.Comment,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Message{}, ErrNotFound
		}
		return Message{}, err
	}
	return m, nil
}
