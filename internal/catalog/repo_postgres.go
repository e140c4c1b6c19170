package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepo persists products in the products table.
//
// Expected schema:
//
//	CREATE TABLE products (
//	  id                   TEXT PRIMARY KEY,
//	  sku                  TEXT NOT NULL UNIQUE,
//	  name                 TEXT NOT NULL,
//	  slug                 TEXT NOT NULL UNIQUE,
//	  description          TEXT NOT NULL DEFAULT '',
//	  icon                 TEXT NOT NULL DEFAULT '',
//	  images               JSONB NOT NULL DEFAULT '[]',
//	  status               TEXT NOT NULL,
//	  price_minor          BIGINT NOT NULL,
//	  currency             TEXT NOT NULL,
//	  discount_type        TEXT NOT NULL DEFAULT 'none',
//	  percent_discount     INT NOT NULL DEFAULT 0,
//	  fixed_discount_minor BIGINT NOT NULL DEFAULT 0,
//	  stock                INT NOT NULL DEFAULT 0,
//	  allow_backorders     BOOLEAN NOT NULL DEFAULT FALSE,
//	  dimensions           JSONB NOT NULL DEFAULT '{}',
//	  created_at           TIMESTAMPTZ NOT NULL,
//	  updated_at           TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

var _ Repository = (*PostgresRepo)(nil)

const productColumns = `id, sku, name, slug, description, icon, images, status, price_minor, currency, discount_type, percent_discount, fixed_discount_minor, stock, allow_backorders, dimensions, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, p Product) (Product, error) {
	const q = `
INSERT INTO products (id, sku, name, slug, description, icon, images, status, price_minor, currency, discount_type, percent_discount, fixed_discount_minor, stock, allow_backorders, dimensions, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
RETURNING ` + productColumns
	images, dims, err := marshalProductJSON(p)
	if err != nil {
		return Product{}, err
	}
	row := r.db.QueryRowContext(ctx, q,
		p.ID, p.SKU, p.Name, p.Slug, p.Description, p.Icon, images, p.Status,
		p.PriceMinor, p.Currency, p.DiscountType, p.PercentDiscount, p.FixedDiscountMinor,
		p.Stock, p.AllowBackorders, dims, p.CreatedAt, p.UpdatedAt,
	)
	created, err := scanProduct(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, ErrAlreadyExists
		}
		return Product{}, err
	}
	return created, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	return scanProduct(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) FindBySlug(ctx context.Context, slug string) (Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE slug = $1
`
	return scanProduct(r.db.QueryRowContext(ctx, q, slug))
}

func (r *PostgresRepo) FindByIDs(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	// A jsonb array keeps the id set bound as a single parameter under the
	// database/sql interface.
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id IN (SELECT jsonb_array_elements_text($1::jsonb))
`
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, idsJSON)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, p Product) (Product, error) {
	const q = `
UPDATE products
SET sku = $2, name = $3, slug = $4, description = $5, icon = $6, images = $7,
    status = $8, price_minor = $9, currency = $10, discount_type = $11,
    percent_discount = $12, fixed_discount_minor = $13, stock = $14,
    allow_backorders = $15, dimensions = $16, updated_at = NOW()
WHERE id = $1
RETURNING ` + productColumns
	images, dims, err := marshalProductJSON(p)
	if err != nil {
		return Product{}, err
	}
	updated, err := scanProduct(r.db.QueryRowContext(ctx, q,
		p.ID, p.SKU, p.Name, p.Slug, p.Description, p.Icon, images,
		p.Status, p.PriceMinor, p.Currency, p.DiscountType,
		p.PercentDiscount, p.FixedDiscountMinor, p.Stock,
		p.AllowBackorders, dims,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, ErrAlreadyExists
		}
		return Product{}, err
	}
	return updated, nil
}

func (r *PostgresRepo) Archive(ctx context.Context, id string) error {
	const q = `
UPDATE products
SET status = $2, updated_at = NOW()
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, id, ProductStatusArchived)
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

func (r *PostgresRepo) AdjustStock(ctx context.Context, id string, delta int) (Product, error) {
	// The WHERE clause enforces the floor in one statement; no read-modify-
	// write race between concurrent checkouts.
	const q = `
UPDATE products
SET stock = stock + $2, updated_at = NOW()
WHERE id = $1 AND (allow_backorders OR stock + $2 >= 0)
RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRowContext(ctx, q, id, delta))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Product{}, err
	}
	// Distinguish missing product from stock floor violation.
	if _, lookupErr := r.FindByID(ctx, id); lookupErr != nil {
		return Product{}, lookupErr
	}
	return Product{}, ErrOutOfStock
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Product, int, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}
	status := f.Status
	if status == "" {
		status = ProductStatusPublished
	}

	const q = `
SELECT ` + productColumns + `
FROM products
WHERE status = $1
  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR sku ILIKE '%' || $2 || '%')
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`
	rows, err := r.db.QueryContext(ctx, q, status, f.Search, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	const cq = `
SELECT COUNT(*)
FROM products
WHERE status = $1
  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR sku ILIKE '%' || $2 || '%')
`
	var total int
	if err := r.db.QueryRowContext(ctx, cq, status, f.Search).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func marshalProductJSON(p Product) (images, dims []byte, err error) {
	if p.Images == nil {
		p.Images = []string{}
	}
	images, err = json.Marshal(p.Images)
	if err != nil {
		return nil, nil, err
	}
	dims, err = json.Marshal(p.Dimensions)
	if err != nil {
		return nil, nil, err
	}
	return images, dims, nil
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var images, dims []byte
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Icon,
		&images,
		&p.Status,
		&p.PriceMinor,
		&p.Currency,
		&p.DiscountType,
		&p.PercentDiscount,
		&p.FixedDiscountMinor,
		&p.Stock,
		&p.AllowBackorders,
		&dims,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return Product{}, err
	}
	if err := json.Unmarshal(dims, &p.Dimensions); err != nil {
		return Product{}, err
	}
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return p, nil
}
