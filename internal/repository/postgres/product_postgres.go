package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"artmarket/internal/database"
	"artmarket/internal/model"
	"artmarket/internal/repository"
)

const productColumns = `id, seller_id, title, description, medium, width_cm, height_cm, year,
		price_cents, stock, image_keys, status, sale_type, created_at, updated_at`

// ProductPostgres is a PostgreSQL implementation of repository.ProductRepository.
// Image keys are stored as a JSONB array.
type ProductPostgres struct {
	db *sql.DB
}

// NewProductPostgres creates a new ProductPostgres repository.
func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

var _ repository.ProductRepository = (*ProductPostgres)(nil)

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p    model.Product
		keys []byte
	)
	if err := row.Scan(
		&p.ID,
		&p.SellerID,
		&p.Title,
		&p.Description,
		&p.Medium,
		&p.WidthCM,
		&p.HeightCM,
		&p.Year,
		&p.PriceCents,
		&p.Stock,
		&keys,
		&p.Status,
		&p.SaleType,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	decoded, err := decodeKeys(keys)
	if err != nil {
		return nil, fmt.Errorf("decode image keys: %w", err)
	}
	p.ImageKeys = decoded
	return &p, nil
}

// Create inserts a new product row and returns the stored record.
func (r *ProductPostgres) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	keys, err := encodeKeys(p.ImageKeys)
	if err != nil {
		return nil, err
	}
	q := `
		INSERT INTO products (id, seller_id, title, description, medium, width_cm, height_cm, year,
		                      price_cents, stock, image_keys, status, sale_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		RETURNING ` + productColumns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.SellerID,
		p.Title,
		p.Description,
		p.Medium,
		p.WidthCM,
		p.HeightCM,
		p.Year,
		p.PriceCents,
		p.Stock,
		keys,
		p.Status,
		p.SaleType,
		p.CreatedAt,
	)
	return scanProduct(row)
}

// FindByID fetches a single product by its ID.
func (r *ProductPostgres) FindByID(ctx context.Context, id string) (*model.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRowContext(ctx, q, id))
}

// productWhere builds the WHERE clause for f. Placeholders start at $1.
func productWhere(f model.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.SellerID != "" {
		add("seller_id = $%d", f.SellerID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.SaleType != "" {
		add("sale_type = $%d", f.SaleType)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR medium ILIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns products using LIMIT/OFFSET pagination and a total count.
func (r *ProductPostgres) List(ctx context.Context, f model.ProductFilter, pq repository.PageQuery) (*repository.PageResult[model.Product], error) {
	where, args := productWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	q := `SELECT ` + productColumns + ` FROM products` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	rows, err := r.db.QueryContext(ctx, q, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Product]{
		Items: items,
		Total: total,
	}, nil
}

func lockProduct(ctx context.Context, tx *sql.Tx, id string) (*model.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return scanProduct(tx.QueryRowContext(ctx, q, id))
}

// withLockedProduct runs fn on the locked row, then hands the changed row to
// write, which stores the columns it owns.
func (r *ProductPostgres) withLockedProduct(ctx context.Context, id string, fn repository.ProductMutateFunc,
	write func(tx *sql.Tx, p *model.Product) (*model.Product, error)) (*model.Product, error) {
	var out *model.Product
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		p, err := lockProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		out, err = write(tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductPostgres) Mutate(ctx context.Context, id string, fn repository.ProductMutateFunc) (*model.Product, error) {
	q := `
		UPDATE products
		SET title = $2, description = $3, medium = $4, width_cm = $5, height_cm = $6, year = $7,
		    price_cents = $8, stock = $9, status = $10, sale_type = $11, updated_at = $12
		WHERE id = $1
		RETURNING ` + productColumns
	return r.withLockedProduct(ctx, id, fn, func(tx *sql.Tx, p *model.Product) (*model.Product, error) {
		return scanProduct(tx.QueryRowContext(ctx, q,
			p.ID,
			p.Title,
			p.Description,
			p.Medium,
			p.WidthCM,
			p.HeightCM,
			p.Year,
			p.PriceCents,
			p.Stock,
			p.Status,
			p.SaleType,
			p.UpdatedAt,
		))
	})
}

func (r *ProductPostgres) UpdateImages(ctx context.Context, id string, fn repository.ProductMutateFunc) (*model.Product, error) {
	q := `UPDATE products SET image_keys = $2, updated_at = $3 WHERE id = $1 RETURNING ` + productColumns
	return r.withLockedProduct(ctx, id, fn, func(tx *sql.Tx, p *model.Product) (*model.Product, error) {
		keys, err := encodeKeys(p.ImageKeys)
		if err != nil {
			return nil, err
		}
		return scanProduct(tx.QueryRowContext(ctx, q, p.ID, keys, p.UpdatedAt))
	})
}
