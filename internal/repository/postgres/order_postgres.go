package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"artmarket/internal/database"
	"artmarket/internal/model"
	"artmarket/internal/repository"
)

const orderColumns = `id, buyer_id, subtotal_cents, discount_cents, shipping_cents, total_cents,
		currency, exchange_rate, total_in_currency_cents, referral_code, COALESCE(referrer_id::text, ''),
		commission_cents, shipping_country, shipping_address, status, source, created_at, updated_at`

// OrderPostgres is a PostgreSQL implementation of repository.OrderRepository.
type OrderPostgres struct {
	db *sql.DB
}

// NewOrderPostgres creates a new OrderPostgres repository.
func NewOrderPostgres(db *sql.DB) *OrderPostgres {
	return &OrderPostgres{db: db}
}

var _ repository.OrderRepository = (*OrderPostgres)(nil)

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	if err := row.Scan(
		&o.ID,
		&o.BuyerID,
		&o.SubtotalCents,
		&o.DiscountCents,
		&o.ShippingCents,
		&o.TotalCents,
		&o.Currency,
		&o.ExchangeRate,
		&o.TotalInCurrencyCents,
		&o.ReferralCode,
		&o.ReferrerID,
		&o.CommissionCents,
		&o.ShippingCountry,
		&o.ShippingAddress,
		&o.Status,
		&o.Source,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

// insertOrder writes o and its items through q. It is shared with auction settlement.
func insertOrder(ctx context.Context, q database.Querier, o *model.Order) error {
	const qOrder = `
		INSERT INTO orders (id, buyer_id, subtotal_cents, discount_cents, shipping_cents, total_cents,
		                    currency, exchange_rate, total_in_currency_cents, referral_code, referrer_id,
		                    commission_cents, shipping_country, shipping_address, status, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
	`
	if _, err := q.ExecContext(ctx, qOrder,
		o.ID,
		o.BuyerID,
		o.SubtotalCents,
		o.DiscountCents,
		o.ShippingCents,
		o.TotalCents,
		o.Currency,
		o.ExchangeRate,
		o.TotalInCurrencyCents,
		o.ReferralCode,
		nullString(o.ReferrerID),
		o.CommissionCents,
		o.ShippingCountry,
		o.ShippingAddress,
		o.Status,
		o.Source,
		o.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", mapErr(err))
	}

	const qItem = `
		INSERT INTO order_items (order_id, product_id, seller_id, title, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, it := range o.Items {
		if _, err := q.ExecContext(ctx, qItem,
			o.ID,
			it.ProductID,
			it.SellerID,
			it.Title,
			it.Quantity,
			it.UnitPriceCents,
		); err != nil {
			return fmt.Errorf("insert order item: %w", mapErr(err))
		}
	}
	return nil
}

func loadItems(ctx context.Context, q database.Querier, orderID string) ([]model.OrderItem, error) {
	const qItems = `
		SELECT product_id, seller_id, title, quantity, unit_price_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY title, product_id
	`
	rows, err := q.QueryContext(ctx, qItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ProductID, &it.SellerID, &it.Title, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create decrements stock for every item and inserts the order in one transaction.
func (r *OrderPostgres) Create(ctx context.Context, o *model.Order) (*model.Order, error) {
	const qStock = `
		UPDATE products
		SET stock = stock - $2,
		    status = CASE WHEN stock - $2 = 0 THEN 'sold' ELSE status END,
		    updated_at = $3
		WHERE id = $1 AND stock >= $2 AND status = 'published'
	`
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, it := range o.Items {
			res, err := tx.ExecContext(ctx, qStock, it.ProductID, it.Quantity, o.CreatedAt)
			if err != nil {
				return fmt.Errorf("reserve stock: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("product %s: %w", it.ProductID, repository.ErrOutOfStock)
			}
		}
		return insertOrder(ctx, tx, o)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, o.ID)
}

// FindByID fetches an order together with its items.
func (r *OrderPostgres) FindByID(ctx context.Context, id string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if o.Items, err = loadItems(ctx, r.db, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderPostgres) ListByBuyer(ctx context.Context, buyerID string, pq repository.PageQuery) (*repository.PageResult[model.Order], error) {
	return r.list(ctx, `buyer_id = $1`, buyerID, pq)
}

func (r *OrderPostgres) ListBySeller(ctx context.Context, sellerID string, pq repository.PageQuery) (*repository.PageResult[model.Order], error) {
	return r.list(ctx, `EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.seller_id = $1)`, sellerID, pq)
}

func (r *OrderPostgres) list(ctx context.Context, cond, arg string, pq repository.PageQuery) (*repository.PageResult[model.Order], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE `+cond, arg).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + orderColumns + ` FROM orders WHERE ` + cond + `
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, arg, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		its, err := loadItems(ctx, r.db, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Items = its
	}

	return &repository.PageResult[model.Order]{
		Items: items,
		Total: total,
	}, nil
}

// Transition locks the order, lets fn validate the change and writes the new status.
func (r *OrderPostgres) Transition(ctx context.Context, id string, fn repository.TransitionFunc) (*model.Order, error) {
	const qRestock = `
		UPDATE products
		SET stock = stock + $2,
		    status = CASE WHEN status = 'sold' THEN 'published' ELSE status END,
		    updated_at = $3
		WHERE id = $1
	`
	const qUpdate = `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	var out *model.Order
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if o.Items, err = loadItems(ctx, tx, o.ID); err != nil {
			return err
		}

		restock, err := fn(o)
		if err != nil {
			return err
		}
		if restock {
			for _, it := range o.Items {
				if _, err := tx.ExecContext(ctx, qRestock, it.ProductID, it.Quantity, o.UpdatedAt); err != nil {
					return fmt.Errorf("restock: %w", err)
				}
			}
		}
		if _, err := tx.ExecContext(ctx, qUpdate, o.ID, o.Status, o.UpdatedAt); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
