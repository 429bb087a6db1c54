package postgres

import (
	"context"
	"database/sql"

	"artmarket/internal/model"
	"artmarket/internal/repository"
)

// SocialPostPostgres is a PostgreSQL implementation of repository.SocialPostRepository.
type SocialPostPostgres struct {
	db *sql.DB
}

func NewSocialPostPostgres(db *sql.DB) *SocialPostPostgres {
	return &SocialPostPostgres{db: db}
}

var _ repository.SocialPostRepository = (*SocialPostPostgres)(nil)

const socialPostColumns = `id, product_id, network, external_id, status, error, created_at`

func scanSocialPost(row rowScanner) (*model.SocialPost, error) {
	var p model.SocialPost
	if err := row.Scan(&p.ID, &p.ProductID, &p.Network, &p.ExternalID, &p.Status, &p.Error, &p.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *SocialPostPostgres) Create(ctx context.Context, p *model.SocialPost) (*model.SocialPost, error) {
	q := `
		INSERT INTO social_posts (id, product_id, network, external_id, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + socialPostColumns
	return scanSocialPost(r.db.QueryRowContext(ctx, q, p.ID, p.ProductID, p.Network, p.ExternalID, p.Status, p.Error, p.CreatedAt))
}

func (r *SocialPostPostgres) ListByProduct(ctx context.Context, productID string) ([]model.SocialPost, error) {
	q := `SELECT ` + socialPostColumns + ` FROM social_posts WHERE product_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SocialPost, 0)
	for rows.Next() {
		p, err := scanSocialPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
