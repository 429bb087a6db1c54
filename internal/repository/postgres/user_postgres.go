package postgres

import (
	"context"
	"database/sql"

	"artmarket/internal/model"
	"artmarket/internal/repository"
)

const userColumns = `id, email, password_hash, name, role, bio, avatar_key,
		COALESCE(referral_code, ''), referral_discount_pct, referral_commission_pct, created_at, updated_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.Bio,
		&u.AvatarKey,
		&u.ReferralCode,
		&u.ReferralDiscountPct,
		&u.ReferralCommissionPct,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	q := `
		INSERT INTO users (id, email, password_hash, name, role, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.Role,
		u.Bio,
		u.CreatedAt,
	)
	return scanUser(row)
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserPostgres) FindByReferralCode(ctx context.Context, code string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, code))
}

func (r *UserPostgres) Update(ctx context.Context, u *model.User) (*model.User, error) {
	q := `
		UPDATE users
		SET name = $2, bio = $3, avatar_key = $4, referral_code = $5,
		    referral_discount_pct = $6, referral_commission_pct = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Name,
		u.Bio,
		u.AvatarKey,
		nullString(u.ReferralCode),
		u.ReferralDiscountPct,
		u.ReferralCommissionPct,
		u.UpdatedAt,
	)
	return scanUser(row)
}
