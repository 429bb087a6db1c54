package repository

import (
	"context"

	"artmarket/internal/model"
)

// UserRepository persists accounts. Email and referral code lookups are exact matches.
type UserRepository interface {
	// Create inserts a user. It returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByReferralCode(ctx context.Context, code string) (*model.User, error)
	// Update writes the mutable profile fields. It returns ErrDuplicate on a referral code clash.
	Update(ctx context.Context, u *model.User) (*model.User, error)
}
