package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"artmarket/internal/model"
	"artmarket/internal/pricing"
	"artmarket/internal/repository"
	"artmarket/internal/storage"
)

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	Name                  *string  `json:"name"`
	Bio                   *string  `json:"bio"`
	ReferralDiscountPct   *float64 `json:"referral_discount_pct"`
	ReferralCommissionPct *float64 `json:"referral_commission_pct"`
}

func (in *ProfileInput) Validate() error {
	pct := validation.By(func(v any) error {
		if f, ok := v.(*float64); ok && f != nil {
			return pricing.ValidatePercent(*f)
		}
		return nil
	})
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&in.Bio, validation.Length(0, 2000)),
		validation.Field(&in.ReferralDiscountPct, pct),
		validation.Field(&in.ReferralCommissionPct, pct),
	)
}

// UserService manages profiles, avatars and seller referral codes.
type UserService interface {
	Get(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, actor Actor, in ProfileInput) (*model.User, error)
	UploadAvatar(ctx context.Context, actor Actor, img ImageUpload) (*model.User, error)
	// CreateReferralCode assigns code to the seller, generating one when code is empty.
	CreateReferralCode(ctx context.Context, actor Actor, code string) (*model.User, error)
	SellerProfile(ctx context.Context, sellerID string) (*model.SellerProfile, error)
}

type userService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	store    storage.Storage
	urls     presigner
	log      *zap.Logger
	now      func() time.Time
}

func NewUserService(users repository.UserRepository, products repository.ProductRepository, store storage.Storage, presignExpiry time.Duration, log *zap.Logger) UserService {
	return &userService{
		users:    users,
		products: products,
		store:    store,
		urls:     presigner{store: store, expiry: presignExpiry, log: log},
		log:      log,
		now:      time.Now,
	}
}

func (s *userService) withURLs(ctx context.Context, u *model.User) *model.User {
	u.AvatarURL = s.urls.url(ctx, u.AvatarKey)
	return u
}

func (s *userService) load(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withURLs(ctx, u), nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor Actor, in ProfileInput) (*model.User, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	u, err := s.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if (in.ReferralDiscountPct != nil || in.ReferralCommissionPct != nil) && !u.IsSeller() {
		return nil, ErrForbidden
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.ReferralDiscountPct != nil {
		u.ReferralDiscountPct = *in.ReferralDiscountPct
	}
	if in.ReferralCommissionPct != nil {
		u.ReferralCommissionPct = *in.ReferralCommissionPct
	}
	u.UpdatedAt = s.now().UTC()

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, notFound(err)
	}
	return s.withURLs(ctx, updated), nil
}

func (s *userService) UploadAvatar(ctx context.Context, actor Actor, img ImageUpload) (*model.User, error) {
	u, err := s.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	key, err := putImage(ctx, s.store, img, "avatars", u.ID)
	if err != nil {
		return nil, err
	}

	previous := u.AvatarKey
	u.AvatarKey = key
	u.UpdatedAt = s.now().UTC()
	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, rollbackImage(ctx, s.store, key, err)
	}

	if previous != "" {
		if err := s.store.Delete(ctx, previous); err != nil {
			s.log.Warn("avatar_cleanup_failed", zap.String("key", previous), zap.Error(err))
		}
	}
	return s.withURLs(ctx, updated), nil
}

func (s *userService) CreateReferralCode(ctx context.Context, actor Actor, code string) (*model.User, error) {
	u, err := s.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !u.IsSeller() {
		return nil, ErrForbidden
	}

	generated := strings.TrimSpace(code) == ""
	attempts := 1
	if generated {
		attempts = 3
	}
	for i := 0; i < attempts; i++ {
		if generated {
			code = generateReferralCode(u.Name)
		}
		normalized, err := pricing.ParseReferralCode(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		u.ReferralCode = normalized
		u.UpdatedAt = s.now().UTC()

		updated, err := s.users.Update(ctx, u)
		if err == nil {
			return s.withURLs(ctx, updated), nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, notFound(err)
		}
	}
	return nil, fmt.Errorf("%w: referral code already taken", ErrConflict)
}

// generateReferralCode derives a code like "ADALOV-3F9C" from the seller's name.
func generateReferralCode(name string) string {
	var prefix strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			prefix.WriteRune(r)
			if prefix.Len() == 6 {
				break
			}
		}
	}
	if prefix.Len() == 0 {
		prefix.WriteString("ART")
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return prefix.String() + "-" + suffix
}

func (s *userService) SellerProfile(ctx context.Context, sellerID string) (*model.SellerProfile, error) {
	u, err := s.load(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !u.IsSeller() {
		return nil, ErrNotFound
	}
	res, err := s.products.List(ctx, model.ProductFilter{SellerID: u.ID, Status: model.ProductPublished}, repository.PageQuery{Limit: maxLimit})
	if err != nil {
		return nil, err
	}
	for i := range res.Items {
		res.Items[i].ImageURLs = s.urls.urls(ctx, res.Items[i].ImageKeys)
	}
	return &model.SellerProfile{Seller: *s.withURLs(ctx, u), Products: res.Items}, nil
}
