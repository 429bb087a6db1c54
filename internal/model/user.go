package model

import "time"

// Role is the coarse permission level of a user.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User is a marketplace account. Sellers additionally carry a public profile
// and, optionally, a referral code with its discount and commission rates.
type User struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email"`
	PasswordHash          string    `json:"-"`
	Name                  string    `json:"name"`
	Role                  Role      `json:"role"`
	Bio                   string    `json:"bio,omitempty"`
	AvatarKey             string    `json:"-"`
	AvatarURL             string    `json:"avatar_url,omitempty"`
	ReferralCode          string    `json:"referral_code,omitempty"`
	ReferralDiscountPct   float64   `json:"referral_discount_pct"`
	ReferralCommissionPct float64   `json:"referral_commission_pct"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// IsSeller reports whether the user may list artworks.
func (u *User) IsSeller() bool {
	return u.Role == RoleSeller || u.Role == RoleAdmin
}

// SellerProfile is the public view of a seller together with their listed work.
type SellerProfile struct {
	Seller   User      `json:"seller"`
	Products []Product `json:"products"`
}
