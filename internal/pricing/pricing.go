// Package pricing holds the referral discount and commission arithmetic used at checkout.
// All amounts are integer minor units; derived amounts round half away from zero.
package pricing

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

var (
	ErrInvalidPercent = errors.New("percentage must be between 0 and 100")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrInvalidRate    = errors.New("exchange rate must be positive")
	ErrInvalidCode    = errors.New("referral code must be 4-16 characters of A-Z, 0-9 or '-'")
)

var referralCodeExp = regexp.MustCompile(`^[A-Z0-9-]{4,16}$`)

// Breakdown is the result of applying a referral to a subtotal.
type Breakdown struct {
	SubtotalCents   int64 `json:"subtotal_cents"`
	DiscountCents   int64 `json:"discount_cents"`
	DiscountedCents int64 `json:"discounted_cents"`
	CommissionCents int64 `json:"commission_cents"`
}

// Calculate applies discountPct to subtotal, then takes commissionPct of what remains.
func Calculate(subtotal int64, discountPct, commissionPct float64) (Breakdown, error) {
	if subtotal < 0 {
		return Breakdown{}, ErrNegativeAmount
	}
	if err := ValidatePercent(discountPct); err != nil {
		return Breakdown{}, err
	}
	if err := ValidatePercent(commissionPct); err != nil {
		return Breakdown{}, err
	}

	discount := Percent(subtotal, discountPct)
	discounted := subtotal - discount
	return Breakdown{
		SubtotalCents:   subtotal,
		DiscountCents:   discount,
		DiscountedCents: discounted,
		CommissionCents: Percent(discounted, commissionPct),
	}, nil
}

// Percent returns pct percent of cents, rounded half away from zero.
func Percent(cents int64, pct float64) int64 {
	return int64(math.Round(float64(cents) * pct / 100))
}

// ValidatePercent rejects percentages outside [0, 100] and NaN.
func ValidatePercent(pct float64) error {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return ErrInvalidPercent
	}
	return nil
}

// ApplyRate converts base-currency cents into the target currency's cents.
func ApplyRate(cents int64, rate float64) (int64, error) {
	if math.IsNaN(rate) || rate <= 0 {
		return 0, ErrInvalidRate
	}
	return int64(math.Round(float64(cents) * rate)), nil
}

// ParseReferralCode normalises a user-supplied code. An empty input yields an empty code and no error.
func ParseReferralCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", nil
	}
	if !referralCodeExp.MatchString(code) {
		return "", ErrInvalidCode
	}
	return code, nil
}
