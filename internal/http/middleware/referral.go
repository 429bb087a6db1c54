package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"artmarket/internal/pricing"
)

// ReferralCookieName is the cookie carrying the referral code of the link a buyer arrived through.
const ReferralCookieName = "ref"

// ReferralCapture stores a valid ?ref=CODE query parameter in the referral
// cookie for ttl. Malformed codes are ignored and the request continues.
func ReferralCapture(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := c.Query(ReferralCookieName); raw != "" {
			if code, err := pricing.ParseReferralCode(raw); err == nil && code != "" {
				c.Cookie(&fiber.Cookie{
					Name:     ReferralCookieName,
					Value:    code,
					Path:     "/",
					Expires:  time.Now().Add(ttl),
					MaxAge:   int(ttl.Seconds()),
					HTTPOnly: true,
					SameSite: fiber.CookieSameSiteLaxMode,
				})
			}
		}
		return c.Next()
	}
}
