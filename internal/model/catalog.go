package model

import "time"

// ExchangeRate is the number of units of Currency per one unit of the base currency.
type ExchangeRate struct {
	Currency  string    `json:"currency"`
	Rate      float64   `json:"rate"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settings is the singleton row of admin-editable site configuration.
type Settings struct {
	BaseCurrency         string    `json:"base_currency"`
	AntiSnipeWindowSec   int       `json:"anti_snipe_window_sec"`
	AuctionExtensionSec  int       `json:"auction_extension_sec"`
	DefaultCommissionPct float64   `json:"default_commission_pct"`
	SocialAutoPost       bool      `json:"social_auto_post"`
	MaintenanceMode      bool      `json:"maintenance_mode"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// AntiSnipeWindow is the time before the end in which a bid extends the auction.
func (s Settings) AntiSnipeWindow() time.Duration {
	return time.Duration(s.AntiSnipeWindowSec) * time.Second
}

// AuctionExtension is how far past the bid time an extended auction now ends.
func (s Settings) AuctionExtension() time.Duration {
	return time.Duration(s.AuctionExtensionSec) * time.Second
}

// DefaultSettings mirrors the row seeded by the migrations.
func DefaultSettings() Settings {
	return Settings{
		BaseCurrency:         "EUR",
		AntiSnipeWindowSec:   120,
		AuctionExtensionSec:  120,
		DefaultCommissionPct: 10,
	}
}

// ShippingCountry is a destination buyers may choose at checkout.
type ShippingCountry struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	CostCents int64  `json:"cost_cents"`
	Enabled   bool   `json:"enabled"`
}

// Banner is a home-page promotional slot.
type Banner struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ImageKey  string    `json:"-"`
	ImageURL  string    `json:"image_url,omitempty"`
	LinkURL   string    `json:"link_url,omitempty"`
	Position  int       `json:"position"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
