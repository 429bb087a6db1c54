package model

import "time"

// ProductStatus tracks the listing lifecycle of an artwork.
type ProductStatus string

const (
	ProductDraft     ProductStatus = "draft"
	ProductPublished ProductStatus = "published"
	ProductSold      ProductStatus = "sold"
	ProductArchived  ProductStatus = "archived"
)

// SaleType distinguishes fixed-price listings from auctions.
type SaleType string

const (
	SaleFixed   SaleType = "fixed"
	SaleAuction SaleType = "auction"
)

// Product is an artwork listed by a seller. PriceCents is in the site base currency.
type Product struct {
	ID          string        `json:"id"`
	SellerID    string        `json:"seller_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Medium      string        `json:"medium,omitempty"`
	WidthCM     float64       `json:"width_cm,omitempty"`
	HeightCM    float64       `json:"height_cm,omitempty"`
	Year        int           `json:"year,omitempty"`
	PriceCents  int64         `json:"price_cents"`
	Stock       int           `json:"stock"`
	ImageKeys   []string      `json:"-"`
	ImageURLs   []string      `json:"image_urls,omitempty"`
	Status      ProductStatus `json:"status"`
	SaleType    SaleType      `json:"sale_type"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Purchasable reports whether the product can go through checkout.
func (p *Product) Purchasable() bool {
	return p.Status == ProductPublished && p.SaleType == SaleFixed && p.Stock > 0
}

// ProductFilter narrows product listings. Empty fields do not filter.
type ProductFilter struct {
	SellerID string
	Status   ProductStatus
	SaleType SaleType
	Query    string
}
