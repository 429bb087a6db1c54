package model

import (
	"errors"
	"time"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderShipped, OrderCancelled},
	OrderShipped: {OrderDelivered},
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderSource records how an order was created.
type OrderSource string

const (
	SourceCheckout OrderSource = "checkout"
	SourceAuction  OrderSource = "auction"
)

// OrderItem is a line of an order, priced at the time of purchase.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	SellerID       string `json:"seller_id"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// Order is a purchase. Cents fields are in the base currency except
// TotalInCurrencyCents, which is expressed in Currency.
type Order struct {
	ID                   string      `json:"id"`
	BuyerID              string      `json:"buyer_id"`
	Items                []OrderItem `json:"items"`
	SubtotalCents        int64       `json:"subtotal_cents"`
	DiscountCents        int64       `json:"discount_cents"`
	ShippingCents        int64       `json:"shipping_cents"`
	TotalCents           int64       `json:"total_cents"`
	Currency             string      `json:"currency"`
	ExchangeRate         float64     `json:"exchange_rate"`
	TotalInCurrencyCents int64       `json:"total_in_currency_cents"`
	ReferralCode         string      `json:"referral_code,omitempty"`
	ReferrerID           string      `json:"referrer_id,omitempty"`
	CommissionCents      int64       `json:"commission_cents"`
	ShippingCountry      string      `json:"shipping_country"`
	ShippingAddress      string      `json:"shipping_address"`
	Status               OrderStatus `json:"status"`
	Source               OrderSource `json:"source"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// HasSeller reports whether any line of the order belongs to sellerID.
func (o *Order) HasSeller(sellerID string) bool {
	for _, it := range o.Items {
		if it.SellerID == sellerID {
			return true
		}
	}
	return false
}
