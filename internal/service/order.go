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

	"artmarket/internal/logger"
	"artmarket/internal/mailer"
	"artmarket/internal/model"
	"artmarket/internal/pricing"
	"artmarket/internal/repository"
)

// CheckoutItem is one requested line of a checkout.
type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (it CheckoutItem) Validate() error {
	return validation.ValidateStruct(&it,
		validation.Field(&it.ProductID, validation.Required),
		validation.Field(&it.Quantity, validation.Required, validation.Min(1)),
	)
}

// CheckoutInput places an order for fixed-price artworks. ReferralCode is the
// code typed by the buyer and is rejected when unknown; ReferralCookie is the
// code remembered from a referral link and is ignored when it does not resolve.
type CheckoutInput struct {
	Items           []CheckoutItem `json:"items"`
	ShippingCountry string         `json:"shipping_country"`
	ShippingAddress string         `json:"shipping_address"`
	Currency        string         `json:"currency"`
	ReferralCode    string         `json:"referral_code"`
	ReferralCookie  string         `json:"-"`
}

func (in *CheckoutInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Items, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.ShippingCountry, validation.Required, validation.Length(2, 2)),
		validation.Field(&in.ShippingAddress, validation.Required, validation.Length(1, 500)),
		validation.Field(&in.Currency, validation.Length(3, 3)),
	)
}

// OrderService runs checkout and order fulfilment.
type OrderService interface {
	// Checkout prices and places an order, reserving stock atomically.
	Checkout(ctx context.Context, actor Actor, in CheckoutInput) (*model.Order, error)
	// Get returns an order to its buyer, to a seller with an item in it, or to an admin.
	Get(ctx context.Context, actor Actor, id string) (*model.Order, error)
	ListMine(ctx context.Context, actor Actor, limit, offset int) (*ListResult[model.Order], error)
	ListForSeller(ctx context.Context, actor Actor, limit, offset int) (*ListResult[model.Order], error)
	// UpdateStatus moves an order along the fulfilment table. Cancelling a
	// checkout order puts its quantities back in stock.
	UpdateStatus(ctx context.Context, actor Actor, id string, next model.OrderStatus) (*model.Order, error)
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	rates    repository.ExchangeRateRepository
	shipping repository.ShippingCountryRepository
	settings repository.SettingsRepository
	mail     mailer.Mailer
	metrics  *Metrics
	log      *zap.Logger
	now      func() time.Time
}

// OrderDeps groups the collaborators of the order service.
type OrderDeps struct {
	Orders   repository.OrderRepository
	Products repository.ProductRepository
	Users    repository.UserRepository
	Rates    repository.ExchangeRateRepository
	Shipping repository.ShippingCountryRepository
	Settings repository.SettingsRepository
	Mailer   mailer.Mailer
	Metrics  *Metrics
	Logger   *zap.Logger
}

func NewOrderService(d OrderDeps) OrderService {
	return &orderService{
		orders:   d.Orders,
		products: d.Products,
		users:    d.Users,
		rates:    d.Rates,
		shipping: d.Shipping,
		settings: d.Settings,
		mail:     d.Mailer,
		metrics:  d.Metrics,
		log:      d.Logger,
		now:      time.Now,
	}
}

// mergeItems folds repeated products into one line, keeping first-seen order.
func mergeItems(items []CheckoutItem) []CheckoutItem {
	idx := make(map[string]int, len(items))
	out := make([]CheckoutItem, 0, len(items))
	for _, it := range items {
		if i, ok := idx[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}

func (s *orderService) Checkout(ctx context.Context, actor Actor, in CheckoutInput) (*model.Order, error) {
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	settings, err := settingsOrDefault(ctx, s.settings)
	if err != nil {
		return nil, err
	}
	if settings.MaintenanceMode {
		return nil, ErrMaintenance
	}

	items, subtotal, err := s.priceItems(ctx, mergeItems(in.Items))
	if err != nil {
		return nil, err
	}

	country, err := s.shipping.Get(ctx, strings.ToUpper(in.ShippingCountry))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load shipping country: %w", err)
	}
	if country == nil || !country.Enabled {
		return nil, fmt.Errorf("%w: shipping to %s is not available", ErrInvalidInput, in.ShippingCountry)
	}

	currency, rate, err := s.resolveRate(ctx, in.Currency, settings.BaseCurrency)
	if err != nil {
		return nil, err
	}

	referrer, err := s.resolveReferrer(ctx, actor, in.ReferralCode, in.ReferralCookie)
	if err != nil {
		return nil, err
	}
	var discountPct, commissionPct float64
	if referrer != nil {
		discountPct = referrer.ReferralDiscountPct
		commissionPct = referrer.ReferralCommissionPct
		if commissionPct == 0 {
			commissionPct = settings.DefaultCommissionPct
		}
	}
	b, err := pricing.Calculate(subtotal, discountPct, commissionPct)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	total := b.DiscountedCents + country.CostCents
	charged, err := pricing.ApplyRate(total, rate)
	if err != nil {
		return nil, fmt.Errorf("convert total: %w", err)
	}

	now := s.now().UTC()
	o := &model.Order{
		ID:                   uuid.NewString(),
		BuyerID:              actor.UserID,
		Items:                items,
		SubtotalCents:        b.SubtotalCents,
		DiscountCents:        b.DiscountCents,
		ShippingCents:        country.CostCents,
		TotalCents:           total,
		Currency:             currency,
		ExchangeRate:         rate,
		TotalInCurrencyCents: charged,
		CommissionCents:      b.CommissionCents,
		ShippingCountry:      country.Code,
		ShippingAddress:      strings.TrimSpace(in.ShippingAddress),
		Status:               model.OrderPending,
		Source:               model.SourceCheckout,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if referrer != nil {
		o.ReferralCode = referrer.ReferralCode
		o.ReferrerID = referrer.ID
	}

	created, err := s.orders.Create(ctx, o)
	if err != nil {
		if errors.Is(err, repository.ErrOutOfStock) {
			return nil, ErrOutOfStock
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.metrics.orderCreated(string(model.SourceCheckout))
	s.log.Info("order_created",
		logger.RequestField(ctx),
		zap.String("order_id", created.ID),
		zap.String("buyer_id", created.BuyerID),
		zap.Int64("total_cents", created.TotalCents),
		zap.String("currency", created.Currency),
		zap.String("referrer_id", created.ReferrerID),
	)

	s.notify(ctx, created.BuyerID, func(u *model.User) (mailer.Message, error) {
		return mailer.OrderConfirmation(u, created, settings.BaseCurrency)
	})
	return created, nil
}

// priceItems snapshots titles and prices and checks every product can be bought.
func (s *orderService) priceItems(ctx context.Context, reqs []CheckoutItem) ([]model.OrderItem, int64, error) {
	items := make([]model.OrderItem, 0, len(reqs))
	var subtotal int64
	for _, r := range reqs {
		p, err := s.products.FindByID(ctx, r.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, fmt.Errorf("%w: product %s", ErrNotFound, r.ProductID)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("load product: %w", err)
		}
		if !p.Purchasable() {
			return nil, 0, fmt.Errorf("%w: product %s is not for sale", ErrConflict, p.ID)
		}
		if p.Stock < r.Quantity {
			return nil, 0, fmt.Errorf("%w: product %s", ErrOutOfStock, p.ID)
		}
		items = append(items, model.OrderItem{
			ProductID:      p.ID,
			SellerID:       p.SellerID,
			Title:          p.Title,
			Quantity:       r.Quantity,
			UnitPriceCents: p.PriceCents,
		})
		subtotal += p.PriceCents * int64(r.Quantity)
	}
	return items, subtotal, nil
}

func (s *orderService) resolveRate(ctx context.Context, currency, base string) (string, float64, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == base {
		return base, 1, nil
	}
	r, err := s.rates.Get(ctx, currency)
	if errors.Is(err, repository.ErrNotFound) {
		return "", 0, fmt.Errorf("%w: unsupported currency %s", ErrInvalidInput, currency)
	}
	if err != nil {
		return "", 0, fmt.Errorf("load exchange rate: %w", err)
	}
	return r.Currency, r.Rate, nil
}

// resolveReferrer looks up the referring user. An explicit code must resolve
// to someone other than the buyer; a cookie code is dropped silently otherwise.
func (s *orderService) resolveReferrer(ctx context.Context, actor Actor, explicit, cookie string) (*model.User, error) {
	if strings.TrimSpace(explicit) != "" {
		code, err := pricing.ParseReferralCode(explicit)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		u, err := s.users.FindByReferralCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown referral code %s", ErrInvalidInput, code)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve referral code: %w", err)
		}
		if u.ID == actor.UserID {
			return nil, fmt.Errorf("%w: cannot use your own referral code", ErrInvalidInput)
		}
		return u, nil
	}

	code, err := pricing.ParseReferralCode(cookie)
	if err != nil || code == "" {
		return nil, nil
	}
	u, err := s.users.FindByReferralCode(ctx, code)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("referral_lookup_failed", zap.String("code", code), zap.Error(err))
		}
		return nil, nil
	}
	if u.ID == actor.UserID {
		return nil, nil
	}
	return u, nil
}

func (s *orderService) notify(ctx context.Context, userID string, build func(*model.User) (mailer.Message, error)) {
	if s.mail == nil {
		return
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.log.Warn("mail_recipient_lookup_failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	msg, err := build(u)
	if err == nil {
		err = s.mail.Send(ctx, msg)
	}
	if err != nil {
		s.log.Warn("mail_failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func canView(actor Actor, o *model.Order) bool {
	return actor.IsAdmin() || (actor.UserID != "" && (o.BuyerID == actor.UserID || o.HasSeller(actor.UserID)))
}

func (s *orderService) Get(ctx context.Context, actor Actor, id string) (*model.Order, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !canView(actor, o) {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *orderService) ListMine(ctx context.Context, actor Actor, limit, offset int) (*ListResult[model.Order], error) {
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	res, err := s.orders.ListByBuyer(ctx, actor.UserID, page(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Order]{Items: res.Items, Total: res.Total}, nil
}

func (s *orderService) ListForSeller(ctx context.Context, actor Actor, limit, offset int) (*ListResult[model.Order], error) {
	if actor.Role != model.RoleSeller && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	res, err := s.orders.ListBySeller(ctx, actor.UserID, page(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Order]{Items: res.Items, Total: res.Total}, nil
}

// mayTransition decides who can move an order to next. Buyers may only cancel
// pending orders; sellers with an item in the order drive fulfilment.
func mayTransition(actor Actor, o *model.Order, next model.OrderStatus) bool {
	switch {
	case actor.IsAdmin():
		return true
	case o.HasSeller(actor.UserID):
		return true
	case o.BuyerID == actor.UserID:
		return next == model.OrderCancelled && o.Status == model.OrderPending
	}
	return false
}

func (s *orderService) UpdateStatus(ctx context.Context, actor Actor, id string, next model.OrderStatus) (*model.Order, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}

	var from model.OrderStatus
	o, err := s.orders.Transition(ctx, id, func(o *model.Order) (bool, error) {
		if !canView(actor, o) {
			return false, repository.ErrNotFound
		}
		if !mayTransition(actor, o, next) {
			return false, ErrForbidden
		}
		if !o.Status.CanTransition(next) {
			return false, fmt.Errorf("%w: %s to %s", model.ErrInvalidTransition, o.Status, next)
		}
		from = o.Status
		o.Status = next
		o.UpdatedAt = s.now().UTC()
		return next == model.OrderCancelled && o.Source == model.SourceCheckout, nil
	})
	if err != nil {
		return nil, notFound(err)
	}

	s.log.Info("order_status_changed",
		zap.String("order_id", o.ID),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
		zap.String("actor_id", actor.UserID),
	)
	s.notify(ctx, o.BuyerID, func(u *model.User) (mailer.Message, error) {
		return mailer.OrderStatusChanged(u, o)
	})
	return o, nil
}
