package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"artmarket/internal/model"
	"artmarket/internal/repository"
	repoMocks "artmarket/internal/repository/mocks"
)

type orderFixture struct {
	orders   *repoMocks.MockOrderRepository
	products *repoMocks.MockProductRepository
	users    *repoMocks.MockUserRepository
	rates    *repoMocks.MockExchangeRateRepository
	shipping *repoMocks.MockShippingCountryRepository
	settings *repoMocks.MockSettingsRepository
	mail     *recordingMailer
	metrics  *Metrics
	svc      *orderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	f := &orderFixture{
		orders:   new(repoMocks.MockOrderRepository),
		products: new(repoMocks.MockProductRepository),
		users:    new(repoMocks.MockUserRepository),
		rates:    new(repoMocks.MockExchangeRateRepository),
		shipping: new(repoMocks.MockShippingCountryRepository),
		settings: new(repoMocks.MockSettingsRepository),
		mail:     &recordingMailer{},
		metrics:  m,
	}
	f.svc = NewOrderService(OrderDeps{
		Orders:   f.orders,
		Products: f.products,
		Users:    f.users,
		Rates:    f.rates,
		Shipping: f.shipping,
		Settings: f.settings,
		Mailer:   f.mail,
		Metrics:  m,
		Logger:   zap.NewNop(),
	}).(*orderService)
	f.svc.now = func() time.Time { return testNow }
	return f
}

// stockCatalog wires two purchasable products, France shipping and a USD rate.
func (f *orderFixture) stockCatalog(ctx context.Context) {
	f.settings.On("Get", ctx).Return(&model.Settings{BaseCurrency: "EUR", DefaultCommissionPct: 5}, nil)
	f.products.On("FindByID", ctx, "p1").Return(&model.Product{ID: "p1", SellerID: "seller-1", Title: "Nocturne", PriceCents: 10000, Stock: 2, Status: model.ProductPublished, SaleType: model.SaleFixed}, nil).Maybe()
	f.products.On("FindByID", ctx, "p2").Return(&model.Product{ID: "p2", SellerID: "seller-2", Title: "Dawn", PriceCents: 5000, Stock: 1, Status: model.ProductPublished, SaleType: model.SaleFixed}, nil).Maybe()
	f.shipping.On("Get", ctx, "FR").Return(&model.ShippingCountry{Code: "FR", Name: "France", CostCents: 1500, Enabled: true}, nil).Maybe()
	f.rates.On("Get", ctx, "USD").Return(&model.ExchangeRate{Currency: "USD", Rate: 1.1}, nil).Maybe()
}

func checkoutInput() CheckoutInput {
	return CheckoutInput{
		Items: []CheckoutItem{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 1},
			{ProductID: "p1", Quantity: 1},
		},
		ShippingCountry: "fr",
		ShippingAddress: " 1 rue de la Paix, Paris ",
		Currency:        "usd",
	}
}

func TestOrderService_Checkout_ReferralCookie(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.stockCatalog(ctx)
	f.users.On("FindByReferralCode", ctx, "ADA-1").Return(&model.User{ID: "seller-9", ReferralCode: "ADA-1", ReferralDiscountPct: 10}, nil)
	f.users.On("FindByID", ctx, "buyer-1").Return(&model.User{ID: "buyer-1", Email: "b@example.com", Name: "Bo"}, nil)

	var saved *model.Order
	f.orders.On("Create", ctx, mock.MatchedBy(func(o *model.Order) bool { saved = o; return true })).
		Return(&model.Order{ID: "o1", BuyerID: "buyer-1", Currency: "USD"}, nil)

	in := checkoutInput()
	in.ReferralCookie = "ada-1"
	o, err := f.svc.Checkout(ctx, buyer, in)
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)

	require.NotNil(t, saved)
	require.Len(t, saved.Items, 2)
	assert.Equal(t, 2, saved.Items[0].Quantity)
	assert.Equal(t, "seller-2", saved.Items[1].SellerID)
	assert.Equal(t, int64(25000), saved.SubtotalCents)
	assert.Equal(t, int64(2500), saved.DiscountCents)
	assert.Equal(t, int64(1500), saved.ShippingCents)
	assert.Equal(t, int64(24000), saved.TotalCents)
	assert.Equal(t, int64(1125), saved.CommissionCents, "default commission applies when the referrer sets none")
	assert.Equal(t, "USD", saved.Currency)
	assert.Equal(t, int64(26400), saved.TotalInCurrencyCents)
	assert.Equal(t, "seller-9", saved.ReferrerID)
	assert.Equal(t, "ADA-1", saved.ReferralCode)
	assert.Equal(t, "1 rue de la Paix, Paris", saved.ShippingAddress)
	assert.Equal(t, model.SourceCheckout, saved.Source)
	assert.Equal(t, model.OrderPending, saved.Status)

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "b@example.com", f.mail.sent[0].To)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.orders.WithLabelValues("checkout")))
}

func TestOrderService_Checkout_MailFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.stockCatalog(ctx)
	f.mail.err = errors.New("smtp down")
	f.users.On("FindByID", ctx, "buyer-1").Return(&model.User{ID: "buyer-1"}, nil)
	f.orders.On("Create", ctx, mock.Anything).Return(&model.Order{ID: "o1", BuyerID: "buyer-1"}, nil)

	in := checkoutInput()
	in.Currency = ""
	_, err := f.svc.Checkout(ctx, buyer, in)
	assert.NoError(t, err)
}

func TestOrderService_Checkout_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(in *CheckoutInput)
		setup   func(f *orderFixture)
		wantErr error
	}{
		{
			name:    "no items",
			mutate:  func(in *CheckoutInput) { in.Items = nil },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "zero quantity",
			mutate:  func(in *CheckoutInput) { in.Items[0].Quantity = 0 },
			wantErr: ErrInvalidInput,
		},
		{
			name:   "unknown explicit referral code",
			mutate: func(in *CheckoutInput) { in.ReferralCode = "NOPE-1" },
			setup: func(f *orderFixture) {
				f.users.On("FindByReferralCode", ctx, "NOPE-1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:   "own explicit referral code",
			mutate: func(in *CheckoutInput) { in.ReferralCode = "MINE" },
			setup: func(f *orderFixture) {
				f.users.On("FindByReferralCode", ctx, "MINE").Return(&model.User{ID: "buyer-1"}, nil)
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:   "shipping disabled",
			mutate: func(in *CheckoutInput) { in.ShippingCountry = "DE" },
			setup: func(f *orderFixture) {
				f.shipping.On("Get", ctx, "DE").Return(&model.ShippingCountry{Code: "DE", Enabled: false}, nil)
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:   "shipping unknown",
			mutate: func(in *CheckoutInput) { in.ShippingCountry = "ZZ" },
			setup: func(f *orderFixture) {
				f.shipping.On("Get", ctx, "ZZ").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:   "unsupported currency",
			mutate: func(in *CheckoutInput) { in.Currency = "JPY" },
			setup: func(f *orderFixture) {
				f.rates.On("Get", ctx, "JPY").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:   "more than in stock",
			mutate: func(in *CheckoutInput) { in.Items = []CheckoutItem{{ProductID: "p2", Quantity: 3}} },
			wantErr: ErrOutOfStock,
		},
		{
			name:   "stock taken concurrently",
			mutate: func(in *CheckoutInput) {},
			setup: func(f *orderFixture) {
				f.orders.On("Create", ctx, mock.Anything).Return(nil, repository.ErrOutOfStock)
			},
			wantErr: ErrOutOfStock,
		},
		{
			name:   "auction listing",
			mutate: func(in *CheckoutInput) { in.Items = []CheckoutItem{{ProductID: "p3", Quantity: 1}} },
			setup: func(f *orderFixture) {
				f.products.On("FindByID", ctx, "p3").Return(&model.Product{ID: "p3", Stock: 1, Status: model.ProductPublished, SaleType: model.SaleAuction}, nil)
			},
			wantErr: ErrConflict,
		},
		{
			name:   "missing product",
			mutate: func(in *CheckoutInput) { in.Items = []CheckoutItem{{ProductID: "p9", Quantity: 1}} },
			setup: func(f *orderFixture) {
				f.products.On("FindByID", ctx, "p9").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			f.stockCatalog(ctx)
			in := checkoutInput()
			tt.mutate(&in)

			o, err := f.svc.Checkout(ctx, buyer, in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, o)
			assert.Empty(t, f.mail.sent)
		})
	}
}

func TestOrderService_Checkout_Maintenance(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.settings.On("Get", ctx).Return(&model.Settings{MaintenanceMode: true}, nil)

	_, err := f.svc.Checkout(ctx, buyer, checkoutInput())
	assert.ErrorIs(t, err, ErrMaintenance)
}

func TestOrderService_Get(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.orders.On("FindByID", ctx, "o1").Return(&model.Order{ID: "o1", BuyerID: "buyer-1", Items: []model.OrderItem{{SellerID: "seller-1"}}}, nil)

	for _, a := range []Actor{buyer, seller, admin} {
		_, err := f.svc.Get(ctx, a, "o1")
		assert.NoError(t, err, a.UserID)
	}
	_, err := f.svc.Get(ctx, Actor{UserID: "stranger", Role: model.RoleBuyer}, "o1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_Lists(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.orders.On("ListByBuyer", ctx, "buyer-1", repository.PageQuery{Limit: 100, Offset: 20}).
		Return(&repository.PageResult[model.Order]{Items: []model.Order{{ID: "o1"}}, Total: 21}, nil)
	f.orders.On("ListBySeller", ctx, "seller-1", repository.PageQuery{Limit: 10}).
		Return(&repository.PageResult[model.Order]{Total: 0}, nil)

	mine, err := f.svc.ListMine(ctx, buyer, 500, 20)
	require.NoError(t, err)
	assert.Equal(t, 21, mine.Total)

	_, err = f.svc.ListForSeller(ctx, seller, 0, 0)
	require.NoError(t, err)

	_, err = f.svc.ListForSeller(ctx, buyer, 0, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	base := func(status model.OrderStatus, source model.OrderSource) *model.Order {
		return &model.Order{
			ID:      "o1",
			BuyerID: "buyer-1",
			Items:   []model.OrderItem{{ProductID: "p1", SellerID: "seller-1", Quantity: 1}},
			Status:  status,
			Source:  source,
		}
	}

	tests := []struct {
		name        string
		actor       Actor
		order       *model.Order
		next        model.OrderStatus
		wantErr     error
		wantRestock bool
	}{
		{"buyer cancels pending checkout", buyer, base(model.OrderPending, model.SourceCheckout), model.OrderCancelled, nil, true},
		{"buyer cannot cancel paid", buyer, base(model.OrderPaid, model.SourceCheckout), model.OrderCancelled, ErrForbidden, false},
		{"buyer cannot mark paid", buyer, base(model.OrderPending, model.SourceCheckout), model.OrderPaid, ErrForbidden, false},
		{"seller ships", seller, base(model.OrderPaid, model.SourceCheckout), model.OrderShipped, nil, false},
		{"seller cannot skip to delivered", seller, base(model.OrderPaid, model.SourceCheckout), model.OrderDelivered, model.ErrInvalidTransition, false},
		{"admin cancels auction order without restock", admin, base(model.OrderPaid, model.SourceAuction), model.OrderCancelled, nil, false},
		{"delivered is final", admin, base(model.OrderDelivered, model.SourceCheckout), model.OrderCancelled, model.ErrInvalidTransition, false},
		{"strangers see nothing", Actor{UserID: "x", Role: model.RoleSeller}, base(model.OrderPaid, model.SourceCheckout), model.OrderShipped, ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t)
			f.orders.On("Lock", "o1").Return(tt.order, nil)
			f.users.On("FindByID", ctx, "buyer-1").Return(&model.User{ID: "buyer-1", Email: "b@example.com"}, nil).Maybe()

			o, err := f.svc.UpdateStatus(ctx, tt.actor, "o1", tt.next)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.mail.sent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.next, o.Status)
			assert.Equal(t, testNow, o.UpdatedAt)
			assert.Equal(t, tt.wantRestock, f.orders.Restocked)
			require.Len(t, f.mail.sent, 1)
			assert.Contains(t, f.mail.sent[0].Subject, string(tt.next))
		})
	}
}
