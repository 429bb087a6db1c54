package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"artmarket/internal/http/middleware"
	"artmarket/internal/model"
	"artmarket/internal/pkg/jwthelper"
	"artmarket/internal/service"
	serviceMocks "artmarket/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("routes-test-key")

type routeFixture struct {
	app      *fiber.App
	products *serviceMocks.MockProductService
	orders   *serviceMocks.MockOrderService
	catalog  *serviceMocks.MockCatalogService
}

func newRouteFixture(t *testing.T) *routeFixture {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &routeFixture{
		app:      newApp(),
		products: new(serviceMocks.MockProductService),
		orders:   new(serviceMocks.MockOrderService),
		catalog:  new(serviceMocks.MockCatalogService),
	}
	RegisterRoutes(f.app, Deps{
		DB:          db,
		Auth:        new(serviceMocks.MockAuthService),
		Users:       new(serviceMocks.MockUserService),
		Products:    f.products,
		Auctions:    new(serviceMocks.MockAuctionService),
		Orders:      f.orders,
		Catalog:     f.catalog,
		Social:      new(serviceMocks.MockSocialService),
		SigningKey:  testKey,
		ReferralTTL: 24 * time.Hour,
	})
	return f
}

func bearer(t *testing.T, uid string, role model.Role) string {
	t.Helper()
	tok, err := jwthelper.GenerateToken(testKey, uid, string(role), time.Hour, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRoutes_AccessControl(t *testing.T) {
	f := newRouteFixture(t)
	f.catalog.On("Settings", mock.Anything).Return(&model.Settings{BaseCurrency: "EUR"}, nil)

	tests := []struct {
		name   string
		method string
		target string
		auth   string
		status int
	}{
		{"anonymous checkout", http.MethodPost, "/api/v1/orders", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/products", "Bearer nope", http.StatusUnauthorized},
		{"buyer creates product", http.MethodPost, "/api/v1/products", bearer(t, "b1", model.RoleBuyer), http.StatusForbidden},
		{"seller reads admin settings", http.MethodGet, "/api/v1/admin/settings", bearer(t, "s1", model.RoleSeller), http.StatusForbidden},
		{"admin reads settings", http.MethodGet, "/api/v1/admin/settings", bearer(t, "a1", model.RoleAdmin), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.auth != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.auth)
			}
			resp, err := f.app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRoutes_AuthenticatedActorReachesService(t *testing.T) {
	f := newRouteFixture(t)
	actor := service.Actor{UserID: "b1", Role: model.RoleBuyer}
	f.orders.On("ListMine", mock.Anything, actor, 10, 0).
		Return(&service.ListResult[model.Order]{Items: []model.Order{}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set(fiber.HeaderAuthorization, bearer(t, "b1", model.RoleBuyer))
	resp, err := f.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	f.orders.AssertExpectations(t)
}

func TestRoutes_ReferralLinkSetsCookie(t *testing.T) {
	f := newRouteFixture(t)
	f.products.On("List", mock.Anything, service.Actor{}, model.ProductFilter{}, 10, 0).
		Return(&service.ListResult[model.Product]{}, nil).Once()

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products?ref=annart", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == middleware.ReferralCookieName {
			found = true
			assert.Equal(t, "ANNART", c.Value)
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "referral cookie not set")
}
