package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"artmarket/internal/http/middleware"
	"artmarket/internal/model"
	"artmarket/internal/service"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	DB          *sql.DB
	Auth        service.AuthService
	Users       service.UserService
	Products    service.ProductService
	Auctions    service.AuctionService
	Orders      service.OrderService
	Catalog     service.CatalogService
	Social      service.SocialService
	SigningKey  []byte
	ReferralTTL time.Duration
}

// RegisterRoutes attaches the ops probes and the /api/v1 routes to app.
// Handlers stay thin: parse, call the service, map the error.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api/v1",
		middleware.Auth(d.SigningKey),
		middleware.ReferralCapture(d.ReferralTTL),
	)
	authed := middleware.RequireAuth()
	seller := middleware.RequireRole(string(model.RoleSeller), string(model.RoleAdmin))
	admin := middleware.RequireRole(string(model.RoleAdmin))

	api.Post("/auth/signup", Signup(d.Auth))
	api.Post("/auth/login", Login(d.Auth))

	api.Get("/me", authed, Me(d.Users))
	api.Put("/me", authed, UpdateMe(d.Users))
	api.Post("/me/avatar", authed, UploadAvatar(d.Users))
	api.Post("/me/referral-code", seller, CreateReferralCode(d.Users))
	api.Get("/sellers/:id", SellerProfile(d.Users))

	api.Get("/products", ListProducts(d.Products))
	api.Get("/products/:id", GetProduct(d.Products))
	api.Post("/products", seller, CreateProduct(d.Products))
	api.Put("/products/:id", seller, UpdateProduct(d.Products))
	api.Post("/products/:id/publish", seller, PublishProduct(d.Products))
	api.Post("/products/:id/archive", seller, ArchiveProduct(d.Products))
	api.Post("/products/:id/images", seller, UploadProductImage(d.Products))
	api.Delete("/products/:id/images/:index", seller, DeleteProductImage(d.Products))

	api.Get("/auctions", ListAuctions(d.Auctions))
	api.Get("/auctions/:id", GetAuction(d.Auctions))
	api.Get("/auctions/:id/state", AuctionState(d.Auctions))
	api.Get("/auctions/:id/bids", ListBids(d.Auctions))
	api.Post("/auctions", seller, CreateAuction(d.Auctions))
	api.Post("/auctions/:id/bids", authed, PlaceBid(d.Auctions))
	api.Post("/auctions/:id/cancel", seller, CancelAuction(d.Auctions))

	api.Post("/orders", authed, Checkout(d.Orders))
	api.Get("/orders", authed, ListMyOrders(d.Orders))
	api.Get("/orders/:id", authed, GetOrder(d.Orders))
	api.Patch("/orders/:id/status", authed, UpdateOrderStatus(d.Orders))
	api.Get("/seller/orders", seller, ListSellerOrders(d.Orders))

	api.Get("/banners", ListBanners(d.Catalog, true))
	api.Get("/shipping-countries", ListShipping(d.Catalog, true))
	api.Get("/exchange-rates", ListRates(d.Catalog))
	api.Get("/settings/public", PublicSettings(d.Catalog))

	adm := api.Group("/admin", admin)
	adm.Get("/settings", GetSettings(d.Catalog))
	adm.Put("/settings", UpdateSettings(d.Catalog))
	adm.Put("/exchange-rates/:currency", UpsertRate(d.Catalog))
	adm.Delete("/exchange-rates/:currency", DeleteRate(d.Catalog))
	adm.Get("/shipping-countries", ListShipping(d.Catalog, false))
	adm.Put("/shipping-countries/:code", UpsertShipping(d.Catalog))
	adm.Delete("/shipping-countries/:code", DeleteShipping(d.Catalog))
	adm.Get("/banners", ListBanners(d.Catalog, false))
	adm.Post("/banners", CreateBanner(d.Catalog))
	adm.Put("/banners/:id", UpdateBanner(d.Catalog))
	adm.Delete("/banners/:id", DeleteBanner(d.Catalog))
	adm.Post("/auctions/close-expired", CloseExpiredAuctions(d.Auctions))
	adm.Post("/products/:id/announce", AnnounceProduct(d.Social))
	adm.Get("/products/:id/social-posts", SocialHistory(d.Social))
}
