package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/keymint/storefront-system/docs"
	"github.com/keymint/storefront-system/internal/api/handler"
	"github.com/keymint/storefront-system/internal/api/middleware"
	"github.com/keymint/storefront-system/internal/core/domain"
	"github.com/keymint/storefront-system/internal/core/service"
	mongostore "github.com/keymint/storefront-system/internal/infrastructure/db/mongo"
	redisstore "github.com/keymint/storefront-system/internal/infrastructure/db/redis"
	"github.com/keymint/storefront-system/internal/infrastructure/issuer"
	"github.com/keymint/storefront-system/internal/pkg/config"
	"github.com/keymint/storefront-system/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client) *echo.Echo {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("storefront"))

	// --- Dependencies ---
	accountRepo := mongostore.NewAccountRepository(db)
	productRepo := mongostore.NewProductRepository(db)
	rememberStore := redisstore.NewRememberStore(rdb)
	purchaseDedup := redisstore.NewPurchaseDedup(rdb)
	keyIssuer := issuer.NewClient(issuer.Config{
		DefaultURL: cfg.Issuer.URL,
		Timeout:    cfg.Issuer.Timeout,
	})

	authService := service.NewAuthService(accountRepo, cfg.JWTSecret, 24*time.Hour)
	catalogService := service.NewCatalogService(productRepo, log)
	accountService := service.NewAccountService(accountRepo, log)
	purchaseService := service.NewPurchaseService(accountRepo, productRepo, keyIssuer, purchaseDedup, log)

	authHandler := handler.NewAuthHandler(authService, rememberStore)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	orderHandler := handler.NewOrderHandler(accountService)
	paymentHandler := handler.NewPaymentHandler(cfg.Payment.TopUpURL)
	adminProducts := handler.NewAdminProductHandler(catalogService)
	adminAccounts := handler.NewAdminAccountHandler(accountService)

	authMW := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/remembered", authHandler.Remembered)

	// --- Storefront routes (any authenticated account) ---
	store := e.Group("/v1", authMW, middleware.RBAC(domain.RoleAdmin, domain.RoleReseller))
	store.GET("/products", catalogHandler.List)
	store.GET("/products/:name", catalogHandler.Get)
	store.POST("/purchases", purchaseHandler.Create)
	store.GET("/orders", orderHandler.List)
	store.GET("/payment/topup", paymentHandler.TopUp)

	// --- Admin routes ---
	admin := e.Group("/v1/admin", authMW, middleware.RBAC(domain.RoleAdmin))
	admin.POST("/products", adminProducts.Create)
	admin.PUT("/products/:name", adminProducts.Update)
	admin.DELETE("/products/:name", adminProducts.Delete)
	admin.PUT("/products/:name/stock", adminProducts.UpdateStock)
	admin.GET("/accounts", adminAccounts.List)
	admin.GET("/accounts/:username", adminAccounts.Get)
	admin.PUT("/accounts/:username/balance", adminAccounts.SetBalance)
	admin.PUT("/accounts/:username/role", adminAccounts.SetRole)
	admin.DELETE("/accounts/:username", adminAccounts.Delete)

	// --- Health probes, metrics, API docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
