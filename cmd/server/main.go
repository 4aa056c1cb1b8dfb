package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	orderapp "github.com/openshop/backend/internal/application/order"
	promoapp "github.com/openshop/backend/internal/application/promotion"
	"github.com/openshop/backend/internal/domain/inventory"
	"github.com/openshop/backend/internal/domain/payment"
	"github.com/openshop/backend/internal/domain/promotion"
	"github.com/openshop/backend/internal/infrastructure/cache"
	"github.com/openshop/backend/internal/infrastructure/config"
	"github.com/openshop/backend/internal/infrastructure/event"
	"github.com/openshop/backend/internal/infrastructure/logger"
	infrapayment "github.com/openshop/backend/internal/infrastructure/payment"
	"github.com/openshop/backend/internal/infrastructure/persistence"
	"github.com/openshop/backend/internal/interfaces/http/handler"
	"github.com/openshop/backend/internal/interfaces/http/middleware"
	"github.com/openshop/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Name:       cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting OpenShop Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	skuWarehouseRepo := persistence.NewGormSkuWarehouseRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	couponRepo := persistence.NewGormCouponRepository(db.DB)
	promotionRepo := persistence.NewGormPromotionRepository(db.DB)
	paymentRecorder := persistence.NewGormPaymentRecorder(db.DB)

	// Inventory resolver with striped per-record locking
	resolver := inventory.NewResolver(skuWarehouseRepo)

	// Payment gateways
	processors := payment.NewProcessorFactory(
		payment.WithRecorder(paymentRecorder),
		payment.WithLogger(log),
	)
	if err := registerGateways(processors, &cfg.Payment, log); err != nil {
		log.Fatal("Failed to register payment gateways", zap.Error(err))
	}

	// Coupon cache, Redis with in-memory fallback
	cacheFactory := cache.NewCouponCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithTTL(cfg.Coupon.TTL),
		cache.WithInMemoryFallback(true),
	)
	var couponCache cache.CouponCache
	if cfg.Coupon.UseRedis {
		couponCache, err = cacheFactory.CreateCache()
		if err != nil {
			log.Fatal("Failed to create coupon cache", zap.Error(err))
		}
	} else {
		couponCache = cacheFactory.CreateInMemoryCache()
	}
	defer func() {
		_ = couponCache.Close()
	}()

	// Promotion engine
	couponResolver := promoapp.NewCouponResolver(couponRepo, couponCache, log)
	strategy := promotion.NewBestValueStrategy(couponResolver, log)
	bucketProvider := promoapp.NewRepositoryBucketProvider(promotionRepo, log)

	// Order state machine and application service
	stateMachine := orderapp.NewOrderStateMachine(warehouseRepo, resolver, processors, log)
	orderService := orderapp.NewOrderService(orderRepo, stateMachine, strategy, bucketProvider, log)

	// Domain event bus
	eventBus := event.NewInMemoryEventBus(log)
	orderService.SetEventPublisher(eventBus)

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS())

	orderHandler := handler.NewOrderHandler(orderService)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(orderHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// registerGateways builds one gateway per configured label and registers
// it for every configured shop. Online labels talk to the REST gateway;
// offline labels settle against invoices.
func registerGateways(factory *payment.ProcessorFactory, cfg *config.PaymentConfig, log *zap.Logger) error {
	gateways := make([]payment.Gateway, 0, len(cfg.OnlineLabels)+len(cfg.OfflineLabels)+len(cfg.CaptureLabels))

	for _, label := range cfg.OnlineLabels {
		gw, err := infrapayment.NewRestGateway(&infrapayment.RestGatewayConfig{
			Label:   label,
			BaseURL: cfg.GatewayBaseURL,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return err
		}
		gateways = append(gateways, gw)
	}
	for _, label := range cfg.OfflineLabels {
		gw, err := infrapayment.NewInvoiceGateway(label, payment.GatewayModeOfflineManual)
		if err != nil {
			return err
		}
		gateways = append(gateways, gw)
	}
	for _, label := range cfg.CaptureLabels {
		gw, err := infrapayment.NewInvoiceGateway(label, payment.GatewayModeOfflineAutoCapture)
		if err != nil {
			return err
		}
		gateways = append(gateways, gw)
	}

	for _, shopCode := range cfg.Shops {
		for _, gw := range gateways {
			factory.RegisterGateway(shopCode, gw)
		}
		log.Info("Payment gateways registered",
			zap.String("shop", shopCode),
			zap.Int("count", len(gateways)),
		)
	}
	return nil
}
