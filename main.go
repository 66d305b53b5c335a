package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omeshapasan2/e-commerce-platform/cache"
	"github.com/omeshapasan2/e-commerce-platform/database"
	"github.com/omeshapasan2/e-commerce-platform/handlers"
	"github.com/omeshapasan2/e-commerce-platform/kafka"
	"github.com/omeshapasan2/e-commerce-platform/middleware"
	"github.com/omeshapasan2/e-commerce-platform/payments"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// .env is for local development; in deployment the environment is set
	// by the platform.
	_ = godotenv.Load()

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	client, db, err := database.InitDB(logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	// Initialize Redis product cache. The cache is an optimization; the API
	// runs uncached if Redis is unavailable.
	var productCache *cache.ProductCache
	if rdb, err := cache.InitRedis(logger); err != nil {
		logger.Warn("Redis unavailable, product cache disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		productCache = cache.NewProductCache(rdb, logger)
	}

	// Initialize Kafka producer
	producer, err := kafka.InitProducer(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	// Initialize OpenTelemetry
	shutdown, err := middleware.InitTracing("ecommerce-api")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdown()

	// Initialize Stripe client
	stripeClient, err := payments.NewClient(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Stripe client", zap.Error(err))
	}

	orderStore := database.NewOrderStore(db, logger)
	productStore := database.NewProductStore(db, productCache, logger)
	catalogStore := database.NewCatalogStore(db, logger)
	reviewStore := database.NewReviewStore(db, logger)

	orderHandler := handlers.NewOrderHandler(orderStore, productStore, producer, logger)
	paymentHandler := handlers.NewPaymentHandler(orderStore, productStore, stripeClient, logger)
	webhookHandler := handlers.NewWebhookHandler(orderStore, stripeClient, producer, logger)
	productHandler := handlers.NewProductHandler(productStore, catalogStore, reviewStore, stripeClient, logger)
	reviewHandler := handlers.NewReviewHandler(reviewStore, productStore, logger)

	// Setup REST API with Gin
	router := gin.New()
	router.Use(gin.Recovery())
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware("ecommerce-api"))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	// Webhook endpoint authenticates by signature, not bearer token
	router.POST("/api/stripe/webhook", webhookHandler.HandleWebhook)

	// Public catalog endpoints
	router.GET("/api/products", productHandler.List)
	router.GET("/api/products/:id", productHandler.Get)
	router.GET("/api/categories", productHandler.Categories)
	router.GET("/api/colors", productHandler.Colors)
	router.GET("/api/reviews/product/:productId", reviewHandler.ListByProduct)

	// Authenticated endpoints
	api := router.Group("/api", middleware.Authenticate(logger))
	{
		api.POST("/orders", orderHandler.CreateOrder)
		api.GET("/orders/me", orderHandler.ListMyOrders)
		api.GET("/orders/:id", orderHandler.GetOrder)

		api.POST("/payments/create-checkout-session", paymentHandler.CreateCheckoutSession)
		api.GET("/payments/session-status", paymentHandler.SessionStatus)

		api.POST("/reviews", reviewHandler.CreateOrUpdate)
		api.PUT("/reviews/:id", reviewHandler.Update)
		api.DELETE("/reviews/:id", reviewHandler.Delete)
	}

	// Admin endpoints
	admin := router.Group("/api", middleware.Authenticate(logger), middleware.RequireAdmin())
	{
		admin.GET("/orders", orderHandler.ListAllOrders)
		admin.GET("/orders/daily-sales", orderHandler.DailySales)

		admin.POST("/products", productHandler.Create)
		admin.PUT("/products/:id", productHandler.Update)
		admin.DELETE("/products/:id", productHandler.Delete)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	logger.Info("E-commerce API started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
