package main

import (
	"os"

	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Invoicing & AR/AP API
// @version         1.0
// @description     Multi-tenant invoicing backend: customers, vendors, products, invoices, bills, payments, dashboards, and risk/forecast analytics.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("no configs/.env file found")
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	log.Info("connected to PostgreSQL")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	billRepo := repository.NewBillRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	resolver := service.NewPartyResolver(customerRepo, vendorRepo)
	userService := service.NewUserService(userRepo, tenantRepo, txManager, log)
	customerService := service.NewCustomerService(customerRepo)
	vendorService := service.NewVendorService(vendorRepo)
	productService := service.NewProductService(productRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, paymentRepo, counterRepo, resolver, txManager, log)
	billService := service.NewBillService(billRepo, counterRepo, resolver, txManager, log)
	paymentService := service.NewPaymentService(paymentRepo, invoiceRepo, txManager, wsHub, log)
	riskService := service.NewRiskService(invoiceRepo, paymentRepo, customerRepo, log)
	forecastService := service.NewForecastService(invoiceRepo, paymentRepo, customerRepo, log)
	dashboardService := service.NewDashboardService(db)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(userService)
	customerHandler := handler.NewCustomerHandler(customerService)
	vendorHandler := handler.NewVendorHandler(vendorService)
	productHandler := handler.NewProductHandler(productService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	billHandler := handler.NewBillHandler(billService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	analyticsHandler := handler.NewAnalyticsHandler(riskService, forecastService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Auth routes sit outside the authenticated group
	authHandler.RegisterRoutes(router.Group(""))

	// Everything else requires a valid token carrying the tenant claim
	authenticated := router.Group("", middleware.RequireAuth())
	customerHandler.RegisterRoutes(authenticated)
	vendorHandler.RegisterRoutes(authenticated)
	productHandler.RegisterRoutes(authenticated)
	invoiceHandler.RegisterRoutes(authenticated)
	billHandler.RegisterRoutes(authenticated)
	paymentHandler.RegisterRoutes(authenticated)
	dashboardHandler.RegisterRoutes(authenticated)
	analyticsHandler.RegisterRoutes(authenticated)

	port := envOr("PORT", "8080")

	log.WithField("port", port).Info("server listening")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
