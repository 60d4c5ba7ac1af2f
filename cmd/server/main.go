package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/bashabari/rental-backend/internal/config"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/handlers"
	"github.com/bashabari/rental-backend/internal/middleware"
	"github.com/bashabari/rental-backend/internal/services"
	"github.com/bashabari/rental-backend/pkg/jwt"
	"github.com/bashabari/rental-backend/pkg/sms"
	"github.com/bashabari/rental-backend/pkg/storage"
	"github.com/bashabari/rental-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting BashaBari Rental Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := database.Migrate(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations applied")

	store, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.MaxImageBytes)
	if err != nil {
		logger.Fatalf("Failed to set up upload storage: %v", err)
	}

	// SMS transport: console in development, HTTP provider in production
	var smsGateway sms.Gateway
	if cfg.SMS.Mode == "production" {
		smsGateway = sms.NewHTTPGateway(sms.HTTPConfig{
			APIURL:   cfg.SMS.APIURL,
			APIKey:   cfg.SMS.APIKey,
			SenderID: cfg.SMS.SenderID,
		})
		logger.Info("SMS gateway: HTTP provider")
	} else {
		smsGateway = sms.NewConsoleGateway(logger)
		logger.Info("SMS gateway: console mode")
	}

	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	phoneValidator := validator.NewPhoneValidator()

	userRepository := database.NewUserRepository(db)
	listingRepository := database.NewListingRepository(db)
	areaRepository := database.NewAreaRepository(db)
	appointmentRepository := database.NewAppointmentRepository(db)
	agreementRepository := database.NewAgreementRepository(db)
	paymentRepository := database.NewPaymentRepository(db)
	reviewRepository := database.NewReviewRepository(db)

	otpService := services.NewOTPService(db, smsGateway, logger)
	auditService := services.NewAuditService(db, logger)
	authService := services.NewAuthService(userRepository, jwtService, phoneValidator, otpService, cfg.Security.BcryptCost, logger)
	searchService := services.NewSearchService(listingRepository)
	agreementService := services.NewAgreementService(agreementRepository, listingRepository, logger)

	authHandler := handlers.NewAuthHandler(authService, otpService, auditService, userRepository, logger)
	listingHandler := handlers.NewListingHandler(listingRepository, areaRepository, reviewRepository, searchService, store, cfg.Upload, logger)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentRepository, listingRepository, logger)
	agreementHandler := handlers.NewAgreementHandler(agreementService, logger)
	rentHandler := handlers.NewRentHandler(paymentRepository, listingRepository, logger)
	reviewHandler := handlers.NewReviewHandler(reviewRepository, listingRepository, logger)
	areaHandler := handlers.NewAreaHandler(areaRepository, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthCheckHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/media/listing_images", cfg.Upload.Dir)

	// Public routes
	router.GET("/", listingHandler.Search)
	router.GET("/listings/:id", listingHandler.GetByID)
	router.GET("/listings/:id/reviews", reviewHandler.List)
	router.GET("/areas/", areaHandler.List)
	router.GET("/areas/:id/rent-history", areaHandler.RentHistory)

	router.POST("/register/", authHandler.Register)
	router.POST("/login/", authHandler.Login)
	router.POST("/token/refresh/", authHandler.Refresh)

	// Authenticated routes
	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware(jwtService))
	{
		auth.POST("/logout/", authHandler.Logout)
		auth.GET("/me/", authHandler.Me)
		auth.GET("/verify/", authHandler.VerifyStatus)
		auth.POST("/verify/", authHandler.VerifyOTP)
		auth.POST("/resend-otp/", authHandler.ResendOTP)

		auth.GET("/my-listings/", listingHandler.MyListings)

		auth.POST("/appointment/book/:listing_id/", appointmentHandler.Book)
		auth.GET("/appointment/my/", appointmentHandler.Mine)
		auth.GET("/appointment/manage/", appointmentHandler.Manage)
		auth.PUT("/appointment/:id/status", appointmentHandler.UpdateStatus)

		auth.POST("/agreement/sign/:listing_id/", agreementHandler.Sign)
		auth.GET("/agreement/:listing_id/", agreementHandler.Get)
		auth.GET("/agreement/view/:listing_id/", agreementHandler.View)

		auth.POST("/rent/pay/:listing_id/", rentHandler.Pay)
		auth.GET("/rent/my-history/", rentHandler.MyHistory)
		auth.GET("/rent/manage/", rentHandler.Manage)
		auth.GET("/rent/manage/export", rentHandler.Export)

		auth.POST("/listings/:id/reviews", reviewHandler.Create)
	}

	// Listing creation requires a verified phone number
	verified := router.Group("/")
	verified.Use(middleware.AuthMiddleware(jwtService))
	verified.Use(middleware.RequirePhoneVerified(userRepository, logger))
	{
		verified.POST("/create-listing/", listingHandler.Create)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
