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
	"github.com/sirupsen/logrus"
	"github.com/transitline/bus-booking-backend/internal/config"
	"github.com/transitline/bus-booking-backend/internal/database"
	"github.com/transitline/bus-booking-backend/internal/handlers"
	"github.com/transitline/bus-booking-backend/internal/middleware"
	"github.com/transitline/bus-booking-backend/internal/models"
	"github.com/transitline/bus-booking-backend/internal/services"
	"github.com/transitline/bus-booking-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting TransitLine Bus Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	operatorKeyRepo := database.NewOperatorKeyRepository(db)
	seatRepo := database.NewSeatRepository(db)
	recurringTripRepo := database.NewRecurringTripRepository(db)
	tripRepo := database.NewTripRepository(db)

	// Transactional repositories work on the raw sqlx handle.
	busRepo := database.NewBusRepository(db.DB)
	bookingRepo := database.NewBookingRepository(db.DB)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	authService := services.NewAuthService(userRepo, operatorKeyRepo, jwtService, cfg.Security.BcryptCost)
	layoutService := services.NewSeatLayoutService()
	availabilityService := services.NewAvailabilityService(busRepo, seatRepo, bookingRepo, layoutService)
	bookingService := services.NewBookingService(bookingRepo, busRepo, seatRepo, recurringTripRepo)
	searchService := services.NewSearchService(busRepo, recurringTripRepo, availabilityService)
	tripGeneratorService := services.NewTripGeneratorService(recurringTripRepo, tripRepo, cfg.Trips.GenerateDaysAhead, logger)

	cronService := services.NewCronService(tripGeneratorService, cfg.Trips.GenerateCronSpec, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(operatorKeyRepo, cronService)
	busHandler := handlers.NewBusHandler(busRepo, seatRepo, layoutService, availabilityService)
	recurringTripHandler := handlers.NewRecurringTripHandler(recurringTripRepo, busRepo, tripGeneratorService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	searchHandler := handlers.NewSearchHandler(searchService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.GET("/me", authHandler.Me)
			}
		}

		// Public search
		v1.GET("/buses/search", searchHandler.Search)

		// Bus routes
		buses := v1.Group("/buses")
		{
			// Seat charts are public so travelers can pick seats before
			// logging in.
			buses.GET("/:id", busHandler.Get)

			operator := buses.Group("")
			operator.Use(middleware.AuthMiddleware(jwtService))
			operator.Use(middleware.RequireRole(models.RoleOperator, models.RoleAdmin))
			{
				operator.GET("", busHandler.ListMine)
				operator.POST("", busHandler.Create)
				operator.PUT("/:id", busHandler.Update)
				operator.DELETE("/:id", busHandler.Delete)
			}
		}

		// Recurring trip routes (operators and admins)
		recurringTrips := v1.Group("/recurring-trips")
		recurringTrips.Use(middleware.AuthMiddleware(jwtService))
		recurringTrips.Use(middleware.RequireRole(models.RoleOperator, models.RoleAdmin))
		{
			recurringTrips.POST("", recurringTripHandler.Create)
			recurringTrips.GET("", recurringTripHandler.ListMine)
			recurringTrips.PUT("/:id", recurringTripHandler.Update)
			recurringTrips.DELETE("/:id", recurringTripHandler.Delete)
		}

		// Booking routes
		bookings := v1.Group("/bookings")
		{
			// Guests may book; a valid token attributes the booking.
			bookings.POST("", middleware.OptionalAuthMiddleware(jwtService), bookingHandler.Create)

			authed := bookings.Group("")
			authed.Use(middleware.AuthMiddleware(jwtService))
			{
				authed.GET("", bookingHandler.ListMine)
				authed.GET("/:id", bookingHandler.Get)
				authed.POST("/:id/cancel", bookingHandler.Cancel)
			}
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService))
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/operator-keys", adminHandler.GenerateOperatorKey)
			admin.POST("/trips/generate", adminHandler.TriggerTripGeneration)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
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
