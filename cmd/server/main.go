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
	"github.com/mssola/user_agent"
	"github.com/nepstays/stays-backend/internal/config"
	"github.com/nepstays/stays-backend/internal/database"
	"github.com/nepstays/stays-backend/internal/handlers"
	"github.com/nepstays/stays-backend/internal/middleware"
	"github.com/nepstays/stays-backend/internal/services"
	"github.com/nepstays/stays-backend/pkg/jwt"
	"github.com/nepstays/stays-backend/pkg/upload"
	"github.com/sirupsen/logrus"
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

	logger.Info("Starting NepStays Backend")
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

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	destinationRepo := database.NewDestinationRepository(db)
	propertyRepo := database.NewPropertyRepository(db)
	experienceRepo := database.NewExperienceRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	bookingService := services.NewBookingService(bookingRepo, propertyRepo)
	esewaService := services.NewESewaService(&cfg.Payment, logger)

	uploader := upload.NewCloudinaryUploader(upload.Config{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
		Folder:    cfg.Cloudinary.Folder,
	}, logger)
	if !uploader.IsConfigured() {
		logger.Warn("Cloudinary credentials missing, image uploads will fail")
	}
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtService, uploader, cfg.Security.BcryptCost, logger)
	destinationHandler := handlers.NewDestinationHandler(destinationRepo, propertyRepo, uploader, logger)
	propertyHandler := handlers.NewPropertyHandler(propertyRepo, destinationRepo, uploader, logger)
	experienceHandler := handlers.NewExperienceHandler(experienceRepo, logger)
	bookingHandler := handlers.NewBookingHandler(bookingRepo, propertyRepo, bookingService, logger)
	paymentHandler := handlers.NewPaymentHandler(
		paymentRepo, bookingRepo, propertyRepo, esewaService, cfg.Server.FrontendURL, logger,
	)
	adminHandler := handlers.NewAdminHandler(userRepo, destinationRepo, propertyRepo, experienceRepo, bookingRepo)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
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

	api := router.Group("/api")
	{
		// Authentication and profile routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)

			authProtected := auth.Group("")
			authProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				authProtected.GET("/me", authHandler.GetProfile)
				authProtected.PUT("/profile", authHandler.UpdateProfile)
				authProtected.PUT("/password", authHandler.UpdatePassword)
				authProtected.PUT("/profile-image", authHandler.UpdateProfileImage)
			}
		}

		// Destination catalog, public reads and admin writes
		destinations := api.Group("/destinations")
		{
			destinations.GET("", destinationHandler.List)
			destinations.GET("/popular", destinationHandler.ListPopular)
			destinations.GET("/:id", destinationHandler.Get)
			destinations.GET("/:id/properties", destinationHandler.ListProperties)

			destinationsAdmin := destinations.Group("")
			destinationsAdmin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireAdmin(userRepo))
			{
				destinationsAdmin.POST("", destinationHandler.Create)
				destinationsAdmin.PUT("/:id", destinationHandler.Update)
				destinationsAdmin.DELETE("/:id", destinationHandler.Delete)
			}
		}

		// Property catalog, public reads and authenticated writes
		properties := api.Group("/properties")
		{
			properties.GET("", propertyHandler.List)
			properties.GET("/featured", propertyHandler.ListFeatured)
			properties.GET("/:id", propertyHandler.Get)

			propertiesProtected := properties.Group("")
			propertiesProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				propertiesProtected.POST("", propertyHandler.Create)
				propertiesProtected.PUT("/:id", propertyHandler.Update)
				propertiesProtected.DELETE("/:id", propertyHandler.Delete)
			}
		}

		// Experience catalog, public reads and authenticated writes
		experiences := api.Group("/experiences")
		{
			experiences.GET("", experienceHandler.List)
			experiences.GET("/featured", experienceHandler.ListFeatured)
			experiences.GET("/:id", experienceHandler.Get)

			experiencesProtected := experiences.Group("")
			experiencesProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				experiencesProtected.POST("", experienceHandler.Create)
				experiencesProtected.PUT("/:id", experienceHandler.Update)
				experiencesProtected.DELETE("/:id", experienceHandler.Delete)
			}
		}

		// Booking routes (all protected)
		bookings := api.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.POST("/check-availability", bookingHandler.CheckAvailability)
			bookings.POST("/calculate-price", bookingHandler.CalculatePrice)
			bookings.POST("", bookingHandler.Create)
			bookings.GET("", bookingHandler.List)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.PUT("/:id", bookingHandler.UpdateStatus)
			bookings.DELETE("/:id", bookingHandler.Cancel)
		}

		// Payment routes. The verify callback must stay public because the
		// gateway redirects the user's browser to it without our token.
		payments := api.Group("/payments")
		{
			payments.GET("/verify", paymentHandler.Verify)

			paymentsProtected := payments.Group("")
			paymentsProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				paymentsProtected.POST("/initiate", paymentHandler.Initiate)
				paymentsProtected.GET("/status/:paymentId", paymentHandler.Status)
			}
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireAdmin(userRepo))
		{
			admin.GET("/stats", adminHandler.Stats)
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
		}

		// Parse the user agent into browser/OS fields for readable logs
		if raw := c.Request.UserAgent(); raw != "" {
			ua := user_agent.New(raw)
			browser, browserVersion := ua.Browser()
			fields["browser"] = browser
			fields["browser_version"] = browserVersion
			fields["os"] = ua.OS()
			fields["mobile"] = ua.Mobile()
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("Request failed with errors")
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
