package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/victorydiv/fojournapp-sub002/internal/handler"
	"github.com/victorydiv/fojournapp-sub002/internal/middleware"
	"github.com/victorydiv/fojournapp-sub002/internal/settings"
	"github.com/victorydiv/fojournapp-sub002/pkg/config"
	"github.com/victorydiv/fojournapp-sub002/pkg/database"
	"github.com/victorydiv/fojournapp-sub002/pkg/jwtutil"
	"github.com/victorydiv/fojournapp-sub002/pkg/logger"
	"github.com/victorydiv/fojournapp-sub002/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting merge service...", zap.String("environment", cfg.Server.Env))

	// Initialize database (runs migrations automatically)
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Wire the merge workflow with its settings provider
	provider := settings.NewProvider(database.GetDB(), cfg)
	handler.InitMergeHandler(cfg, provider)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/", handler.Hello)
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", prometheus.HandlerFunc())

	// Public profile resolution (JSON and bot-facing HTML)
	e.GET("/merge/public-profile/:key", handler.PublicProfile)
	e.GET("/u/:key", handler.ProfilePage)

	// Authenticated merge workflow
	jwtUtil := jwtutil.NewJWTUtil(cfg.JWT.SigningKey)
	m := e.Group("/merge", middleware.JWTAuthMiddleware(jwtUtil))
	m.GET("/status", handler.MergeStatus)
	m.POST("/invite", handler.SendInvitation)
	m.POST("/accept/:invitationId", handler.AcceptInvitation)
	m.POST("/decline/:invitationId", handler.DeclineInvitation)
	m.POST("/cancel/:invitationId", handler.CancelInvitation)
	m.POST("/unmerge", handler.Unmerge)
	m.GET("/history", handler.MergeHistory)
	m.GET("/display-settings", handler.GetDisplaySettings)
	m.PUT("/display-settings", handler.UpdateDisplaySettings)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
