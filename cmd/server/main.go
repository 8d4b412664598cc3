// Package main runs the campus events HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/adeldevs/campus-flare-85986/config"
	"github.com/adeldevs/campus-flare-85986/internal/events"
	"github.com/adeldevs/campus-flare-85986/internal/middleware"
	"github.com/adeldevs/campus-flare-85986/internal/models"
	"github.com/adeldevs/campus-flare-85986/internal/requests"
	"github.com/adeldevs/campus-flare-85986/internal/users"
	"github.com/adeldevs/campus-flare-85986/pkg/cache"
	"github.com/adeldevs/campus-flare-85986/pkg/firebase"
	"github.com/adeldevs/campus-flare-85986/pkg/response"
	"github.com/adeldevs/campus-flare-85986/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	clients, err := firebase.New(ctx, firebase.Config{
		ProjectID:       cfg.Firebase.ProjectID,
		CredentialsFile: cfg.Firebase.CredentialsFile,
		StorageBucket:   cfg.Firebase.StorageBucket,
	}, logger)
	if err != nil {
		logger.Fatal("firebase", zap.Error(err))
	}
	defer clients.Close()

	var listingCache *cache.Cache
	if cfg.Redis.Addr != "" {
		ttl := time.Duration(cfg.Redis.CacheTTLSec) * time.Second
		listingCache, err = cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ttl, logger)
		if err != nil {
			logger.Warn("listing cache disabled", zap.Error(err))
			listingCache = nil
		} else {
			defer listingCache.Close()
		}
	}

	var eventUploads events.Uploader
	var userUploads users.Uploader
	if clients.Bucket != nil {
		uploader := storage.NewUploader(clients.Bucket, cfg.Firebase.StorageBucket, logger)
		eventUploads = uploader
		userUploads = uploader
	}

	// Users
	userRepo := users.NewRepository(clients.Firestore)
	resolver := users.NewResolver(userRepo, cfg.UltimateAdminEmails, logger)
	authService := users.NewService(users.NewFirebaseVerifier(clients.Auth), resolver)

	// Events
	eventRepo := events.NewRepository(clients.Firestore)
	eventHandler := events.NewHandler(eventRepo, listingCache, eventUploads, logger)

	userHandler := users.NewHandler(userRepo, eventRepo, userUploads, logger)

	// Admin requests
	requestRepo := requests.NewRepository(clients.Firestore)
	requestHandler := requests.NewHandler(requestRepo, userRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: published listing; single events apply draft visibility, so
	// a token is honored when present but never required.
	router.GET("/events", eventHandler.ListPublished)
	router.GET("/events/:id", middleware.OptionalAuth(authService), eventHandler.Get)

	// Protected API (Firebase ID token required)
	api := router.Group("")
	api.Use(middleware.Auth(authService))
	{
		api.GET("/auth/session", userHandler.Session)

		api.PATCH("/users/me", userHandler.UpdateMe)
		api.POST("/users/me/avatar", userHandler.UploadAvatar)
		api.GET("/users/me/registrations", userHandler.MyRegistrations)
		api.GET("/users/me/admin-request", requestHandler.MyRequest)

		api.POST("/events", middleware.RequireRole(models.RoleLowLevelAdmin, models.RoleUltimateAdmin), eventHandler.Create)
		api.PUT("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", eventHandler.Delete)
		api.PATCH("/events/:id/status", eventHandler.ToggleStatus)
		api.POST("/events/:id/banner", eventHandler.UploadBanner)
		api.POST("/events/:id/register", eventHandler.Register)
		api.DELETE("/events/:id/register", eventHandler.Unregister)
		api.GET("/events/:id/registrants", eventHandler.Registrants)

		api.GET("/admin/events", middleware.RequireRole(models.RoleLowLevelAdmin, models.RoleUltimateAdmin), eventHandler.ListManaged)

		api.POST("/admin-requests", requestHandler.Submit)
		api.GET("/admin-requests", middleware.RequireRole(models.RoleUltimateAdmin), requestHandler.List)
		api.POST("/admin-requests/:id/approve", middleware.RequireRole(models.RoleUltimateAdmin), requestHandler.Approve)
		api.POST("/admin-requests/:id/reject", middleware.RequireRole(models.RoleUltimateAdmin), requestHandler.Reject)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
