// Package main runs the facilities request-tracking HTTP server with
// WebSocket push and graceful shutdown.
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
	"go.uber.org/zap/zapcore"

	"github.com/facilitydesk/backend/config"
	"github.com/facilitydesk/backend/internal/auth"
	"github.com/facilitydesk/backend/internal/contact"
	"github.com/facilitydesk/backend/internal/directory"
	"github.com/facilitydesk/backend/internal/messages"
	"github.com/facilitydesk/backend/internal/middleware"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/internal/notify"
	"github.com/facilitydesk/backend/internal/organizations"
	"github.com/facilitydesk/backend/internal/photos"
	"github.com/facilitydesk/backend/internal/realtime"
	"github.com/facilitydesk/backend/internal/requests"
	"github.com/facilitydesk/backend/internal/timeline"
	"github.com/facilitydesk/backend/pkg/database"
	"github.com/facilitydesk/backend/pkg/queue"
	"github.com/facilitydesk/backend/pkg/redis"
	"github.com/facilitydesk/backend/pkg/response"
	"github.com/facilitydesk/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var objectStore photos.ObjectStore
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			PhotosBucket:         cfg.AWS.PhotosBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			objectStore = s3Client
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	notifier := notify.NewNotifier(jobQueue, logger)

	// Organizations and users
	orgRepo := organizations.NewRepository(pool)
	userRepo := auth.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo, userRepo)
	authHandler := auth.NewHandler(userRepo, orgRepo, jwtService, logger)

	// Directory (buildings, facilities)
	dirRepo := directory.NewRepository(pool)
	dirHandler := directory.NewHandler(dirRepo)

	// Photos
	photoRepo := photos.NewRepository(pool)
	photoSvc := photos.NewService(photoRepo, objectStore, cfg.Uploads, logger)
	photoHandler := photos.NewHandler(photoSvc, photoRepo, logger)

	// Requests
	requestRepo := requests.NewRepository(pool)
	requestHandler := requests.NewHandler(requestRepo, dirRepo, userRepo, photoSvc, notifier, hub, logger)

	// Timeline
	timelineRepo := timeline.NewRepository(pool)
	timelineHandler := timeline.NewHandler(timelineRepo, logger)

	// Messages
	messageRepo := messages.NewRepository(pool)
	messageHandler := messages.NewHandler(messageRepo, hub, logger)

	// Contact form
	contactRepo := contact.NewRepository(pool)
	contactHandler := contact.NewHandler(contactRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Public contact form
	router.POST("/api/contact", contactHandler.Submit)

	// Protected API (JWT required)
	api := router.Group("/api")
	api.Use(middleware.JWT(jwtService))
	{
		// Users (staff; for assignment pickers etc.)
		api.GET("/users", middleware.RequireStaff(), orgHandler.ListUsers)

		// Organizations
		api.POST("/organizations", middleware.RequireRole(models.RoleSuperAdmin), orgHandler.Create)
		api.GET("/organizations", middleware.RequireRole(models.RoleSuperAdmin), orgHandler.List)
		api.GET("/organizations/current", orgHandler.Current)
		api.PATCH("/organizations/current/settings", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), orgHandler.UpdateSettings)

		// Directory
		api.GET("/buildings", dirHandler.ListBuildings)
		api.POST("/buildings", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), dirHandler.CreateBuilding)
		api.PATCH("/buildings/:id", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), dirHandler.UpdateBuilding)
		api.GET("/facilities", dirHandler.ListFacilities)
		api.POST("/facilities", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), dirHandler.CreateFacility)
		api.PATCH("/facilities/:id", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), dirHandler.UpdateFacility)

		// Request creation (multipart: payload JSON + photo files)
		api.POST("/building-requests", requestHandler.CreateBuilding)
		api.POST("/facilities-requests", requestHandler.CreateFacilities)

		// Request listings
		api.GET("/requests/my", requestHandler.ListMy)
		api.GET("/requests/assigned", middleware.RequireStaff(), requestHandler.ListAssigned)
		api.GET("/requests/all", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), requestHandler.ListAll)

		// Request aggregate and lifecycle
		api.GET("/requests/:id", requestHandler.GetByID)
		api.PATCH("/requests/:id/status", requestHandler.UpdateStatus)
		api.PATCH("/requests/:id/assignment", middleware.RequireStaff(), requestHandler.Assign)
		api.GET("/requests/:id/timeline", timelineHandler.Get)

		// Messages
		api.GET("/requests/:id/messages", messageHandler.List)
		api.POST("/requests/:id/messages", messageHandler.Post)

		// Photos
		api.POST("/requests/:id/photos", photoHandler.Upload)
		api.GET("/requests/:id/photos", photoHandler.List)
		api.GET("/photos/:id/url", photoHandler.DownloadURL)

		// Room projections
		api.GET("/room-history", middleware.RequireStaff(), requestHandler.RoomHistory)
		api.GET("/room-buildings", middleware.RequireStaff(), requestHandler.RoomBuildings)

		// Contact submissions (admin)
		api.GET("/contact", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), contactHandler.List)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, jwtService, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
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
