package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/cart"
	"github.com/junaidrashid-git/storefront/config"
	orderControllers "github.com/junaidrashid-git/storefront/controllers/order"
	"github.com/junaidrashid-git/storefront/database"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/middleware"
	"github.com/junaidrashid-git/storefront/routes"
	"github.com/junaidrashid-git/storefront/storage"
)

func main() {
	logger.Init()
	logger.Info("✅ Starting application...", nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("❌ invalid configuration", map[string]any{"error": err})
	}

	// Init DB
	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("❌ DB connection failed", map[string]any{"error": err})
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("❌ AutoMigrate failed", map[string]any{"error": err})
	}

	// Users, roles and the first admin
	users := auth.NewService(db)
	if err := users.EnsureRoles(ctx); err != nil {
		logger.Fatal("❌ failed to create roles", map[string]any{"error": err})
	}
	if cfg.AdminPassword != "" {
		seeded, err := users.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logger.Fatal("❌ failed to seed admin", map[string]any{"error": err})
		}
		if seeded {
			logger.Info("👤 admin user created", map[string]any{"email": cfg.AdminEmail})
		}
	}

	// Sessions, revocable when Redis is configured
	var sessionStore auth.SessionStore
	if cfg.RedisAddr != "" {
		client, err := auth.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("❌ Redis connection failed", map[string]any{"addr": cfg.RedisAddr, "error": err})
		}
		defer client.Close()
		sessionStore = auth.NewRedisSessionStore(client)
	}
	sessions := auth.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL, sessionStore)

	var google auth.IdentityVerifier
	if cfg.FirebaseCredentialsJSON != "" {
		verifier, err := auth.NewGoogleVerifier(ctx, cfg.FirebaseCredentialsJSON, cfg.FirebaseProjectID)
		if err != nil {
			logger.Fatal("❌ Firebase init failed", map[string]any{"error": err})
		}
		google = verifier
	}

	// Image storage
	var store storage.Store
	switch cfg.StorageBackend {
	case "gcs":
		gcsStore, err := storage.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			logger.Fatal("❌ GCS client failed", map[string]any{"bucket": cfg.GCSBucket, "error": err})
		}
		defer gcsStore.Close()
		store = gcsStore
	default:
		store = storage.NewLocalStore(cfg.UploadsDir)
		if cfg.BackupDir != "" {
			// Start backup routine daily at BACKUP_HOUR
			backups := storage.NewBackupScheduler(cfg.UploadsDir, cfg.BackupDir, cfg.BackupRetention, cfg.BackupHour, 0)
			go backups.Run(ctx)
		}
	}

	cartRepo := cart.NewGormRepository(db)
	carts := cart.NewService(cartRepo, cartRepo)

	// Gin setup
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.MaxMultipartMemory = 32 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, routes.Dependencies{
		DB:           db,
		Users:        users,
		Sessions:     sessions,
		Carts:        carts,
		Store:        store,
		Uploader:     storage.NewImageUploader(store, cfg.MaxImageDimension),
		Google:       google,
		Orders:       orderControllers.NewHub(cfg.CORSOrigins),
		Limiter:      middleware.NewRateLimiter(cfg.LoginRatePerMinute),
		CookieSecure: cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("🚀 Server running", map[string]any{"port": cfg.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ Failed to start server", map[string]any{"error": err})
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", map[string]any{"error": err})
	}
}
