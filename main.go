package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/clipper-lms/activity"
	"github.com/yeremiapane/clipper-lms/config"
	"github.com/yeremiapane/clipper-lms/database"
	"github.com/yeremiapane/clipper-lms/router"
	"github.com/yeremiapane/clipper-lms/services"
	"github.com/yeremiapane/clipper-lms/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	revoked, stopRevocations := revocationStore(cfg)
	defer stopRevocations()

	hub := activity.NewHub()
	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	r := router.SetupRouter(router.Dependencies{
		Config:  cfg,
		DB:      db,
		Tokens:  tokens,
		Revoked: revoked,
		Hub:     hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	utils.InfoLogger.Println("Server exited")
}

// revocationStore uses Redis when REDIS_URL is set so logouts survive restarts
// and are shared between instances. Otherwise revocations live in memory and a
// cron job purges the expired ones.
func revocationStore(cfg *config.Config) (utils.TokenBlacklist, func()) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			utils.ErrorLogger.Fatalf("Invalid REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
		}
		utils.InfoLogger.Println("Token revocations stored in redis")
		return utils.NewRedisBlacklist(client), func() { _ = client.Close() }
	}

	store := utils.NewMemoryBlacklist()
	janitor, err := services.NewRevocationJanitor(store, cfg.RevocationPurgeSchedule)
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid REVOCATION_PURGE_SCHEDULE: %v", err)
	}
	janitor.Start()
	return store, janitor.Stop
}
