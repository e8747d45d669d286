package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denzelpenzel/skillswap/internal/api"
	"github.com/denzelpenzel/skillswap/internal/cache"
	"github.com/denzelpenzel/skillswap/internal/config"
	"github.com/denzelpenzel/skillswap/internal/database"
	"github.com/denzelpenzel/skillswap/internal/logger"
	"github.com/denzelpenzel/skillswap/internal/repository"
	"github.com/denzelpenzel/skillswap/internal/services"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database with automigrations enabled
	db, err := database.NewConnection(cfg.Database, true, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Category cache is optional
	var categoryCache services.CategoryCache
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			zapLogger.Warn("Category cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			categoryCache = cache.NewRedisCategoryCache(redisClient, cfg.Redis.TTL)
			zapLogger.Info("Category cache enabled", zap.String("redis_addr", cfg.Redis.Addr))
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, zapLogger)
	skillRepo := repository.NewSkillRepository(db, zapLogger)
	requestRepo := repository.NewRequestRepository(db, zapLogger)

	// Initialize services
	authService := services.NewAuthService(cfg.JWT, cfg.Security.BCryptCost, zapLogger)
	userService := services.NewUserService(userRepo, authService, zapLogger)
	skillService := services.NewSkillService(skillRepo, categoryCache, zapLogger)
	requestService := services.NewRequestService(requestRepo, skillRepo, zapLogger)

	// Initialize API server
	server := api.NewServer(cfg, zapLogger, authService, userService, skillService, requestService, db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	// Wait for interrupt signal (or a failed listener) to gracefully shutdown
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Error("Server stopped with error", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}
