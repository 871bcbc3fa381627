package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NaviFeed/navifeed-backend/config"
	"github.com/NaviFeed/navifeed-backend/handlers"
	"github.com/NaviFeed/navifeed-backend/internal/events"
	"github.com/NaviFeed/navifeed-backend/internal/provider"
	_ "github.com/NaviFeed/navifeed-backend/internal/provider/dummy" // register the dummy provider
	"github.com/NaviFeed/navifeed-backend/logger"
	"github.com/NaviFeed/navifeed-backend/router"
	"github.com/NaviFeed/navifeed-backend/services"
	"github.com/NaviFeed/navifeed-backend/store"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() {
		if err := logger.Close(); err != nil {
			os.Exit(1)
		}
	}()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client with TLS in production
	redisOptions := &redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}

	if cfg.Redis.UseTLS {
		redisOptions.TLSConfig = &tls.Config{
			ServerName: cfg.Redis.Address,
			MinVersion: tls.VersionTLS12,
		}
	}

	redisClient := redis.NewClient(redisOptions)

	// Event service on top of Redis pub/sub
	eventService := events.NewService(redisClient, events.Config{
		PublishTimeout:   time.Duration(cfg.EventService.PublishTimeoutSeconds) * time.Second,
		SubscribeTimeout: time.Duration(cfg.EventService.SubscribeTimeoutSeconds) * time.Second,
		EventBufferSize:  cfg.EventService.EventBufferSize,
	})

	// Build the configured providers from the registry
	providerCfg := provider.Config{Host: cfg}
	providers := make([]provider.Provider, 0, len(cfg.Traffic.Providers))
	for _, name := range cfg.Traffic.Providers {
		p, err := provider.Default().New(name, providerCfg)
		if err != nil {
			log.Fatalf("Failed to build traffic provider %s: %v", name, err)
		}
		providers = append(providers, p)
	}

	// Traffic lifecycle service
	trafficStore := store.NewMemoryTrafficStore()
	trafficService := services.NewTrafficService(
		trafficStore,
		eventService,
		providers,
		time.Duration(cfg.Traffic.PollIntervalSeconds)*time.Second,
	)
	trafficService.Start()

	// HTTP surface
	deps := router.Dependencies{
		Traffic: handlers.NewTrafficHandler(trafficService),
		Health:  handlers.NewHealthHandler(redisClient, cfg.Server.Version),
	}
	engine := router.Setup(cfg, deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	trafficService.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	if err := eventService.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Event service shutdown failed", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Errorw("Redis client close failed", "error", err)
	}

	log.Info("Server exited gracefully")
}
