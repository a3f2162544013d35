/*
Package main is the entry point for the TrailMeet server.

It is responsible for loading configuration, initializing the global logging system,
connecting Postgres and Redis, wiring the geocoder, chat hub and optional avatar
storage, starting the maintenance scheduler, serving HTTP, and gracefully handling
operating system interrupt signals (SIGINT, SIGTERM) to ensure a smooth shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"trailmeet/internal/app/chat"
	"trailmeet/internal/app/db"
	"trailmeet/internal/app/eventtype"
	"trailmeet/internal/app/geo"
	"trailmeet/internal/app/geocode"
	"trailmeet/internal/app/jobs"
	"trailmeet/internal/app/session"
	"trailmeet/internal/app/storage"
	"trailmeet/internal/configs"
	"trailmeet/internal/handler"
	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/pow"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("pow_difficulty", cfg.PowDifficulty).
		Bool("storage_enabled", cfg.StorageEnabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to connect to database")
	}
	defer pool.Close()
	store := db.NewStore(pool)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logx.Fatal(err, "Invalid REDIS_URL")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logx.Fatal(err, "Failed to connect to redis")
	}

	sessions := session.NewStore(rdb, cfg.SessionExpiration)

	catalog := geo.DefaultCatalog()
	nominatim := geocode.NewNominatimClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.GeocodeTimeout)
	geocoder := geocode.NewService(nominatim, rdb, cfg.GeocodeCacheTTL, catalog)

	var storageService storage.StorageService
	if cfg.StorageEnabled() {
		storageService, err = storage.NewStorageService(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:     cfg.S3PublicBaseURL,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize storage service")
		}
	} else {
		logx.Warn("S3 storage not configured, avatar uploads disabled")
	}

	// Initialize Chat Manager
	manager := chat.NewManager(sessions)

	scheduler := jobs.NewScheduler()
	if err := scheduler.AddEventSweep(cfg.EventSweepCron, store); err != nil {
		logx.Fatal(err, "Failed to schedule event sweep", "spec", cfg.EventSweepCron)
	}
	scheduler.Start()

	deps := &handler.AppDeps{
		Config:         cfg,
		Store:          store,
		Sessions:       sessions,
		Geocoder:       geocoder,
		Catalog:        catalog,
		Resolver:       eventtype.NewResolver(eventtype.DefaultMemoSize),
		Manager:        manager,
		PoW:            pow.NewManager(cfg.PowDifficulty),
		StorageService: storageService,
	}

	// Setup HTTP server and routes
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("TrailMeet Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	scheduler.Stop(shutdownCtx)
	manager.Shutdown()

	logx.Info("Server gracefully stopped.")
}
