package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/application"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/config"
	rideDomain "github.com/Kilat-Pet-Delivery/service-ride/internal/domain/ride"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/domain/search"
	rideEvents "github.com/Kilat-Pet-Delivery/service-ride/internal/events"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/geocoding"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/database"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/health"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/logger"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-ride/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "service-ride"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-ride",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.RideModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Address search provider, cached in Redis when configured
	var provider search.Provider = geocoding.NewNominatimProvider(geocoding.NominatimConfig{
		BaseURL:      cfg.Geocoder.BaseURL,
		UserAgent:    cfg.Geocoder.UserAgent,
		Limit:        cfg.Geocoder.Limit,
		CountryCodes: cfg.Geocoder.CountryCodes,
		Timeout:      cfg.Geocoder.Timeout,
	}, log)
	if cfg.RedisConfig.URL != "" {
		opt, err := redis.ParseURL(cfg.RedisConfig.URL)
		if err != nil {
			log.Fatal("invalid redis url", zap.Error(err))
		}
		redisClient := redis.NewClient(opt)
		defer func() { _ = redisClient.Close() }()
		provider = geocoding.NewCachedProvider(provider, redisClient, cfg.RedisConfig.CacheTTL, log)
		log.Info("geocode cache enabled", zap.Duration("ttl", cfg.RedisConfig.CacheTTL))
	}

	// Initialize application services
	rideRepo := repository.NewGormRideRepository(db)
	fareStrategy := &rideDomain.StandardFareStrategy{
		BaseCents:      cfg.Fare.BaseCents,
		PerKmCents:     cfg.Fare.PerKmCents,
		PerMinuteCents: cfg.Fare.PerMinuteCents,
		MinimumCents:   cfg.Fare.MinimumCents,
	}
	sessions := application.NewDestinationSessions()

	rideService := application.NewRideService(
		rideRepo,
		fareStrategy,
		sessions,
		kafkaProducer,
		application.RideSettings{
			ApproachSpeedKmh: cfg.ApproachSpeedKmh,
			TripSpeedKmh:     cfg.TripSpeedKmh,
			Currency:         cfg.Fare.Currency,
		},
		log,
	)
	destinationService := application.NewDestinationService(
		rideRepo,
		provider,
		sessions,
		kafkaProducer,
		log,
	)

	// Driver position stream
	groupID := cfg.KafkaConfig.GroupPrefix + "ride-service"
	locationConsumer := rideEvents.NewDriverLocationConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		rideService,
		log,
	)
	defer func() { _ = locationConsumer.Close() }()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	health.NewHandler(db, serviceName).RegisterRoutes(router)

	// Register routes
	handler.NewRideHandler(rideService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewDestinationHandler(destinationService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminRideHandler(rideService).RegisterRoutes(&router.RouterGroup, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("starting driver location consumer")
		if err := locationConsumer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("driver location consumer: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down service-ride...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server forced shutdown", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("service-ride exited with error", zap.Error(err))
	}

	log.Info("service-ride stopped")
}
