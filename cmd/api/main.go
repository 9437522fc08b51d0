package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rvanstaden/huisvind-backend/api/routes"
	"github.com/rvanstaden/huisvind-backend/internal/auth"
	"github.com/rvanstaden/huisvind-backend/internal/identity"
	"github.com/rvanstaden/huisvind-backend/internal/media"
	"github.com/rvanstaden/huisvind-backend/internal/profiles"
	"github.com/rvanstaden/huisvind-backend/internal/properties"
	"github.com/rvanstaden/huisvind-backend/internal/ratelimit"
	"github.com/rvanstaden/huisvind-backend/pkg/auth/session"
	"github.com/rvanstaden/huisvind-backend/pkg/config"
	"github.com/rvanstaden/huisvind-backend/pkg/db"
	"github.com/rvanstaden/huisvind-backend/pkg/logger"
	"github.com/rvanstaden/huisvind-backend/pkg/metrics"
	"github.com/rvanstaden/huisvind-backend/pkg/migrate"
	"github.com/rvanstaden/huisvind-backend/pkg/redis"
	"github.com/rvanstaden/huisvind-backend/pkg/storage/gcs"
)

const signedUploadTTL = 15 * time.Minute

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	listingMetrics := metrics.NewListingMetrics(promRegistry)

	identityProvider, err := identity.NewProvider(identity.NewRepository(dbClient.DB()), cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity provider", err)
		os.Exit(1)
	}

	profileService, err := profiles.NewService(profiles.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	propertyService, err := properties.NewService(properties.NewRepository(dbClient.DB()), logg, listingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create property service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(propertyService, gcsClient, cfg.GCS.BucketName, signedUploadTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(
		cfg.JWT,
		identityProvider,
		profileService,
		sessionManager,
		ratelimit.NewRegistry(cfg.LoginGuard, nil),
		logg,
		nil,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			GCS:             gcsClient,
			Sessions:        sessionManager,
			AuthService:     authService,
			ProfileService:  profileService,
			PropertyService: propertyService,
			MediaService:    mediaService,
			Metrics:         listingMetrics,
			PromRegistry:    promRegistry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
