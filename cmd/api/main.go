package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"studio/internal/adapter/repo"
	"studio/internal/http/handlers"
	httpapi "studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/infra/credentials"
	"studio/internal/infra/geoip"
	"studio/internal/middleware"
	"studio/internal/providers/mux"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewServiceLogger(cfg.AppEnv, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)

	creds, err := credentials.NewStore(runner).Resolve(ctx, credentials.MuxCredentials{
		TokenID:     cfg.MuxTokenID,
		TokenSecret: cfg.MuxTokenSecret,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load mux credentials")
	}
	if creds.Empty() {
		logger.Warn().Msg("mux credentials missing; upload endpoints will fail")
	}

	media, err := mux.NewClient(mux.Options{
		TokenID:        creds.TokenID,
		TokenSecret:    creds.TokenSecret,
		BaseURL:        cfg.MuxBaseURL,
		PlaybackPolicy: cfg.MuxPlaybackPolicy,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure mux client")
	}

	var lookup middleware.RegionLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable; locale falls back to headers")
	}
	if resolver != nil {
		defer resolver.Close()
		lookup = resolver.Region
	}

	app := handlers.NewApp(
		repo.NewClassRepository(runner),
		repo.NewCourseRepository(runner),
		media,
		dbpool,
		&logger,
	)

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Locales:        middleware.NewLocales(cfg.SupportedLocales, cfg.DefaultLocale),
		RegionLookup:   lookup,
		RateLimit:      cfg.RateLimitPerMin,
		Logger:         logger,
	})

	server := infra.NewHTTPServer(cfg, router, &logger)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
