package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"studio/internal/adapter/repo"
	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/infra/credentials"
	"studio/internal/providers/mux"
	"studio/internal/upload"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadWorkerConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewServiceLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	creds, err := credentials.NewStore(runner).Resolve(ctx, credentials.MuxCredentials{
		TokenID:     cfg.MuxTokenID,
		TokenSecret: cfg.MuxTokenSecret,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to load mux credentials")
	}
	if creds.Empty() {
		logger.Fatal().Msg("worker: mux credentials are required (MUX_TOKEN_ID/MUX_TOKEN_SECRET or cmd/muxkey)")
	}

	client, err := mux.NewClient(mux.Options{
		TokenID:        creds.TokenID,
		TokenSecret:    creds.TokenSecret,
		BaseURL:        cfg.MuxBaseURL,
		PlaybackPolicy: cfg.MuxPlaybackPolicy,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure mux client")
	}

	poller := upload.NewPoller(client, upload.Policy{
		Interval:    cfg.PollInterval,
		MaxFailures: cfg.PollMaxFailures,
		MaxBackoff:  cfg.PollMaxBackoff,
	}, &logger)

	sweeper := upload.NewSweeper(upload.SweeperOptions{
		Repo:         repo.NewUploadRepository(runner),
		Poller:       poller,
		Links:        playbackLinks,
		Concurrency:  cfg.WorkerConcurrency,
		ScanInterval: cfg.WorkerScanInterval,
		Logger:       &logger,
	})

	logger.Info().
		Int("concurrency", cfg.WorkerConcurrency).
		Dur("poll_interval", cfg.PollInterval).
		Msg("worker: started")

	if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func playbackLinks(playbackID string) domain.MediaLinks {
	return domain.MediaLinks{
		StreamURL:    mux.StreamURL(playbackID),
		ThumbnailURL: mux.ThumbnailURL(playbackID),
	}
}
