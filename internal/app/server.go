package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sliderCaptchaAuth/config"
	"sliderCaptchaAuth/internal/acquire"
	"sliderCaptchaAuth/internal/logging"
	"sliderCaptchaAuth/internal/server/rest"
	"sliderCaptchaAuth/pkg/puzzle"
)

// RunServer starts the captcha HTTP service and blocks until ctx is done.
func RunServer(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Level, cfg.JSON)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger = logger.With(zap.String("service", cfg.Name))

	store, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	stopSweeper := startSweeper(ctx, store, cfg.SweepInterval, logger)
	defer stopSweeper()

	acquirer := acquire.New(acquire.Config{
		URL:     cfg.ImageURL,
		Timeout: cfg.FetchTimeout,
	}, logger.Named("acquire"))

	generator := puzzle.NewGenerator(store,
		puzzle.WithAcquirer(acquirer),
		puzzle.WithFallbackPath(cfg.FallbackPath),
		puzzle.WithLogger(logger.Named("generator")),
	)
	verifier := puzzle.NewVerifier(store,
		puzzle.WithTolerance(cfg.Tolerance),
		puzzle.WithLogger(logger.Named("verifier")),
	)

	server := rest.NewServer(
		&rest.Config{
			Address:         cfg.Addr,
			StaticDir:       cfg.StaticDir,
			ReadTimeout:     cfg.ReadTimeout,
			ShutdownTimeout: cfg.ShutdownTimeout,
		},
		rest.NewHandler(generator, verifier, store, logger.Named("http")),
		logger,
	)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}
	return nil
}
