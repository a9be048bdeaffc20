package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"sliderCaptchaAuth/config"
	"sliderCaptchaAuth/internal/store/memory"
	"sliderCaptchaAuth/internal/store/sqlite"
	"sliderCaptchaAuth/pkg/puzzle"
)

// challengeStore is what the service needs from a backend: the protocol
// store plus periodic cleanup of expired challenges.
type challengeStore interface {
	puzzle.Store
	puzzle.Swapper
	io.Closer
	sweep(ctx context.Context) (int64, error)
}

type memoryStore struct{ *memory.Store }

func (memoryStore) Close() error { return nil }

func (s memoryStore) sweep(context.Context) (int64, error) {
	return int64(s.Sweep()), nil
}

type sqliteStore struct{ *sqlite.Store }

func (s sqliteStore) sweep(ctx context.Context) (int64, error) {
	return s.Sweep(ctx)
}

func openStore(cfg config.Store) (challengeStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memoryStore{memory.New(cfg.ChallengeTTL)}, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath, cfg.ChallengeTTL)
		if err != nil {
			return nil, err
		}
		return sqliteStore{s}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Driver)
	}
}

// startSweeper runs the sweeper in the background. The returned func stops it
// and waits for an in-flight sweep, so the store can be closed afterwards.
func startSweeper(ctx context.Context, s challengeStore, interval time.Duration, logger *zap.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runSweeper(ctx, s, interval, logger)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

// runSweeper drops expired challenges every interval until ctx is done.
func runSweeper(ctx context.Context, s challengeStore, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.sweep(ctx)
			if err != nil {
				logger.Warn("failed to sweep expired challenges", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("swept expired challenges", zap.Int64("count", n))
			}
		}
	}
}
