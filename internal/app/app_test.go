package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sliderCaptchaAuth/config"
	"sliderCaptchaAuth/internal/store/memory"
	"sliderCaptchaAuth/pkg/puzzle"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := config.Default().Store
			cfg.Driver = driver
			cfg.SQLitePath = filepath.Join(t.TempDir(), "captcha.db")
			cfg.ChallengeTTL = time.Minute

			s, err := openStore(cfg)
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.Set(ctx, "id", "100"))
			res := puzzle.NewVerifier(s).Verify(ctx, "id", "105")
			assert.True(t, res.Success, res.Reason)

			n, err := s.sweep(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}

	_, err := openStore(config.Store{Driver: "etcd"})
	assert.Error(t, err)
}

func TestRunSweeperStops(t *testing.T) {
	s, err := openStore(config.Store{Driver: config.DriverMemory, ChallengeTTL: time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "old", "100"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runSweeper(ctx, s, 5*time.Millisecond, zap.NewNop())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return s.(memoryStore).Len() == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

type slowSweepStore struct {
	memoryStore
	started chan struct{}
	release chan struct{}
	done    atomic.Bool
}

func (s *slowSweepStore) sweep(context.Context) (int64, error) {
	select {
	case s.started <- struct{}{}:
	default:
	}
	<-s.release
	s.done.Store(true)
	return 0, nil
}

func TestStopSweeperWaitsForSweep(t *testing.T) {
	s := &slowSweepStore{
		memoryStore: memoryStore{memory.New(time.Minute)},
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	stop := startSweeper(context.Background(), s, time.Millisecond, zap.NewNop())

	select {
	case <-s.started:
	case <-time.After(time.Second):
		t.Fatal("sweep never started")
	}

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while a sweep was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(s.release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
	assert.True(t, s.done.Load())
}

func TestGenerateFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.png")
	writePNG(t, src, 800, 600)

	cfg := config.Default()
	cfg.FallbackPath = ""
	res, err := GenerateFiles(context.Background(), cfg, src, filepath.Join(dir, "out"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	for _, path := range []string{res.PiecePath, res.BackgroundPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestGenerateFilesUsesFallback(t *testing.T) {
	dir := t.TempDir()
	images := filepath.Join(dir, "images")
	require.NoError(t, os.Mkdir(images, 0o755))
	writePNG(t, filepath.Join(images, "one.png"), 300, 200)

	cfg := config.Default()
	cfg.FallbackPath = images
	res, err := GenerateFiles(context.Background(), cfg, "", filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.FileExists(t, res.PiecePath)
}

func TestGenerateFilesNoSource(t *testing.T) {
	cfg := config.Default()
	cfg.FallbackPath = ""
	_, err := GenerateFiles(context.Background(), cfg, "", t.TempDir())
	assert.ErrorIs(t, err, puzzle.ErrImageAcquisition)
}
