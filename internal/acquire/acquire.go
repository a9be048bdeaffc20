// Package acquire fetches source images for the puzzle generator and brings
// them to the canonical working size.
package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"sliderCaptchaAuth/pkg/puzzle"
)

const maxImageBytes = 10 << 20

var (
	ErrNoSource   = errors.New("no image source configured")
	ErrEmptyDir   = errors.New("no images in directory")
	ErrBadStatus  = errors.New("unexpected status fetching image")
	ErrTooLarge   = errors.New("image exceeds size limit")
	ErrTooSmall   = errors.New("image too small to crop")
	imageSuffixes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)

type Config struct {
	URL     string        // remote image endpoint, e.g. a random picture service
	Timeout time.Duration // per fetch
}

// Acquirer tries the configured URL first and then the fallback path.
type Acquirer struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
	intn   func(n int) int
}

func New(cfg Config, logger *zap.Logger) *Acquirer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Acquirer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		intn:   rand.IntN,
	}
}

// Acquire returns a PNG of exactly puzzle.ImageWidth x puzzle.ImageHeight.
// fallbackPath may name an image file or a directory of images.
func (a *Acquirer) Acquire(ctx context.Context, fallbackPath string) ([]byte, error) {
	var remoteErr error
	if a.cfg.URL != "" {
		data, err := a.fetch(ctx, a.cfg.URL)
		if err == nil {
			data, err = Normalize(data)
		}
		if err == nil {
			return data, nil
		}
		remoteErr = err
		a.logger.Warn("remote image unavailable, using fallback",
			zap.String("url", a.cfg.URL), zap.String("fallback", fallbackPath), zap.Error(err))
	}

	if fallbackPath == "" {
		if remoteErr == nil {
			return nil, ErrNoSource
		}
		return nil, remoteErr
	}

	data, err := a.readFallback(fallbackPath)
	if err != nil {
		return nil, errors.Join(remoteErr, err)
	}
	return Normalize(data)
}

func (a *Acquirer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if len(data) > maxImageBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func (a *Acquirer) readFallback(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat fallback: %w", err)
	}
	if info.IsDir() {
		if path, err = a.pickFromDir(path); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback: %w", err)
	}
	return data, nil
}

// pickFromDir chooses one image file with reservoir sampling.
func (a *Acquirer) pickFromDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}
	chosen := ""
	count := 0
	for _, e := range entries {
		if e.IsDir() || !isImageName(e.Name()) {
			continue
		}
		count++
		if a.intn(count) == 0 {
			chosen = e.Name()
		}
	}
	if chosen == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyDir, dir)
	}
	return filepath.Join(dir, chosen), nil
}

func isImageName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range imageSuffixes {
		if ext == s {
			return true
		}
	}
	return false
}

// Normalize decodes data, crops it to the canvas aspect ratio around its
// centre and scales it to the canvas size.
func Normalize(data []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	sr := coverRect(src.Bounds())
	if sr.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrTooSmall, src.Bounds())
	}
	dst := image.NewRGBA(image.Rect(0, 0, puzzle.ImageWidth, puzzle.ImageHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sr, draw.Src, nil)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// coverRect returns the largest centred sub-rectangle of b with the canvas
// aspect ratio.
func coverRect(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w*puzzle.ImageHeight > h*puzzle.ImageWidth {
		cw := h * puzzle.ImageWidth / puzzle.ImageHeight
		x := b.Min.X + (w-cw)/2
		return image.Rect(x, b.Min.Y, x+cw, b.Max.Y)
	}
	ch := w * puzzle.ImageHeight / puzzle.ImageWidth
	y := b.Min.Y + (h-ch)/2
	return image.Rect(b.Min.X, y, b.Max.X, y+ch)
}
