package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"sliderCaptchaAuth/config"
	"sliderCaptchaAuth/internal/acquire"
	"sliderCaptchaAuth/internal/store/memory"
	"sliderCaptchaAuth/pkg/puzzle"
)

// GenerateResult describes the files written by GenerateFiles.
type GenerateResult struct {
	ID             string
	PiecePath      string
	BackgroundPath string
}

// GenerateFiles creates one puzzle and writes piece.jpg and background.jpg
// into outDir. srcPath may be empty, in which case the configured image
// sources are used.
func GenerateFiles(ctx context.Context, cfg *config.Config, srcPath, outDir string) (*GenerateResult, error) {
	var src []byte
	if srcPath != "" {
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read source image: %w", err)
		}
		if src, err = acquire.Normalize(data); err != nil {
			return nil, err
		}
	}

	generator := puzzle.NewGenerator(memory.New(0),
		puzzle.WithAcquirer(acquire.New(acquire.Config{URL: cfg.ImageURL, Timeout: cfg.FetchTimeout}, nil)),
		puzzle.WithFallbackPath(cfg.FallbackPath),
	)
	p, err := generator.Generate(ctx, src, "")
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	res := &GenerateResult{
		ID:             p.ID,
		PiecePath:      filepath.Join(outDir, "piece.jpg"),
		BackgroundPath: filepath.Join(outDir, "background.jpg"),
	}
	if err := os.WriteFile(res.PiecePath, p.Piece, 0644); err != nil {
		return nil, fmt.Errorf("failed to write piece: %w", err)
	}
	if err := os.WriteFile(res.BackgroundPath, p.Background, 0644); err != nil {
		return nil, fmt.Errorf("failed to write background: %w", err)
	}
	return res, nil
}
