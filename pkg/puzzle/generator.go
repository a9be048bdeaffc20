package puzzle

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Puzzle is what the display layer receives for one challenge. The secret
// offset stays unexported.
type Puzzle struct {
	ID         string
	Piece      []byte // JPEG
	Background []byte // JPEG

	offset int
}

func (p *Puzzle) PieceURI() string { return DataURI(p.Piece) }

func (p *Puzzle) BackgroundURI() string { return DataURI(p.Background) }

// Generator creates challenges and persists their secret offsets.
type Generator struct {
	store Store
	options
}

func NewGenerator(store Store, opts ...Option) *Generator {
	return &Generator{store: store, options: newOptions(opts)}
}

// Generate builds a puzzle from src, or from the acquirer when src is empty.
// An empty id gets a fresh random one. The piece, the background and the
// store write run concurrently; if any of them fails the whole call fails
// and a stored offset is removed again.
func (g *Generator) Generate(ctx context.Context, src []byte, id string) (*Puzzle, error) {
	if len(src) == 0 {
		var err error
		if src, err = g.acquire(ctx); err != nil {
			return nil, err
		}
	}
	canvas, err := decodeCanvas(src)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = g.newID()
	}

	p := &Puzzle{ID: id, offset: RandomOffset(g.intn)}
	stored := false

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		p.Piece, err = renderPiece(canvas, p.offset)
		return err
	})
	eg.Go(func() error {
		var err error
		p.Background, err = renderBackground(canvas, p.offset)
		return err
	})
	eg.Go(func() error {
		if err := g.store.Set(egCtx, id, Pending(p.offset).String()); err != nil {
			return wrap("Generate", ErrStorage, err)
		}
		stored = true
		return nil
	})

	if err := eg.Wait(); err != nil {
		if stored {
			// The challenge must not outlive its images.
			if delErr := g.store.Delete(context.WithoutCancel(ctx), id); delErr != nil {
				g.logger.Warn("failed to remove orphaned challenge", zap.String("id", id), zap.Error(delErr))
			}
		}
		g.logger.Error("challenge generation failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	g.logger.Debug("challenge generated", zap.String("id", id), zap.Int("offset", p.offset))
	return p, nil
}

func (g *Generator) acquire(ctx context.Context) ([]byte, error) {
	if g.acquirer == nil {
		return nil, newError("acquire", ErrImageAcquisition, "no source image and no acquirer")
	}
	src, err := g.acquirer.Acquire(ctx, g.fallbackPath)
	if err != nil {
		return nil, wrap("acquire", ErrImageAcquisition, err)
	}
	if len(src) == 0 {
		return nil, newError("acquire", ErrImageAcquisition, "acquirer returned no image")
	}
	return src, nil
}
