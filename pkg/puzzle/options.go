package puzzle

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type options struct {
	logger       *zap.Logger
	acquirer     Acquirer
	fallbackPath string
	intn         func(n int) int
	newID        func() string
	tolerance    int
}

// Option configures a Generator or a Verifier. Options that do not apply to
// the component they are passed to are ignored.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		logger:    zap.NewNop(),
		intn:      rand.IntN,
		newID:     uuid.NewString,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithAcquirer sets where source images come from when Generate gets none.
func WithAcquirer(a Acquirer) Option {
	return func(o *options) { o.acquirer = a }
}

func WithFallbackPath(path string) Option {
	return func(o *options) { o.fallbackPath = path }
}

// WithRand replaces the offset draw. intn must return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(o *options) { o.intn = intn }
}

func WithIDFunc(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithTolerance sets the default pixel tolerance of a Verifier.
func WithTolerance(px int) Option {
	return func(o *options) { o.tolerance = px }
}
