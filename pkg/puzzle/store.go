package puzzle

import (
	"context"
	"errors"
)

// Store persists challenge values keyed by challenge id. Expiry is the
// store's business: an expired id must read back as not found.
type Store interface {
	Set(ctx context.Context, id, value string) error
	// Get returns ok == false for unknown or expired ids.
	Get(ctx context.Context, id string) (value string, ok bool, err error)
	// MarkVerified overwrites the value for id with sentinel.
	MarkVerified(ctx context.Context, id, sentinel string) error
	Delete(ctx context.Context, id string) error
}

// Swapper is implemented by stores that can replace a value atomically.
// The verifier uses it to make the pending -> verified transition race free.
type Swapper interface {
	CompareAndSwap(ctx context.Context, id, old, new string) (bool, error)
}

// Acquirer supplies source images when the caller passes none.
type Acquirer interface {
	Acquire(ctx context.Context, fallbackPath string) ([]byte, error)
}

// StoreFuncs adapts plain functions to Store. Nil DeleteFn makes Delete a no-op.
type StoreFuncs struct {
	SetFn          func(ctx context.Context, id, value string) error
	GetFn          func(ctx context.Context, id string) (string, bool, error)
	MarkVerifiedFn func(ctx context.Context, id, sentinel string) error
	DeleteFn       func(ctx context.Context, id string) error
}

var errMissingFunc = errors.New("store function not provided")

func (f StoreFuncs) Set(ctx context.Context, id, value string) error {
	if f.SetFn == nil {
		return errMissingFunc
	}
	return f.SetFn(ctx, id, value)
}

func (f StoreFuncs) Get(ctx context.Context, id string) (string, bool, error) {
	if f.GetFn == nil {
		return "", false, errMissingFunc
	}
	return f.GetFn(ctx, id)
}

func (f StoreFuncs) MarkVerified(ctx context.Context, id, sentinel string) error {
	if f.MarkVerifiedFn == nil {
		return errMissingFunc
	}
	return f.MarkVerifiedFn(ctx, id, sentinel)
}

func (f StoreFuncs) Delete(ctx context.Context, id string) error {
	if f.DeleteFn == nil {
		return nil
	}
	return f.DeleteFn(ctx, id)
}

// AcquirerFunc adapts a function to Acquirer.
type AcquirerFunc func(ctx context.Context, fallbackPath string) ([]byte, error)

func (f AcquirerFunc) Acquire(ctx context.Context, fallbackPath string) ([]byte, error) {
	return f(ctx, fallbackPath)
}
