package puzzle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Failure reasons reported to the user.
const (
	ReasonNotFound          = "not found/expired"
	ReasonInvalidPosition   = "invalid position values"
	ReasonIncorrectPosition = "incorrect position"
	reasonErrorPrefix       = "verification error: "
)

var errConcurrentChange = errors.New("challenge changed during verification")

// Result is the outcome of one verification attempt. Reason is empty on success.
type Result struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Verifier checks submitted offsets against stored secrets.
type Verifier struct {
	store Store
	options
}

func NewVerifier(store Store, opts ...Option) *Verifier {
	return &Verifier{store: store, options: newOptions(opts)}
}

// Verify checks submitted against the challenge id with the configured tolerance.
func (v *Verifier) Verify(ctx context.Context, id, submitted string) Result {
	return v.VerifyWithTolerance(ctx, id, submitted, v.tolerance)
}

// VerifyWithTolerance never fails: every error, panics included, becomes an
// unsuccessful Result with a displayable reason. Once a challenge is verified
// it keeps verifying regardless of the submitted value, and its secret offset
// is gone from the store.
func (v *Verifier) VerifyWithTolerance(ctx context.Context, id, submitted string, tolerance int) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("verification panicked", zap.String("id", id), zap.Any("panic", r))
			res = Result{Reason: fmt.Sprintf("%s%v", reasonErrorPrefix, r)}
		}
	}()

	res, err := v.verify(ctx, id, submitted, tolerance)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		res = Result{Reason: ReasonNotFound}
	case errors.Is(err, ErrInvalidPosition):
		res = Result{Reason: ReasonInvalidPosition}
	default:
		v.logger.Error("verification failed", zap.String("id", id), zap.Error(err))
		res = Result{Reason: reasonErrorPrefix + err.Error()}
	}
	v.logger.Debug("challenge verified",
		zap.String("id", id),
		zap.Bool("success", res.Success),
		zap.String("reason", res.Reason))
	return res
}

func (v *Verifier) verify(ctx context.Context, id, submitted string, tolerance int) (Result, error) {
	stored, ok, err := v.store.Get(ctx, id)
	if err != nil {
		return Result{}, wrap("verify", ErrStorage, err)
	}
	if !ok {
		return Result{}, newError("verify", ErrNotFound, id)
	}

	state, err := ParseState(stored)
	if err != nil {
		return Result{}, err
	}
	if state.IsVerified() {
		return Result{Success: true}, nil
	}
	secret, _ := state.Offset()

	pos, err := parsePosition(submitted)
	if err != nil {
		return Result{}, err
	}
	if abs(int64(secret)-int64(pos)) > int64(tolerance) {
		return Result{Reason: ReasonIncorrectPosition}, nil
	}

	if err := v.markVerified(ctx, id, stored); err != nil {
		return Result{}, err
	}
	return Result{Success: true}, nil
}

// markVerified replaces the pending value with the sentinel. With a Swapper
// store the transition happens exactly once; a lost swap is still a success
// when the winner already wrote the sentinel.
func (v *Verifier) markVerified(ctx context.Context, id, pending string) error {
	sw, ok := v.store.(Swapper)
	if !ok {
		if err := v.store.MarkVerified(ctx, id, Sentinel); err != nil {
			return wrap("markVerified", ErrStorage, err)
		}
		return nil
	}

	swapped, err := sw.CompareAndSwap(ctx, id, pending, Sentinel)
	if err != nil {
		return wrap("markVerified", ErrStorage, err)
	}
	if swapped {
		return nil
	}

	current, found, err := v.store.Get(ctx, id)
	switch {
	case err != nil:
		return wrap("markVerified", ErrStorage, err)
	case !found:
		return newError("markVerified", ErrNotFound, id)
	case IsVerified(current):
		v.logger.Debug("concurrent verification already won", zap.String("id", id))
		return nil
	default:
		return newError("markVerified", errConcurrentChange, id)
	}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
