package puzzle

import (
	"errors"
	"fmt"
)

var (
	// ErrImageAcquisition means no source image could be obtained.
	ErrImageAcquisition = errors.New("source image unavailable")
	// ErrImageProcessing covers decode, crop, composite and encode failures.
	ErrImageProcessing = errors.New("image processing failed")
	// ErrStorage means the store rejected a read or write.
	ErrStorage = errors.New("challenge storage failed")
	// ErrValidation covers unknown ids and unparsable offsets.
	ErrValidation = errors.New("challenge validation failed")

	ErrNotFound        = fmt.Errorf("%w: not found/expired", ErrValidation)
	ErrInvalidPosition = fmt.Errorf("%w: invalid position values", ErrValidation)
)

// Error carries the failed operation alongside one of the sentinel errors.
type Error struct {
	Op   string // Operation that failed
	Err  error  // Original error
	Info string // Additional context
}

func (e *Error) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Info)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error, info string) error {
	return &Error{
		Op:   op,
		Err:  err,
		Info: info,
	}
}

// wrap attaches a taxonomy sentinel to a lower level cause so that both
// errors.Is(err, kind) and errors.Is(err, cause) hold.
func wrap(op string, kind, cause error) error {
	return newError(op, fmt.Errorf("%w: %w", kind, cause), "")
}

// IsRetryable reports whether the caller should offer the user a fresh attempt.
// Generation failures always are; the user just sees "try again".
func IsRetryable(err error) bool {
	return errors.Is(err, ErrImageAcquisition) ||
		errors.Is(err, ErrImageProcessing) ||
		errors.Is(err, ErrStorage)
}
