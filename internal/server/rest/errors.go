package rest

import (
	"errors"
	"net/http"

	"sliderCaptchaAuth/pkg/puzzle"
)

var (
	ErrRespInvalidJSON = ErrorResponse{
		Code:    "INVALID_JSON",
		Message: "invalid json",
	}
	ErrRespNotFound = ErrorResponse{
		Code:    "NOT_FOUND",
		Message: "uuid not found",
	}
	ErrRespTryAgain = ErrorResponse{
		Code:    "GENERATE_FAILED",
		Message: "could not create a challenge, try again",
	}
	ErrRespInternal = ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}
)

// toErrorResponse maps generator and store errors to a status code and body.
func toErrorResponse(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, puzzle.ErrNotFound):
		return http.StatusNotFound, ErrRespNotFound
	case puzzle.IsRetryable(err):
		return http.StatusServiceUnavailable, ErrRespTryAgain
	default:
		return http.StatusInternalServerError, ErrRespInternal
	}
}
