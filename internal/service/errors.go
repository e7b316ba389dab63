package service

import (
	"context"
	"errors"

	"github.com/alecrj/nutrition/internal/store"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidProfile = errors.New("invalid profile")

	ErrPlanGenerationFailed = errors.New("failed to generate meal plan")
	ErrSwapGenerationFailed = errors.New("failed to generate meal alternatives")
	ErrChatFailed           = errors.New("coach is having trouble responding")

	ErrInvalidPlanShape = errors.New("invalid meal plan structure")
	ErrInvalidMealShape = errors.New("invalid meal structure")

	ErrStorageUnavailable = store.ErrUnavailable
)

// generationError ties a user-facing failure kind to its underlying cause so
// both match with errors.Is.
type generationError struct {
	kind  error
	cause error
}

func (e *generationError) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *generationError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func wrapGeneration(kind, cause error) error {
	return &generationError{kind: kind, cause: cause}
}

// IsRetryable reports whether err came from a timed out or cancelled call to
// the generator, or from any generation failure the user may simply retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return errors.Is(err, ErrPlanGenerationFailed) ||
		errors.Is(err, ErrSwapGenerationFailed) ||
		errors.Is(err, ErrChatFailed)
}
