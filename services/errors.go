package services

import (
	"context"
	"errors"
)

// Failure taxonomy shared by the workflow, role gate and controllers. All
// operations return one of these (possibly wrapped); controllers map them to
// HTTP statuses.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
)

// wrapStoreErr normalizes record-store failures: a context deadline becomes
// ErrUpstreamTimeout so callers see a typed transient error instead of a
// driver-specific one.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrUpstreamTimeout
	}
	return err
}
