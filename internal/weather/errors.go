package weather

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a city or its weather record cannot be resolved.
	ErrNotFound = errors.New("not found")
	// ErrUpstream is returned when a record collaborator fails.
	ErrUpstream = errors.New("upstream failure")
	// ErrInvalidInput is returned for empty or malformed arguments.
	ErrInvalidInput = errors.New("invalid input")
)

// upstream wraps a collaborator failure as ErrUpstream, unless the caller's
// own context ended, in which case the context error is returned as is.
func upstream(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
