package gateway

import (
	"context"
	"errors"
)

// Fallback runs remote and, only when it fails with a TransportError,
// substitutes the locally computed value. Application rejections
// (AppError) and anything else propagate unchanged, so an offline
// fallback can never mask an invalid-credentials style failure.
func Fallback[T any](ctx context.Context, remote func(context.Context) (T, error), local func(context.Context) (T, error)) (T, error) {
	v, err := remote(ctx)
	if err == nil {
		return v, nil
	}
	var te *TransportError
	if errors.As(err, &te) && local != nil {
		return local(ctx)
	}
	var zero T
	return zero, err
}
