// internal/domain/dashboard/fallback.go
package dashboard

import (
	"context"
	"errors"
)

// QueryFunc produces a value from the live data source.
type QueryFunc[T any] func(ctx context.Context) (T, error)

// WithFallback returns a query that answers with mock() whenever query
// fails. onFallback, if set, is told about the error that was swallowed.
// There is no retry: the fallback applies to the current call only.
// Cancellation is the caller's doing, not a source failure, and is returned
// as is.
func WithFallback[T any](query QueryFunc[T], mock func() T, onFallback func(error)) QueryFunc[T] {
	return func(ctx context.Context) (T, error) {
		value, err := query(ctx)
		if err == nil {
			return value, nil
		}
		if errors.Is(err, context.Canceled) {
			return value, err
		}
		if onFallback != nil {
			onFallback(err)
		}
		return mock(), nil
	}
}
