package llm

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("completion timed out")

type outcome[T any] struct {
	value T
	err   error
}

// WithTimeout races fn against a timer and returns whichever settles first.
// fn receives a context that is cancelled once the race is decided; a result
// that arrives after the timer lands in a buffered channel and is dropped.
// A non-positive d only honours ctx.
func WithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var cancel context.CancelFunc
	if d > 0 {
		ctx, cancel = context.WithTimeout(ctx, d)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}
