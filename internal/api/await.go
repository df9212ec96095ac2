package api

import "context"

// Await starts a handler-style operation and blocks until it delivers or
// ctx is done. A synchronous start failure is returned as is.
//
//	task, err := api.Await(ctx, func(done api.Handler[*api.Task]) error {
//		return gw.CurrentTask(ctx, creds, rsn, done)
//	})
func Await[T any](ctx context.Context, start func(done Handler[T]) error) (T, error) {
	type outcome struct {
		value T
		err   error
	}
	// Buffered so a delivery after ctx is done never blocks the transport.
	ch := make(chan outcome, 1)

	var zero T
	if err := start(func(v T, err error) {
		ch <- outcome{value: v, err: err}
	}); err != nil {
		return zero, err
	}

	select {
	case out := <-ch:
		return out.value, out.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
