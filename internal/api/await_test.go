package api

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAwait(t *testing.T) {
	t.Run("delivers value", func(t *testing.T) {
		got, err := Await(context.Background(), func(done Handler[int]) error {
			go done(7, nil)
			return nil
		})
		if err != nil || got != 7 {
			t.Errorf("Await = %d, %v", got, err)
		}
	})

	t.Run("delivers failure", func(t *testing.T) {
		want := errors.New("nope")
		_, err := Await(context.Background(), func(done Handler[int]) error {
			go done(0, want)
			return nil
		})
		if !errors.Is(err, want) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("start failure", func(t *testing.T) {
		want := &ConfigurationError{Reason: "bad"}
		_, err := Await(context.Background(), func(done Handler[int]) error {
			return want
		})
		if !IsConfigurationError(err) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("context done", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		late := make(chan struct{})
		_, err := Await(ctx, func(done Handler[int]) error {
			go func() {
				<-late
				done(1, nil) // must not block after Await returned
			}()
			return nil
		})
		close(late)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v", err)
		}
	})
}
