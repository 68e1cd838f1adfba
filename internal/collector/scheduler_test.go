package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

// go test -v --run TestRunnerRunOnce
func TestRunnerRunOnce(t *testing.T) {
	runner := &Runner{Interval: 0, Logger: zap.NewNop()}

	runs := 0
	err := runner.Start(context.Background(), func(ctx context.Context) error {
		runs++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs != 1 {
		t.Errorf("expected exactly one run, got %d", runs)
	}
}

// go test -v --run TestRunnerRunOncePropagatesError
func TestRunnerRunOncePropagatesError(t *testing.T) {
	runner := &Runner{Interval: 0, Logger: zap.NewNop()}

	wantErr := errors.New("fetch failed")
	err := runner.Start(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

// go test -v --run TestRunnerTicksUntilCancelled
func TestRunnerTicksUntilCancelled(t *testing.T) {
	runner := &Runner{Interval: 10 * time.Millisecond, Logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan struct{}, 16)

	done := make(chan error, 1)
	go func() {
		done <- runner.Start(ctx, func(ctx context.Context) error {
			runs <- struct{}{}
			return nil
		})
	}()

	// Wait for the immediate run plus at least one tick.
	for i := 0; i < 2; i++ {
		select {
		case <-runs:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for collection pass")
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}
