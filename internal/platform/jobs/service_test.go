package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkersRunQueuedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := New(2, 16, time.Second)
	svc.Start(ctx)

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		if err := svc.Enqueue("count", func(context.Context) error {
			ran.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("enqueue error: %v", err)
		}
	}
	if err := svc.Enqueue("fails", func(context.Context) error { return errors.New("boom") }); err != nil {
		t.Fatalf("enqueue error: %v", err)
	}
	if err := svc.Enqueue("panics", func(context.Context) error { panic("boom") }); err != nil {
		t.Fatalf("enqueue error: %v", err)
	}

	svc.Drain()
	if got := ran.Load(); got != 10 {
		t.Fatalf("expected 10 jobs to run, got %d", got)
	}

	cancel()
	svc.Wait()
}

func TestEnqueueRejectsWhenFull(t *testing.T) {
	svc := New(1, 1, 0)
	if err := svc.Enqueue("first", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("enqueue error: %v", err)
	}
	if err := svc.Enqueue("second", func(context.Context) error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}
