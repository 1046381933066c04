// Package jobs runs background work on a small pool of in-process workers.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrQueueFull = errors.New("job queue full")

type job struct {
	Type string
	Run  func(context.Context) error
}

type Service struct {
	queue   chan job
	workers int
	timeout time.Duration
	wg      sync.WaitGroup
	pending sync.WaitGroup
}

// New sizes the queue at capacity jobs. Each job gets timeout to finish.
func New(workers, capacity int, timeout time.Duration) *Service {
	if workers <= 0 {
		workers = 1
	}
	if capacity <= 0 {
		capacity = 128
	}
	return &Service{
		queue:   make(chan job, capacity),
		workers: workers,
		timeout: timeout,
	}
}

// Start launches the workers. They exit when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
}

// Enqueue drops the job with a warning when the queue is full.
func (s *Service) Enqueue(jobType string, run func(context.Context) error) error {
	s.pending.Add(1)
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return nil
	default:
		s.pending.Done()
		slog.Warn("job queue full", "jobType", jobType)
		return ErrQueueFull
	}
}

// Drain blocks until every queued job has run.
func (s *Service) Drain() {
	s.pending.Wait()
}

// Wait blocks until the workers have exited.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			s.runJob(ctx, j)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) {
	defer s.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "jobType", j.Type, "panic", r)
		}
	}()

	runCtx := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.timeout)
		defer cancel()
	}
	started := time.Now()
	if err := j.Run(runCtx); err != nil {
		slog.Warn("job run failed", "jobType", j.Type, "err", err)
		return
	}
	slog.Debug("job completed", "jobType", j.Type, "duration", time.Since(started))
}
